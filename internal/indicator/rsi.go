package indicator

import (
	"fmt"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// NeutralRSI is returned when there is not enough history for a real value.
const NeutralRSI = 50.0

// RSIValue computes the Relative Strength Index over the last period deltas.
// Returns NeutralRSI when fewer than period+1 points exist or when the window
// is perfectly flat, and 100 when only gains occurred.
func RSIValue(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return NeutralRSI
	}

	var avgGain, avgLoss float64

	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI
		}

		return 100.0
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period              int
	oversoldThreshold   float64
	overboughtThreshold float64
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period:              14,
		oversoldThreshold:   30,
		overboughtThreshold: 70,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator.
// Expected parameters: period (int), optionally oversold and overbought thresholds (float64).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	r.period = period

	if len(params) >= 2 {
		threshold, ok := params[1].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for oversold threshold, expected float64")
		}

		r.oversoldThreshold = threshold
	}

	if len(params) >= 3 {
		threshold, ok := params[2].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for overbought threshold, expected float64")
		}

		r.overboughtThreshold = threshold
	}

	return nil
}

// GetSignal calculates the RSI opinion for the symbol under evaluation.
func (r *RSI) GetSignal(snapshot types.MarketSnapshot, ctx IndicatorContext) (types.Signal, error) {
	rsiValue, err := r.RawValue(ctx.Series.Closes())
	if err != nil {
		return types.Signal{}, err
	}

	action := types.ActionWait
	reason := "No signal"

	switch {
	case rsiValue < r.oversoldThreshold:
		action = types.ActionBuy
		reason = fmt.Sprintf("RSI oversold (%.1f)", rsiValue)
	case rsiValue > r.overboughtThreshold:
		action = types.ActionSell
		reason = fmt.Sprintf("RSI overbought (%.1f)", rsiValue)
	}

	return types.Signal{
		Symbol:    snapshot.Symbol,
		Action:    action,
		Reasoning: reason,
		Source:    types.SignalSourceRule,
		Time:      snapshot.Time,
		RawValue: map[string]float64{
			"rsi": rsiValue,
		},
	}, nil
}

// RawValue implements the Indicator interface.
// Expected parameters: closes ([]float64).
func (r *RSI) RawValue(params ...any) (float64, error) {
	if len(params) < 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires 1 parameter: closes ([]float64)")
	}

	closes, ok := params[0].([]float64)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "first parameter must be of type []float64 (closes)")
	}

	return RSIValue(closes, r.period), nil
}
