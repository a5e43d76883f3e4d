package indicator

import (
	"fmt"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// EMAValue computes an exponential moving average seeded with the simple mean
// of the first period values, then smoothed with multiplier 2/(period+1).
// With fewer than period points it returns the arithmetic mean of whatever is
// available (zero for an empty slice).
func EMAValue(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}

	if period <= 0 || len(prices) < period {
		return mean(prices)
	}

	multiplier := 2.0 / float64(period+1)
	ema := mean(prices[:period])

	for _, price := range prices[period:] {
		ema = price*multiplier + ema*(1-multiplier)
	}

	return ema
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// EMA represents the Exponential Moving Average indicator. Its directional
// opinion compares a short EMA against a long EMA.
type EMA struct {
	shortPeriod int
	longPeriod  int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		shortPeriod: 20,
		longPeriod:  50,
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator.
// Expected parameters: shortPeriod (int), longPeriod (int).
func (e *EMA) Config(params ...any) error {
	if len(params) < 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: shortPeriod (int), longPeriod (int)")
	}

	shortPeriod, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for shortPeriod parameter, expected int")
	}

	longPeriod, ok := params[1].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for longPeriod parameter, expected int")
	}

	if shortPeriod <= 0 || longPeriod <= shortPeriod {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "periods must satisfy 0 < short < long, got %d/%d", shortPeriod, longPeriod)
	}

	e.shortPeriod = shortPeriod
	e.longPeriod = longPeriod

	return nil
}

// GetSignal compares the short and long EMAs for a trend opinion.
func (e *EMA) GetSignal(snapshot types.MarketSnapshot, ctx IndicatorContext) (types.Signal, error) {
	closes := ctx.Series.Closes()
	shortEMA := EMAValue(closes, e.shortPeriod)
	longEMA := EMAValue(closes, e.longPeriod)

	action := types.ActionWait
	reason := "No signal"

	// A degraded (short-history) EMA pair is no opinion, not a trend.
	if len(closes) >= e.longPeriod {
		if shortEMA > longEMA {
			action = types.ActionBuy
			reason = fmt.Sprintf("EMA%d above EMA%d", e.shortPeriod, e.longPeriod)
		} else if shortEMA < longEMA {
			action = types.ActionSell
			reason = fmt.Sprintf("EMA%d below EMA%d", e.shortPeriod, e.longPeriod)
		}
	}

	return types.Signal{
		Symbol:    snapshot.Symbol,
		Action:    action,
		Reasoning: reason,
		Source:    types.SignalSourceRule,
		Time:      snapshot.Time,
		RawValue: map[string]float64{
			"ema_short": shortEMA,
			"ema_long":  longEMA,
		},
	}, nil
}

// RawValue implements the Indicator interface.
// Expected parameters: closes ([]float64), optionally period (int, defaults to the short period).
func (e *EMA) RawValue(params ...any) (float64, error) {
	if len(params) < 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires 1 parameter: closes ([]float64)")
	}

	closes, ok := params[0].([]float64)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "first parameter must be of type []float64 (closes)")
	}

	period := e.shortPeriod

	if len(params) >= 2 {
		p, ok := params[1].(int)
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidType, "second parameter must be of type int (period)")
		}

		period = p
	}

	return EMAValue(closes, period), nil
}
