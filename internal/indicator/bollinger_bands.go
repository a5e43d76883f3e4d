package indicator

import (
	"fmt"
	"math"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// BollingerValue computes a simple moving average band with k population
// standard deviations over the trailing window. With fewer than period
// points all three bands collapse to the mean of the available prices.
func BollingerValue(prices []float64, period int, k float64) types.BollingerBands {
	if len(prices) == 0 {
		return types.BollingerBands{}
	}

	if period <= 0 || len(prices) < period {
		avg := mean(prices)

		return types.BollingerBands{Upper: avg, Middle: avg, Lower: avg}
	}

	window := prices[len(prices)-period:]
	sma := mean(window)

	var variance float64
	for _, price := range window {
		diff := price - sma
		variance += diff * diff
	}

	variance /= float64(period)
	stdDev := math.Sqrt(variance)

	return types.BollingerBands{
		Upper:  sma + k*stdDev,
		Middle: sma,
		Lower:  sma - k*stdDev,
	}
}

// BollingerBands represents the Bollinger Bands indicator.
type BollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,
		stdDev: 2,
	}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollinger
}

// Config configures the Bollinger Bands indicator.
// Expected parameters: period (int), stdDev (float64).
func (b *BollingerBands) Config(params ...any) error {
	if len(params) < 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "stdDev must be positive, got %f", stdDev)
	}

	b.period = period
	b.stdDev = stdDev

	return nil
}

// Value computes the band levels for a close series.
func (b *BollingerBands) Value(closes []float64) types.BollingerBands {
	return BollingerValue(closes, b.period, b.stdDev)
}

// GetSignal votes when price touches the lower or upper band.
func (b *BollingerBands) GetSignal(snapshot types.MarketSnapshot, ctx IndicatorContext) (types.Signal, error) {
	bands := BollingerValue(ctx.Series.Closes(), b.period, b.stdDev)
	price := snapshot.Price

	action := types.ActionWait
	reason := "No signal"

	// A collapsed band is a degraded default, not a touch.
	if bands.Upper > bands.Lower {
		switch {
		case price <= bands.Lower:
			action = types.ActionBuy
			reason = fmt.Sprintf("Price at lower Bollinger Band (%.4f)", bands.Lower)
		case price >= bands.Upper:
			action = types.ActionSell
			reason = fmt.Sprintf("Price at upper Bollinger Band (%.4f)", bands.Upper)
		}
	}

	return types.Signal{
		Symbol:    snapshot.Symbol,
		Action:    action,
		Reasoning: reason,
		Source:    types.SignalSourceRule,
		Time:      snapshot.Time,
		RawValue: map[string]float64{
			"upper":  bands.Upper,
			"middle": bands.Middle,
			"lower":  bands.Lower,
		},
	}, nil
}

// RawValue implements the Indicator interface; it returns the middle band.
// Expected parameters: closes ([]float64).
func (b *BollingerBands) RawValue(params ...any) (float64, error) {
	if len(params) < 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires 1 parameter: closes ([]float64)")
	}

	closes, ok := params[0].([]float64)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "first parameter must be of type []float64 (closes)")
	}

	return BollingerValue(closes, b.period, b.stdDev).Middle, nil
}
