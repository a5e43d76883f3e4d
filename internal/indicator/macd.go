package indicator

import (
	"fmt"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// MACDValue computes the MACD line, its signal line and the histogram.
// The signal line is the EMA of a genuine rolling MACD-line series, not a
// constant approximation. Fewer than slow+signal points yields the all-zero
// neutral result.
func MACDValue(prices []float64, fast, slow, signal int) types.MACDResult {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return types.MACDResult{}
	}

	if len(prices) < slow+signal {
		return types.MACDResult{}
	}

	// Roll the MACD line across the tail so the signal line has a real
	// series to smooth over.
	macdSeries := make([]float64, 0, len(prices)-slow+1)
	for i := slow; i <= len(prices); i++ {
		window := prices[:i]
		macdSeries = append(macdSeries, EMAValue(window, fast)-EMAValue(window, slow))
	}

	macdLine := macdSeries[len(macdSeries)-1]
	signalLine := EMAValue(macdSeries, signal)

	return types.MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: macdLine - signalLine,
	}
}

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator.
// Expected parameters: fast (int), slow (int), signal (int).
func (m *MACD) Config(params ...any) error {
	if len(params) < 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fast (int), slow (int), signal (int)")
	}

	periods := make([]int, 3)

	for i := 0; i < 3; i++ {
		p, ok := params[i].(int)
		if !ok {
			return errors.Newf(errors.ErrCodeInvalidType, "invalid type for parameter %d, expected int", i+1)
		}

		if p <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", p)
		}

		periods[i] = p
	}

	if periods[1] <= periods[0] {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "slow period must exceed fast period, got %d/%d", periods[0], periods[1])
	}

	m.fastPeriod = periods[0]
	m.slowPeriod = periods[1]
	m.signalPeriod = periods[2]

	return nil
}

// Value computes the full MACD triple for a close series.
func (m *MACD) Value(closes []float64) types.MACDResult {
	return MACDValue(closes, m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

// GetSignal detects bullish and bearish MACD crossovers.
func (m *MACD) GetSignal(snapshot types.MarketSnapshot, ctx IndicatorContext) (types.Signal, error) {
	result := m.Value(ctx.Series.Closes())

	action := types.ActionWait
	reason := "No signal"

	switch {
	case result.Histogram > 0 && result.MACD > result.Signal:
		action = types.ActionBuy
		reason = "MACD bullish crossover"
	case result.Histogram < 0 && result.MACD < result.Signal:
		action = types.ActionSell
		reason = "MACD bearish crossover"
	}

	return types.Signal{
		Symbol:    snapshot.Symbol,
		Action:    action,
		Reasoning: reason,
		Source:    types.SignalSourceRule,
		Time:      snapshot.Time,
		RawValue: map[string]float64{
			"macd":      result.MACD,
			"signal":    result.Signal,
			"histogram": result.Histogram,
		},
	}, nil
}

// RawValue implements the Indicator interface; it returns the histogram.
// Expected parameters: closes ([]float64).
func (m *MACD) RawValue(params ...any) (float64, error) {
	if len(params) < 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires 1 parameter: closes ([]float64)")
	}

	closes, ok := params[0].([]float64)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, fmt.Sprintf("first parameter must be of type []float64 (closes), got %T", params[0]))
	}

	return m.Value(closes).Histogram, nil
}
