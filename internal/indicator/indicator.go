// Package indicator implements the technical indicator engine. All
// calculations degrade to neutral defaults on insufficient data instead of
// returning errors; callers must treat a neutral output as "no opinion".
package indicator

import (
	"github.com/aegis-lab/aegis-trading/internal/types"
)

// IndicatorContext carries the data an indicator needs for one evaluation.
type IndicatorContext struct {
	// Series is the bounded candle history for the symbol under evaluation.
	Series *types.PriceSeries
	// Registry allows composite indicators to resolve their dependencies.
	Registry IndicatorRegistry
}

// Indicator interface defines methods that any technical indicator must implement.
type Indicator interface {
	// GetSignal evaluates the indicator against current market data and
	// returns a directional opinion (Action WAIT means no vote).
	GetSignal(snapshot types.MarketSnapshot, ctx IndicatorContext) (types.Signal, error)
	// Name returns the name of the indicator.
	Name() types.IndicatorType
	// RawValue returns the raw value of the indicator.
	RawValue(params ...any) (float64, error)
	// Config configures the indicator parameters.
	Config(params ...any) error
}

// Snapshot computes the full indicator snapshot for one series. Degenerate
// series produce the documented neutral defaults.
func Snapshot(series *types.PriceSeries, currentVolume float64, cfg SnapshotConfig) types.IndicatorSnapshot {
	closes := series.Closes()
	volumes := series.Volumes()

	// The current candle's volume is excluded from its own baseline.
	history := volumes
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	return types.IndicatorSnapshot{
		RSI:       RSIValue(closes, cfg.RSIPeriod),
		EMAShort:  EMAValue(closes, cfg.EMAShort),
		EMALong:   EMAValue(closes, cfg.EMALong),
		MACD:      MACDValue(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		Bollinger: BollingerValue(closes, cfg.BollingerLen, cfg.BollingerK),
		Volume:    VolumeRatio(currentVolume, history, cfg.VolumeMultiplier),
	}
}

// SnapshotConfig bundles the indicator periods and thresholds.
type SnapshotConfig struct {
	RSIPeriod        int
	RSIOversold      float64
	RSIOverbought    float64
	EMAShort         int
	EMALong          int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	BollingerLen     int
	BollingerK       float64
	VolumeMultiplier float64
}
