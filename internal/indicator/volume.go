package indicator

import (
	"fmt"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// VolumeRatio compares current volume against the mean of its history and
// labels it high (>= highMultiplier), low (< 0.7) or normal. An empty
// history yields a neutral 1.0 ratio.
func VolumeRatio(current float64, history []float64, highMultiplier float64) types.VolumeAnalysis {
	if len(history) == 0 {
		return types.VolumeAnalysis{Ratio: 1.0, Trend: types.VolumeLabelNeutral, Average: current}
	}

	avg := mean(history)

	ratio := 1.0
	if avg > 0 {
		ratio = current / avg
	}

	trend := types.VolumeLabelNormal

	switch {
	case ratio >= highMultiplier:
		trend = types.VolumeLabelHigh
	case ratio < 0.7:
		trend = types.VolumeLabelLow
	}

	return types.VolumeAnalysis{
		Ratio:   ratio,
		Trend:   trend,
		Average: avg,
	}
}

// Volume analyzes current volume against its recent average. It contributes
// confidence only; its opinion is always WAIT.
type Volume struct {
	highMultiplier float64
}

// NewVolume creates a new volume indicator with default configuration.
func NewVolume() Indicator {
	return &Volume{
		highMultiplier: 1.5,
	}
}

// Name returns the name of the indicator.
func (v *Volume) Name() types.IndicatorType {
	return types.IndicatorTypeVolumeRatio
}

// Config configures the volume indicator.
// Expected parameters: highMultiplier (float64).
func (v *Volume) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: highMultiplier (float64)")
	}

	multiplier, ok := params[0].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for highMultiplier parameter, expected float64")
	}

	if multiplier <= 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "highMultiplier must exceed 1, got %f", multiplier)
	}

	v.highMultiplier = multiplier

	return nil
}

// Analyze classifies the snapshot's volume against the series history,
// excluding the current candle from its own baseline.
func (v *Volume) Analyze(snapshot types.MarketSnapshot, series *types.PriceSeries) types.VolumeAnalysis {
	volumes := series.Volumes()
	if len(volumes) > 0 {
		volumes = volumes[:len(volumes)-1]
	}

	return VolumeRatio(snapshot.Volume, volumes, v.highMultiplier)
}

// GetSignal reports the volume classification. Volume never votes a direction.
func (v *Volume) GetSignal(snapshot types.MarketSnapshot, ctx IndicatorContext) (types.Signal, error) {
	analysis := v.Analyze(snapshot, ctx.Series)

	return types.Signal{
		Symbol:    snapshot.Symbol,
		Action:    types.ActionWait,
		Reasoning: fmt.Sprintf("Volume %s (%.1fx avg)", analysis.Trend, analysis.Ratio),
		Source:    types.SignalSourceRule,
		Time:      snapshot.Time,
		RawValue: map[string]float64{
			"volume_ratio": analysis.Ratio,
			"avg_volume":   analysis.Average,
		},
	}, nil
}

// RawValue implements the Indicator interface; it returns the volume ratio.
// Expected parameters: current (float64), history ([]float64).
func (v *Volume) RawValue(params ...any) (float64, error) {
	if len(params) < 2 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires 2 parameters: current (float64), history ([]float64)")
	}

	current, ok := params[0].(float64)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "first parameter must be of type float64 (current)")
	}

	history, ok := params[1].([]float64)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "second parameter must be of type []float64 (history)")
	}

	return VolumeRatio(current, history, v.highMultiplier).Ratio, nil
}
