// Package rule converts indicator opinions into scored BUY/SELL/WAIT
// signals. Each indicator votes independently through the shared registry;
// the generator tallies the votes and confidence weights, then applies the
// weak-edge cutoff.
package rule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/indicator"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
)

// Vote weights per indicator. Volume never votes a direction; it only
// adjusts conviction.
const (
	weightRSI       = 0.3
	weightMACD      = 0.25
	weightBollinger = 0.2
	weightVolumeUp  = 0.15
	weightVolumeDn  = 0.10
)

// minActionableConfidence is the weak-edge cutoff below which the generator
// downgrades any directional call to WAIT.
const minActionableConfidence = 0.3

// votingIndicators lists the registry entries that contribute a directional
// vote, with their weights.
var votingIndicators = []struct {
	name   types.IndicatorType
	weight float64
}{
	{types.IndicatorTypeRSI, weightRSI},
	{types.IndicatorTypeMACD, weightMACD},
	{types.IndicatorTypeBollinger, weightBollinger},
}

// contribution is one indicator's directional opinion with its weight.
type contribution struct {
	action types.Action
	weight float64
	reason string
}

// RuleSignalGenerator scores indicator contributions for one symbol and
// emits at most one signal per evaluation.
type RuleSignalGenerator struct {
	cfg      config.IndicatorConfig
	logger   *logger.Logger
	registry indicator.IndicatorRegistry
}

// NewRuleSignalGenerator creates a generator whose indicators carry the
// given periods and thresholds.
func NewRuleSignalGenerator(cfg config.IndicatorConfig, l *logger.Logger) *RuleSignalGenerator {
	if l == nil {
		l = logger.NewNopLogger()
	}

	registry, err := indicator.NewConfiguredRegistry(snapshotConfig(cfg))
	if err != nil {
		// Config is validated before it reaches here; a generator must
		// still never run without indicators.
		l.Error("indicator configuration rejected, falling back to defaults", zap.Error(err))

		registry, _ = indicator.NewDefaultRegistry()
	}

	return &RuleSignalGenerator{
		cfg:      cfg,
		logger:   l,
		registry: registry,
	}
}

// Generate evaluates one symbol. The boolean is false when the series has
// fewer than the configured minimum of points, meaning no signal exists at
// all; that is not a WAIT and callers must not record it as a decision.
func (g *RuleSignalGenerator) Generate(snapshot types.MarketSnapshot, series *types.PriceSeries) (types.Signal, bool) {
	if series == nil || series.Len() < g.cfg.MinHistory {
		return types.Signal{}, false
	}

	ctx := indicator.IndicatorContext{Series: series, Registry: g.registry}

	action, confidence, reasons := g.resolve(g.collect(snapshot, ctx), g.volumeAnalysis(snapshot, series))

	signal := types.Signal{
		ID:         uuid.New().String(),
		Symbol:     snapshot.Symbol,
		Action:     action,
		Confidence: confidence,
		Reasoning:  strings.Join(reasons, "; "),
		Source:     types.SignalSourceRule,
		Time:       snapshot.Time,
		RawValue:   indicator.Snapshot(series, snapshot.Volume, snapshotConfig(g.cfg)),
	}

	g.logger.Debug(fmt.Sprintf("rule signal for %s: %s (%.2f)", snapshot.Symbol, action, confidence))

	return signal, true
}

// collect gathers one weighted contribution per voting indicator in the
// registry. An indicator that abstains (WAIT) or errors contributes nothing.
func (g *RuleSignalGenerator) collect(snapshot types.MarketSnapshot, ctx indicator.IndicatorContext) []contribution {
	var contributions []contribution

	for _, voter := range votingIndicators {
		ind, err := g.registry.GetIndicator(voter.name)
		if err != nil {
			g.logger.Warn("voting indicator missing from registry", zap.String("indicator", string(voter.name)))
			continue
		}

		opinion, err := ind.GetSignal(snapshot, ctx)
		if err != nil {
			g.logger.Warn("indicator evaluation failed",
				zap.String("indicator", string(voter.name)),
				zap.Error(err))

			continue
		}

		if opinion.Action == types.ActionWait {
			continue
		}

		contributions = append(contributions, contribution{
			action: opinion.Action,
			weight: voter.weight,
			reason: opinion.Reasoning,
		})
	}

	return contributions
}

// volumeAnalysis classifies the snapshot's volume through the configured
// volume indicator.
func (g *RuleSignalGenerator) volumeAnalysis(snapshot types.MarketSnapshot, series *types.PriceSeries) types.VolumeAnalysis {
	ind, err := g.registry.GetIndicator(types.IndicatorTypeVolumeRatio)
	if err != nil {
		return types.VolumeAnalysis{Ratio: 1.0, Trend: types.VolumeLabelNeutral}
	}

	volume, ok := ind.(*indicator.Volume)
	if !ok {
		return types.VolumeAnalysis{Ratio: 1.0, Trend: types.VolumeLabelNeutral}
	}

	return volume.Analyze(snapshot, series)
}

// resolve tallies the signed contributions. Buy contributions raise the
// score, sell contributions lower it, and conviction is the magnitude of the
// net result so that opposing indicators cancel out.
func (g *RuleSignalGenerator) resolve(contributions []contribution, volume types.VolumeAnalysis) (types.Action, float64, []string) {
	var (
		buyVotes, sellVotes int
		score               float64
		reasons             []string
	)

	for _, c := range contributions {
		switch c.action {
		case types.ActionBuy:
			buyVotes++
			score += c.weight
		case types.ActionSell:
			sellVotes++
			score -= c.weight
		default:
			continue
		}

		reasons = append(reasons, c.reason)
	}

	confidence := score
	if confidence < 0 {
		confidence = -confidence
	}

	action := types.ActionWait

	switch {
	case buyVotes > sellVotes:
		action = types.ActionBuy
	case sellVotes > buyVotes:
		action = types.ActionSell
	case buyVotes > 0 && buyVotes == sellVotes:
		confidence /= 2
		reasons = append(reasons, "conflicting indicator votes")
	}

	switch volume.Trend {
	case types.VolumeLabelHigh:
		confidence += weightVolumeUp
		reasons = append(reasons, fmt.Sprintf("high volume (%.1fx avg)", volume.Ratio))
	case types.VolumeLabelLow:
		confidence -= weightVolumeDn
		reasons = append(reasons, fmt.Sprintf("low volume (%.1fx avg)", volume.Ratio))
	}

	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	if action != types.ActionWait && confidence < minActionableConfidence {
		action = types.ActionWait
		reasons = append(reasons, "confidence below actionable threshold")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "no indicator triggered")
	}

	return action, confidence, reasons
}

func snapshotConfig(cfg config.IndicatorConfig) indicator.SnapshotConfig {
	return indicator.SnapshotConfig{
		RSIPeriod:        cfg.RSIPeriod,
		RSIOversold:      cfg.RSIOversold,
		RSIOverbought:    cfg.RSIOverbought,
		EMAShort:         cfg.EMAShort,
		EMALong:          cfg.EMALong,
		MACDFast:         cfg.MACDFast,
		MACDSlow:         cfg.MACDSlow,
		MACDSignal:       cfg.MACDSignal,
		BollingerLen:     cfg.BollingerLen,
		BollingerK:       cfg.BollingerK,
		VolumeMultiplier: cfg.VolumeMultiplier,
	}
}
