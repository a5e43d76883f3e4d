// Package consensus merges rule-based and AI-sourced opinions into one
// decision per symbol. It never fails for missing model input; with no
// contributing source at all it degrades to the 24h-change fallback so the
// pipeline always produces a decision.
package consensus

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
)

// tieStrength is the consensus strength assigned on an exact vote tie, a
// deliberate safety bias toward WAIT.
const tieStrength = 0.3

// Aggregator implements the consensus vote.
type Aggregator struct {
	cfg    config.ConsensusConfig
	risk   config.RiskConfig
	logger *logger.Logger
}

// NewAggregator creates an aggregator. The risk configuration supplies the
// stop-loss and take-profit offsets for actionable consensus signals.
func NewAggregator(cfg config.ConsensusConfig, risk config.RiskConfig, l *logger.Logger) *Aggregator {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &Aggregator{
		cfg:    cfg,
		risk:   risk,
		logger: l,
	}
}

// Aggregate merges the rule signal, the anomaly signal (each if any) and
// each model's opinion for the snapshot's symbol. With no source at all it
// falls back to the 24h threshold path.
func (a *Aggregator) Aggregate(snapshot types.MarketSnapshot, ruleSignal, anomalySignal optional.Option[types.Signal], analyses []types.ModelAnalysis) types.ConsensusSignal {
	votes := collectVotes(snapshot.Symbol, ruleSignal, anomalySignal, analyses)

	if len(votes) == 0 {
		return a.fallback(snapshot)
	}

	var result types.ConsensusSignal

	if len(votes) == 2 && otherSourceCount(votes) == 1 {
		result = a.twoSourceConsensus(snapshot, votes)
	} else {
		result = a.pluralityConsensus(snapshot, votes)
	}

	result.MarketSentiment, result.RiskLevel = consensusMeta(analyses)
	a.derivePriceLevels(&result, snapshot.Price)

	a.logger.Debug(fmt.Sprintf("consensus for %s: %s (%.2f, strength %.2f)", snapshot.Symbol, result.Action, result.Confidence, result.ConsensusStrength))

	return result
}

// collectVotes gathers the rule vote, the anomaly vote and one normalized
// vote per model that expressed an opinion on the symbol.
func collectVotes(symbol string, ruleSignal, anomalySignal optional.Option[types.Signal], analyses []types.ModelAnalysis) []types.Vote {
	var votes []types.Vote

	if rs, err := ruleSignal.Take(); err == nil {
		votes = append(votes, types.Vote{
			Source:     types.SignalSourceRule,
			Action:     rs.Action,
			Confidence: rs.Confidence,
		})
	}

	if as, err := anomalySignal.Take(); err == nil {
		votes = append(votes, types.Vote{
			Source:     types.SignalSourceAnomaly,
			Action:     as.Action,
			Confidence: as.Confidence,
		})
	}

	for _, analysis := range analyses {
		for _, opinion := range analysis.Signals {
			if opinion.Symbol != symbol {
				continue
			}

			normalized := opinion.Normalize()
			votes = append(votes, types.Vote{
				Source:     types.ModelSource(analysis.Model),
				Action:     normalized.Action,
				Confidence: normalized.Confidence,
			})
		}
	}

	return votes
}

// otherSourceCount counts the votes that did not come from the rule engine.
func otherSourceCount(votes []types.Vote) int {
	count := 0

	for _, v := range votes {
		if v.Source != types.SignalSourceRule {
			count++
		}
	}

	return count
}

// pluralityConsensus applies the general vote: plurality action wins, an
// exact tie across the leading actions forces WAIT.
func (a *Aggregator) pluralityConsensus(snapshot types.MarketSnapshot, votes []types.Vote) types.ConsensusSignal {
	counts := make(map[types.Action]int)

	var confidenceSum float64

	for _, v := range votes {
		counts[v.Action]++
		confidenceSum += v.Confidence
	}

	winner, tied := pluralityWinner(counts)
	avgConfidence := confidenceSum / float64(len(votes))

	var (
		action   types.Action
		strength float64
		reason   string
	)

	if tied {
		action = types.ActionWait
		strength = tieStrength
		reason = "vote tie, defaulting to WAIT"
	} else {
		action = winner
		strength = float64(counts[winner]) / float64(len(votes))
		reason = fmt.Sprintf("%d of %d sources voted %s", counts[winner], len(votes), winner)
	}

	return types.ConsensusSignal{
		Signal: types.Signal{
			ID:         uuid.New().String(),
			Symbol:     snapshot.Symbol,
			Action:     action,
			Confidence: clamp01(avgConfidence * strength),
			Reasoning:  reason,
			Source:     types.SignalSourceConsensus,
			Time:       snapshot.Time,
		},
		Votes:             votes,
		ConsensusStrength: strength,
		Agreement:         unanimous(votes),
	}
}

// twoSourceConsensus handles exactly one rule signal against exactly one
// other source, a model opinion or an anomaly vote. Agreement is rewarded;
// disagreement resolves to the more confident source with a penalty.
func (a *Aggregator) twoSourceConsensus(snapshot types.MarketSnapshot, votes []types.Vote) types.ConsensusSignal {
	ruleVote, otherVote := votes[0], votes[1]
	if ruleVote.Source != types.SignalSourceRule {
		ruleVote, otherVote = otherVote, ruleVote
	}

	var (
		action     types.Action
		confidence float64
		strength   float64
		reason     string
		agreement  bool
	)

	if ruleVote.Action == otherVote.Action {
		action = ruleVote.Action
		confidence = math.Min(0.95, (ruleVote.Confidence+otherVote.Confidence)/2+0.2)
		strength = 1.0
		agreement = true
		reason = fmt.Sprintf("rule and %s agree on %s", otherVote.Source, action)
	} else {
		winner := ruleVote
		if otherVote.Confidence > ruleVote.Confidence {
			winner = otherVote
		}

		action = winner.Action
		confidence = math.Max(0.1, winner.Confidence-0.3)
		strength = 0.5
		reason = fmt.Sprintf("override: %s outweighs the opposing source with %s", winner.Source, action)
	}

	return types.ConsensusSignal{
		Signal: types.Signal{
			ID:         uuid.New().String(),
			Symbol:     snapshot.Symbol,
			Action:     action,
			Confidence: confidence,
			Reasoning:  reason,
			Source:     types.SignalSourceConsensus,
			Time:       snapshot.Time,
		},
		Votes:             votes,
		ConsensusStrength: strength,
		Agreement:         agreement,
	}
}

// fallback produces the pure 24h-change threshold decision used when no
// source contributed an opinion.
func (a *Aggregator) fallback(snapshot types.MarketSnapshot) types.ConsensusSignal {
	action := types.ActionWait

	switch {
	case snapshot.Change24h > a.cfg.FallbackChangeThreshold:
		action = types.ActionBuy
	case snapshot.Change24h < -a.cfg.FallbackChangeThreshold:
		action = types.ActionSell
	}

	// Directional conviction starts at 0.4 and grows with the size of the
	// move; an undecided fallback keeps a flat 0.3.
	confidence := 0.3
	if action != types.ActionWait {
		confidence = math.Min(a.cfg.FallbackMaxConfidence, 0.4+math.Abs(snapshot.Change24h))
	}

	result := types.ConsensusSignal{
		Signal: types.Signal{
			ID:         uuid.New().String(),
			Symbol:     snapshot.Symbol,
			Action:     action,
			Confidence: confidence,
			Reasoning:  fmt.Sprintf("fallback on 24h change %.1f%%", snapshot.Change24h*100),
			Source:     types.SignalSourceFallback,
			Time:       snapshot.Time,
		},
		ConsensusStrength: confidence,
	}

	a.derivePriceLevels(&result, snapshot.Price)

	return result
}

// derivePriceLevels sets entry, stop-loss and take-profit for actionable
// signals. The offsets flip sign for SELL.
func (a *Aggregator) derivePriceLevels(signal *types.ConsensusSignal, price float64) {
	if price <= 0 {
		return
	}

	switch signal.Action {
	case types.ActionBuy:
		signal.EntryPrice = optional.Some(price)
		signal.StopLoss = optional.Some(price * (1 - a.risk.StopLossPct))
		signal.TakeProfit = optional.Some(price * (1 + a.risk.TakeProfitPct))
	case types.ActionSell:
		signal.EntryPrice = optional.Some(price)
		signal.StopLoss = optional.Some(price * (1 + a.risk.StopLossPct))
		signal.TakeProfit = optional.Some(price * (1 - a.risk.TakeProfitPct))
	}
}

// consensusMeta derives the majority market sentiment and risk level across
// the model analyses that reported them.
func consensusMeta(analyses []types.ModelAnalysis) (string, string) {
	sentiment := majorityLabel(analyses, func(a types.ModelAnalysis) string { return a.MarketSentiment })
	risk := majorityLabel(analyses, func(a types.ModelAnalysis) string { return a.RiskLevel })

	return sentiment, risk
}

func majorityLabel(analyses []types.ModelAnalysis, pick func(types.ModelAnalysis) string) string {
	counts := make(map[string]int)

	for _, analysis := range analyses {
		if label := strings.TrimSpace(pick(analysis)); label != "" {
			counts[label]++
		}
	}

	if len(counts) == 0 {
		return ""
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}

	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}

		return labels[i] < labels[j]
	})

	return labels[0]
}

func pluralityWinner(counts map[types.Action]int) (types.Action, bool) {
	var (
		winner types.Action
		best   int
		tied   bool
	)

	for _, action := range []types.Action{types.ActionBuy, types.ActionSell, types.ActionWait} {
		count, ok := counts[action]
		if !ok {
			continue
		}

		switch {
		case count > best:
			winner, best, tied = action, count, false
		case count == best:
			tied = true
		}
	}

	return winner, tied
}

func unanimous(votes []types.Vote) bool {
	for _, v := range votes[1:] {
		if v.Action != votes[0].Action {
			return false
		}
	}

	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
