package consensus

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/scheduler"
	"github.com/aegis-lab/aegis-trading/internal/types"
)

type AggregatorTestSuite struct {
	suite.Suite
	aggregator *Aggregator
	snapshot   types.MarketSnapshot
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}

func (suite *AggregatorTestSuite) SetupTest() {
	cfg := config.DefaultConfig()
	suite.aggregator = NewAggregator(cfg.Consensus, cfg.Risk, nil)
	suite.snapshot = types.MarketSnapshot{
		Symbol: "BTCUSDT",
		Price:  50000,
		Time:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func ruleSignal(action types.Action, confidence float64) optional.Option[types.Signal] {
	return optional.Some(types.Signal{
		ID:         "rule-1",
		Symbol:     "BTCUSDT",
		Action:     action,
		Confidence: confidence,
		Source:     types.SignalSourceRule,
	})
}

func anomalySignal(action types.Action, confidence float64) optional.Option[types.Signal] {
	return optional.Some(types.Signal{
		ID:         "anomaly-1",
		Symbol:     "BTCUSDT",
		Action:     action,
		Confidence: confidence,
		Source:     types.SignalSourceAnomaly,
	})
}

func noSignal() optional.Option[types.Signal] {
	return optional.None[types.Signal]()
}

func modelAnalysis(model string, action types.Action, confidence float64) types.ModelAnalysis {
	return types.ModelAnalysis{
		Model: model,
		Signals: []types.ModelOpinion{
			{Symbol: "BTCUSDT", Action: action, Confidence: confidence, Model: model},
		},
	}
}

func (suite *AggregatorTestSuite) TestTwoSourceDisagreementOverride() {
	// Rule BUY(0.6) against one model SELL(0.8): the more confident model
	// wins with its confidence penalized by 0.3.
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.6), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionSell, 0.8),
	})

	suite.Equal(types.ActionSell, result.Action)
	suite.InDelta(0.5, result.Confidence, 1e-9)
	suite.Contains(result.Reasoning, "override")
	suite.False(result.Agreement)
}

func (suite *AggregatorTestSuite) TestTwoSourceAgreementBoostsConfidence() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.6), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionBuy, 0.7),
	})

	suite.Equal(types.ActionBuy, result.Action)
	suite.InDelta(0.85, result.Confidence, 1e-9)
	suite.True(result.Agreement)

	// Agreement confidence always reaches at least the best source.
	suite.GreaterOrEqual(result.Confidence, 0.7)
}

func (suite *AggregatorTestSuite) TestTwoSourceAgreementCappedAt095() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.9), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionBuy, 0.95),
	})

	suite.InDelta(0.95, result.Confidence, 1e-9)
}

func (suite *AggregatorTestSuite) TestAnomalyOverridesWaitingRule() {
	// A waiting rule engine against one confident anomaly vote resolves to
	// the anomaly's direction with the override penalty.
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionWait, 0), anomalySignal(types.ActionBuy, 0.8), nil)

	suite.Equal(types.ActionBuy, result.Action)
	suite.InDelta(0.5, result.Confidence, 1e-9)
	suite.Contains(result.Reasoning, "override")
	suite.Require().Len(result.Votes, 2)
	suite.Equal(types.SignalSourceAnomaly, result.Votes[1].Source)
}

func (suite *AggregatorTestSuite) TestRuleAndAnomalyAgreement() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionSell, 0.5), anomalySignal(types.ActionSell, 0.7), nil)

	suite.Equal(types.ActionSell, result.Action)
	suite.InDelta(0.8, result.Confidence, 1e-9)
	suite.True(result.Agreement)
}

func (suite *AggregatorTestSuite) TestAnomalyAloneCarriesTheVote() {
	result := suite.aggregator.Aggregate(suite.snapshot, noSignal(), anomalySignal(types.ActionSell, 0.7), nil)

	suite.Equal(types.ActionSell, result.Action)
	suite.Equal(types.SignalSourceConsensus, result.Source)
	suite.InDelta(0.7, result.Confidence, 1e-9)
	suite.Require().Len(result.Votes, 1)
	suite.Equal(types.SignalSourceAnomaly, result.Votes[0].Source)
}

func (suite *AggregatorTestSuite) TestAnomalyJoinsPluralityWithModels() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.6), anomalySignal(types.ActionBuy, 0.8), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionSell, 0.7),
	})

	suite.Equal(types.ActionBuy, result.Action)
	suite.Len(result.Votes, 3)
	suite.InDelta(2.0/3.0, result.ConsensusStrength, 1e-9)
}

func (suite *AggregatorTestSuite) TestExactTieYieldsWait() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.8), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionSell, 0.8),
		modelAnalysis("claude", types.ActionBuy, 0.6),
		modelAnalysis("gpt", types.ActionSell, 0.6),
	})

	suite.Equal(types.ActionWait, result.Action)
	suite.Equal(tieStrength, result.ConsensusStrength)
}

func (suite *AggregatorTestSuite) TestPluralityStrengthScalesConfidence() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.8), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionBuy, 0.6),
		modelAnalysis("claude", types.ActionWait, 0.4),
	})

	suite.Equal(types.ActionBuy, result.Action)
	suite.InDelta(2.0/3.0, result.ConsensusStrength, 1e-9)
	suite.InDelta(0.6*(2.0/3.0), result.Confidence, 1e-9)
	suite.False(result.Agreement)
	suite.Len(result.Votes, 3)
}

func (suite *AggregatorTestSuite) TestMalformedOpinionNormalizedAtBoundary() {
	analysis := types.ModelAnalysis{
		Model: "gemini",
		Signals: []types.ModelOpinion{
			{Symbol: "BTCUSDT", Action: types.Action("HOLD"), Confidence: 1.7},
		},
	}

	result := suite.aggregator.Aggregate(suite.snapshot, noSignal(), noSignal(), []types.ModelAnalysis{analysis})

	suite.Require().Len(result.Votes, 1)
	suite.Equal(types.ActionWait, result.Votes[0].Action)
	suite.Equal(1.0, result.Votes[0].Confidence)
}

func (suite *AggregatorTestSuite) TestOtherSymbolOpinionsIgnored() {
	analysis := types.ModelAnalysis{
		Model: "gemini",
		Signals: []types.ModelOpinion{
			{Symbol: "ETHUSDT", Action: types.ActionBuy, Confidence: 0.9},
		},
	}

	result := suite.aggregator.Aggregate(suite.snapshot, noSignal(), noSignal(), []types.ModelAnalysis{analysis})
	suite.Equal(types.SignalSourceFallback, result.Source)
}

func (suite *AggregatorTestSuite) TestFallbackThresholds() {
	// Directional fallback confidence is 0.4 plus the absolute move, capped.
	up := suite.snapshot
	up.Change24h = 0.04
	result := suite.aggregator.Aggregate(up, noSignal(), noSignal(), nil)
	suite.Equal(types.ActionBuy, result.Action)
	suite.Equal(types.SignalSourceFallback, result.Source)
	suite.InDelta(0.44, result.Confidence, 1e-9)

	down := suite.snapshot
	down.Change24h = -0.25
	result = suite.aggregator.Aggregate(down, noSignal(), noSignal(), nil)
	suite.Equal(types.ActionSell, result.Action)
	suite.InDelta(0.6, result.Confidence, 1e-9, "confidence capped")

	flat := suite.snapshot
	flat.Change24h = 0.01
	result = suite.aggregator.Aggregate(flat, noSignal(), noSignal(), nil)
	suite.Equal(types.ActionWait, result.Action)
	suite.InDelta(0.3, result.Confidence, 1e-9)
}

func (suite *AggregatorTestSuite) TestPriceLevelsFlipForSell() {
	buy := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionBuy, 0.6), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionBuy, 0.7),
	})

	suite.Equal(50000.0, buy.EntryPrice.TakeOr(0))
	suite.InDelta(49000, buy.StopLoss.TakeOr(0), 1e-6)
	suite.InDelta(51500, buy.TakeProfit.TakeOr(0), 1e-6)

	sell := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionSell, 0.6), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionSell, 0.7),
	})

	suite.InDelta(51000, sell.StopLoss.TakeOr(0), 1e-6)
	suite.InDelta(48500, sell.TakeProfit.TakeOr(0), 1e-6)
}

func (suite *AggregatorTestSuite) TestWaitConsensusHasNoPriceLevels() {
	result := suite.aggregator.Aggregate(suite.snapshot, ruleSignal(types.ActionWait, 0.2), noSignal(), []types.ModelAnalysis{
		modelAnalysis("gemini", types.ActionWait, 0.3),
	})

	suite.Equal(types.ActionWait, result.Action)
	suite.True(result.EntryPrice.IsNone())
}

func (suite *AggregatorTestSuite) TestSentimentAndRiskConsensus() {
	analyses := []types.ModelAnalysis{
		{Model: "gemini", MarketSentiment: "bullish", RiskLevel: "medium", Signals: []types.ModelOpinion{{Symbol: "BTCUSDT", Action: types.ActionBuy, Confidence: 0.7}}},
		{Model: "claude", MarketSentiment: "bullish", RiskLevel: "high", Signals: []types.ModelOpinion{{Symbol: "BTCUSDT", Action: types.ActionBuy, Confidence: 0.6}}},
		{Model: "gpt", MarketSentiment: "bearish", RiskLevel: "high", Signals: []types.ModelOpinion{{Symbol: "BTCUSDT", Action: types.ActionWait, Confidence: 0.5}}},
	}

	result := suite.aggregator.Aggregate(suite.snapshot, noSignal(), noSignal(), analyses)
	suite.Equal("bullish", result.MarketSentiment)
	suite.Equal("high", result.RiskLevel)
}

type SessionAdjustTestSuite struct {
	suite.Suite
}

func TestSessionAdjustSuite(t *testing.T) {
	suite.Run(t, new(SessionAdjustTestSuite))
}

func (suite *SessionAdjustTestSuite) TestAdjustScalesByMultiplier() {
	suite.InDelta(0.6, AdjustForSession(0.6, scheduler.SessionAsia), 1e-9)
	suite.InDelta(0.9, AdjustForSession(0.6, scheduler.SessionOverlap), 1e-9)
	suite.InDelta(0.3, AdjustForSession(0.6, scheduler.SessionWeekend), 1e-9)
}

func (suite *SessionAdjustTestSuite) TestAdjustClampsToOne() {
	suite.Equal(1.0, AdjustForSession(0.9, scheduler.SessionOverlap))
}
