package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

type GeminiTestSuite struct {
	suite.Suite
}

func TestGeminiSuite(t *testing.T) {
	suite.Run(t, new(GeminiTestSuite))
}

func (suite *GeminiTestSuite) TestParseAnalysis() {
	text := `{"signals":[{"symbol":"BTCUSDT","action":"BUY","confidence":0.8,"reasoning":"momentum"}],"market_sentiment":"bullish","risk_level":"medium","summary":"ok"}`

	analysis, err := parseAnalysis(text)
	suite.Require().NoError(err)
	suite.Require().Len(analysis.Signals, 1)
	suite.Equal(types.ActionBuy, analysis.Signals[0].Action)
	suite.Equal("bullish", analysis.MarketSentiment)
}

func (suite *GeminiTestSuite) TestParseAnalysisStripsFences() {
	text := "```json\n{\"signals\":[],\"market_sentiment\":\"neutral\",\"risk_level\":\"low\",\"summary\":\"\"}\n```"

	analysis, err := parseAnalysis(text)
	suite.Require().NoError(err)
	suite.Equal("neutral", analysis.MarketSentiment)
}

func (suite *GeminiTestSuite) TestParseAnalysisNormalizesOpinions() {
	text := `{"signals":[{"symbol":"BTCUSDT","action":"HOLD","confidence":2.5}]}`

	analysis, err := parseAnalysis(text)
	suite.Require().NoError(err)
	suite.Equal(types.ActionWait, analysis.Signals[0].Action)
	suite.Equal(1.0, analysis.Signals[0].Confidence)
}

func (suite *GeminiTestSuite) TestParseAnalysisMalformed() {
	_, err := parseAnalysis("the market looks bullish to me")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeModelBadResponse))
}

func (suite *GeminiTestSuite) TestBuildPromptIncludesIndicators() {
	mc := MarketContext{
		Scope: ScopeRoutine,
		Snapshots: map[string]types.MarketSnapshot{
			"BTCUSDT": {Symbol: "BTCUSDT", Price: 50000, Change24h: 0.05, Volume: 1200},
		},
		Indicators: map[string]types.IndicatorSnapshot{
			"BTCUSDT": {RSI: 72.5, EMAShort: 50100.1234, EMALong: 49800.5678},
		},
	}

	prompt := buildPrompt(mc)
	suite.Contains(prompt, "BTCUSDT")
	suite.Contains(prompt, "RSI 72.5")
	suite.Contains(prompt, "EMA short/long 50100.1234/49800.5678")
	suite.Contains(prompt, "JSON only")
}

func (suite *GeminiTestSuite) TestBuildPromptIncludesRiskParameters() {
	mc := MarketContext{
		Scope: ScopeRoutine,
		Snapshots: map[string]types.MarketSnapshot{
			"BTCUSDT": {Symbol: "BTCUSDT", Price: 50000, Change24h: 0.05, Volume: 1200},
		},
		Risk: RiskContext{DailyProfitTarget: 0.01, MaxDailyLoss: -0.02, MaxPositionPct: 0.2},
	}

	prompt := buildPrompt(mc)
	suite.Contains(prompt, "daily profit target 1.0%")
	suite.Contains(prompt, "max daily loss -2.0%")
	suite.Contains(prompt, "max position 20.0%")

	// No configured risk parameters, no risk line.
	mc.Risk = RiskContext{}
	suite.NotContains(buildPrompt(mc), "Risk parameters")
}

type stubProvider struct {
	name      string
	available bool
}

func (s *stubProvider) Name() string       { return s.name }
func (s *stubProvider) IsAvailable() bool  { return s.available }
func (s *stubProvider) Analyze(ctx context.Context, mc MarketContext) (types.ModelAnalysis, error) {
	return types.ModelAnalysis{Model: s.name}, nil
}

func (suite *GeminiTestSuite) TestRegistryFiltersUnavailable() {
	registry := NewRegistry()
	registry.Register(&stubProvider{name: "gemini", available: true})
	registry.Register(&stubProvider{name: "offline", available: false})

	available := registry.Available()
	suite.Require().Len(available, 1)
	suite.Equal("gemini", available[0].Name())
}
