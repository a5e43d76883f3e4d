package indicator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorMathTestSuite struct {
	suite.Suite
}

func TestIndicatorMathSuite(t *testing.T) {
	suite.Run(t, new(IndicatorMathTestSuite))
}

func (suite *IndicatorMathTestSuite) TestRSIRangeInvariant() {
	rng := rand.New(rand.NewSource(42))
	prices := make([]float64, 200)
	prices[0] = 100

	for i := 1; i < len(prices); i++ {
		prices[i] = prices[i-1] * (1 + (rng.Float64()-0.5)*0.04)
	}

	rsi := RSIValue(prices, 14)
	suite.GreaterOrEqual(rsi, 0.0)
	suite.LessOrEqual(rsi, 100.0)
}

func (suite *IndicatorMathTestSuite) TestRSINeutralOnShortHistory() {
	prices := []float64{100, 101, 102, 103}
	suite.Equal(NeutralRSI, RSIValue(prices, 14))

	// Exactly period+1 points is already enough for a real value.
	uptrend := make([]float64, 15)
	for i := range uptrend {
		uptrend[i] = 100 + float64(i)
	}

	suite.NotEqual(NeutralRSI, RSIValue(uptrend, 14))
}

func (suite *IndicatorMathTestSuite) TestRSIPerfectUptrendIs100() {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)*2
	}

	suite.Equal(100.0, RSIValue(prices, 14))
}

func (suite *IndicatorMathTestSuite) TestRSIFlatWindowIsNeutral() {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
	}

	suite.Equal(NeutralRSI, RSIValue(prices, 14))
}

func (suite *IndicatorMathTestSuite) TestEMAEqualsMeanAtExactPeriod() {
	prices := []float64{10, 12, 14, 16, 18}
	suite.InDelta(14.0, EMAValue(prices, 5), 1e-9)
}

func (suite *IndicatorMathTestSuite) TestEMAShortHistoryFallsBackToMean() {
	prices := []float64{10, 20}
	suite.InDelta(15.0, EMAValue(prices, 5), 1e-9)
	suite.Equal(0.0, EMAValue(nil, 5))
}

func (suite *IndicatorMathTestSuite) TestEMAFollowsRecentPrices() {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}

	prices[59] = 120

	fast := EMAValue(prices, 12)
	slow := EMAValue(prices, 26)
	suite.Greater(fast, slow, "shorter EMA reacts faster to the jump")
}

func (suite *IndicatorMathTestSuite) TestMACDZeroOnShortHistory() {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
	}

	// 30 < slow+signal = 35
	result := MACDValue(prices, 12, 26, 9)
	suite.Zero(result.MACD)
	suite.Zero(result.Signal)
	suite.Zero(result.Histogram)
}

func (suite *IndicatorMathTestSuite) TestMACDHistogramConsistency() {
	prices := make([]float64, 80)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.5
	}

	result := MACDValue(prices, 12, 26, 9)
	suite.InDelta(result.MACD-result.Signal, result.Histogram, 1e-9)
	suite.Greater(result.MACD, 0.0, "steady uptrend keeps fast EMA above slow EMA")
}

func (suite *IndicatorMathTestSuite) TestBollingerOrderingInvariant() {
	rng := rand.New(rand.NewSource(7))
	prices := make([]float64, 100)
	prices[0] = 50

	for i := 1; i < len(prices); i++ {
		prices[i] = math.Abs(prices[i-1] + (rng.Float64()-0.5)*3)
	}

	bands := BollingerValue(prices, 20, 2)
	suite.GreaterOrEqual(bands.Upper, bands.Middle)
	suite.GreaterOrEqual(bands.Middle, bands.Lower)
}

func (suite *IndicatorMathTestSuite) TestBollingerFlatBandOnShortHistory() {
	prices := []float64{10, 11, 12}
	bands := BollingerValue(prices, 20, 2)
	suite.Equal(bands.Upper, bands.Middle)
	suite.Equal(bands.Middle, bands.Lower)
	suite.InDelta(11.0, bands.Middle, 1e-9)
}

func (suite *IndicatorMathTestSuite) TestVolumeRatioLabels() {
	history := []float64{100, 100, 100, 100}

	high := VolumeRatio(200, history, 1.5)
	suite.InDelta(2.0, high.Ratio, 1e-9)
	suite.EqualValues("high", high.Trend)

	low := VolumeRatio(50, history, 1.5)
	suite.EqualValues("low", low.Trend)

	normal := VolumeRatio(110, history, 1.5)
	suite.EqualValues("normal", normal.Trend)
}

func (suite *IndicatorMathTestSuite) TestVolumeRatioNeutralWithoutHistory() {
	analysis := VolumeRatio(500, nil, 1.5)
	suite.Equal(1.0, analysis.Ratio)
	suite.EqualValues("neutral", analysis.Trend)
}
