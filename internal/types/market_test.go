package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type PriceSeriesTestSuite struct {
	suite.Suite
}

func TestPriceSeriesSuite(t *testing.T) {
	suite.Run(t, new(PriceSeriesTestSuite))
}

func candleAt(i int, close float64) Candle {
	return Candle{
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: float64(100 + i),
		Time:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
	}
}

func (suite *PriceSeriesTestSuite) TestAppendEvictsOldest() {
	series := NewPriceSeries("BTCUSDT", 3)

	for i := 0; i < 5; i++ {
		series.Append(candleAt(i, float64(100+i)))
	}

	suite.Equal(3, series.Len())
	suite.Equal([]float64{102, 103, 104}, series.Closes())
	suite.Equal(104.0, series.LastClose())
}

func (suite *PriceSeriesTestSuite) TestZeroBoundFallsBackToDefault() {
	series := NewPriceSeries("ETHUSDT", 0)

	candles := make([]Candle, DefaultSeriesBound+10)
	for i := range candles {
		candles[i] = candleAt(i, float64(i))
	}

	series.Append(candles...)
	suite.Equal(DefaultSeriesBound, series.Len())
}

func (suite *PriceSeriesTestSuite) TestEmptySeriesDefaults() {
	series := NewPriceSeries("BTCUSDT", 10)

	suite.Zero(series.Len())
	suite.Zero(series.LastClose())
	suite.Empty(series.Closes())
	suite.Empty(series.Volumes())
}

func (suite *PriceSeriesTestSuite) TestOpinionNormalize() {
	o := ModelOpinion{Symbol: "BTCUSDT", Action: "HOLD", Confidence: 1.7}
	n := o.Normalize()
	suite.Equal(ActionWait, n.Action)
	suite.Equal(1.0, n.Confidence)

	o = ModelOpinion{Symbol: "BTCUSDT", Action: ActionBuy, Confidence: -0.2}
	n = o.Normalize()
	suite.Equal(ActionBuy, n.Action)
	suite.Zero(n.Confidence)
}
