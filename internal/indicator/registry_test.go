package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// seriesFromCloses builds a series whose candles all carry the given volume.
func seriesFromCloses(symbol string, closes []float64, volume float64) *types.PriceSeries {
	series := types.NewPriceSeries(symbol, types.DefaultSeriesBound)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, c := range closes {
		series.Append(types.Candle{
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volume,
			Time:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	return series
}

type RegistryTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewIndicatorRegistry()
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewRSI()))

	ind, err := suite.registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Require().NoError(err)
	suite.Equal(types.IndicatorTypeRSI, ind.Name())
}

func (suite *RegistryTestSuite) TestDuplicateRegistrationRejected() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewRSI()))

	err := suite.registry.RegisterIndicator(NewRSI())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestGetUnknownIndicator() {
	_, err := suite.registry.GetIndicator(types.IndicatorTypeMACD)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestRemoveIndicator() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewEMA()))
	suite.Require().NoError(suite.registry.RemoveIndicator(types.IndicatorTypeEMA))

	_, err := suite.registry.GetIndicator(types.IndicatorTypeEMA)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestDefaultRegistryLists() {
	registry, err := NewDefaultRegistry()
	suite.Require().NoError(err)
	suite.Len(registry.ListIndicators(), 5)
}

func (suite *RegistryTestSuite) TestConfiguredRegistryAppliesThresholds() {
	registry, err := NewConfiguredRegistry(SnapshotConfig{
		RSIPeriod:        14,
		RSIOversold:      45,
		RSIOverbought:    55,
		EMAShort:         10,
		EMALong:          30,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		BollingerLen:     20,
		BollingerK:       2,
		VolumeMultiplier: 2.0,
	})
	suite.Require().NoError(err)
	suite.Len(registry.ListIndicators(), 5)

	// Alternating +0.8/-1.0 closes keep RSI near 44, oversold only under
	// the widened threshold.
	closes := make([]float64, 60)
	closes[0] = 100

	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 0.8
		} else {
			closes[i] = closes[i-1] - 1.0
		}
	}

	series := seriesFromCloses("BTCUSDT", closes, 1000)
	snapshot := types.MarketSnapshot{Symbol: "BTCUSDT", Price: series.LastClose(), Time: time.Now().UTC()}

	rsi, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Require().NoError(err)

	signal, err := rsi.GetSignal(snapshot, IndicatorContext{Series: series})
	suite.Require().NoError(err)
	suite.Equal(types.ActionBuy, signal.Action)

	defaultSignal, err := NewRSI().GetSignal(snapshot, IndicatorContext{Series: series})
	suite.Require().NoError(err)
	suite.Equal(types.ActionWait, defaultSignal.Action)
}

func (suite *RegistryTestSuite) TestConfiguredRegistryRejectsBadPeriods() {
	_, err := NewConfiguredRegistry(SnapshotConfig{
		RSIPeriod:        14,
		RSIOversold:      30,
		RSIOverbought:    70,
		EMAShort:         50,
		EMALong:          20,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		BollingerLen:     20,
		BollingerK:       2,
		VolumeMultiplier: 1.5,
	})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

type IndicatorSignalTestSuite struct {
	suite.Suite
}

func TestIndicatorSignalSuite(t *testing.T) {
	suite.Run(t, new(IndicatorSignalTestSuite))
}

func (suite *IndicatorSignalTestSuite) TestRSIOversoldVotesBuy() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)*1.5
	}

	series := seriesFromCloses("BTCUSDT", closes, 1000)
	snapshot := types.MarketSnapshot{Symbol: "BTCUSDT", Price: series.LastClose(), Time: time.Now().UTC()}

	signal, err := NewRSI().GetSignal(snapshot, IndicatorContext{Series: series})
	suite.Require().NoError(err)
	suite.Equal(types.ActionBuy, signal.Action)
}

func (suite *IndicatorSignalTestSuite) TestRSIConfigValidation() {
	rsi := NewRSI()
	suite.Error(rsi.Config())
	suite.Error(rsi.Config("fourteen"))
	suite.Error(rsi.Config(-3))
	suite.NoError(rsi.Config(21, 25.0, 75.0))
}

func (suite *IndicatorSignalTestSuite) TestMACDUptrendVotesBuy() {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	series := seriesFromCloses("ETHUSDT", closes, 1000)
	snapshot := types.MarketSnapshot{Symbol: "ETHUSDT", Price: series.LastClose(), Time: time.Now().UTC()}

	signal, err := NewMACD().GetSignal(snapshot, IndicatorContext{Series: series})
	suite.Require().NoError(err)
	suite.Equal(types.ActionBuy, signal.Action)
}

func (suite *IndicatorSignalTestSuite) TestBollingerCollapsedBandStaysQuiet() {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}

	series := seriesFromCloses("SOLUSDT", closes, 1000)
	snapshot := types.MarketSnapshot{Symbol: "SOLUSDT", Price: 100, Time: time.Now().UTC()}

	signal, err := NewBollingerBands().GetSignal(snapshot, IndicatorContext{Series: series})
	suite.Require().NoError(err)
	suite.Equal(types.ActionWait, signal.Action, "flat series collapses the band into a point")
}

func (suite *IndicatorSignalTestSuite) TestVolumeNeverVotes() {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}

	series := seriesFromCloses("BTCUSDT", closes, 1000)
	snapshot := types.MarketSnapshot{Symbol: "BTCUSDT", Price: 100, Volume: 5000, Time: time.Now().UTC()}

	signal, err := NewVolume().GetSignal(snapshot, IndicatorContext{Series: series})
	suite.Require().NoError(err)
	suite.Equal(types.ActionWait, signal.Action)
}

func (suite *IndicatorSignalTestSuite) TestSnapshotNeutralDefaults() {
	series := seriesFromCloses("BTCUSDT", []float64{100, 101}, 500)

	snap := Snapshot(series, 500, SnapshotConfig{
		RSIPeriod:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		BollingerLen:     20,
		BollingerK:       2,
		VolumeMultiplier: 1.5,
	})

	suite.Equal(NeutralRSI, snap.RSI)
	suite.Zero(snap.MACD.Histogram)
	suite.Equal(snap.Bollinger.Upper, snap.Bollinger.Lower)
}
