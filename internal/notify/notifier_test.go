package notify

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
)

type NotifierTestSuite struct {
	suite.Suite
	notifier Notifier
}

func TestNotifierSuite(t *testing.T) {
	suite.Run(t, new(NotifierTestSuite))
}

func (suite *NotifierTestSuite) SetupTest() {
	suite.notifier = NewLogNotifier(logger.NewNopLogger())
}

func (suite *NotifierTestSuite) TestLogNotifierHandlesEveryEvent() {
	suite.NotPanics(func() {
		suite.notifier.NotifySignal(types.ConsensusSignal{
			Signal: types.Signal{Symbol: "BTCUSDT", Action: types.ActionBuy, Confidence: 0.7},
		})
		suite.notifier.NotifyPositionClosed(types.Position{Symbol: "BTCUSDT", Action: types.ActionBuy})
		suite.notifier.NotifyPump(types.PumpEvent{Symbol: "BTCUSDT", Class: types.PumpClassStrong})
		suite.notifier.NotifyAnomaly(types.Anomaly{Symbol: "BTCUSDT", Type: types.AnomalyTypePump})
	})
}

func (suite *NotifierTestSuite) TestLogNotifierWithNilLoggerDefaults() {
	suite.NotPanics(func() {
		NewLogNotifier(nil).NotifySignal(types.ConsensusSignal{})
	})
}
