package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aegis-lab/aegis-trading/internal/anomaly"
	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/risk"
	"github.com/aegis-lab/aegis-trading/internal/scheduler"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

type stubSignalReader struct {
	signals []types.ConsensusSignal
	gotN    int
	err     error
}

func (s *stubSignalReader) RecentSignals(n int) ([]types.ConsensusSignal, error) {
	s.gotN = n
	if s.err != nil {
		return nil, s.err
	}

	if n > len(s.signals) {
		n = len(s.signals)
	}

	return s.signals[:n], nil
}

type ServerTestSuite struct {
	suite.Suite
	guard  *risk.Guard
	reader *stubSignalReader
	server *Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	cfg := config.DefaultConfig()
	suite.guard = risk.NewGuard(cfg.Risk, nil)
	suite.reader = &stubSignalReader{}
	suite.server = NewServer(
		cfg.Server,
		nil,
		suite.guard,
		anomaly.NewDetector(cfg.Pump, nil),
		scheduler.NewScheduler(),
		suite.reader,
	)
}

func (suite *ServerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	suite.server.Router().ServeHTTP(rec, req)

	return rec
}

func (suite *ServerTestSuite) TestHealth() {
	rec := suite.get("/health")
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (suite *ServerTestSuite) TestSignalsDefaultCount() {
	suite.reader.signals = []types.ConsensusSignal{
		{Signal: types.Signal{ID: "a", Symbol: "BTCUSDT", Action: types.ActionWait}},
	}

	rec := suite.get("/api/signals")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal(defaultSignalCount, suite.reader.gotN)

	var got []types.ConsensusSignal
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Len(got, 1)
	suite.Equal("BTCUSDT", got[0].Symbol)
}

func (suite *ServerTestSuite) TestSignalsCountParam() {
	rec := suite.get("/api/signals?count=3")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal(3, suite.reader.gotN)
}

func (suite *ServerTestSuite) TestSignalsRejectsBadCount() {
	suite.Equal(http.StatusBadRequest, suite.get("/api/signals?count=zero").Code)
	suite.Equal(http.StatusBadRequest, suite.get("/api/signals?count=-1").Code)
}

func (suite *ServerTestSuite) TestSignalsReaderFailure() {
	suite.reader.err = errors.New(errors.ErrCodeHistoryReadFailed, "table missing")
	suite.Equal(http.StatusInternalServerError, suite.get("/api/signals").Code)
}

func (suite *ServerTestSuite) TestSignalsWithoutStoreIsEmptyList() {
	suite.server.signals = nil

	rec := suite.get("/api/signals")
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`[]`, rec.Body.String())
}

func (suite *ServerTestSuite) TestPositionsEmptyIsList() {
	rec := suite.get("/api/positions")
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`[]`, rec.Body.String())
}

func (suite *ServerTestSuite) TestStats() {
	rec := suite.get("/api/stats")
	suite.Equal(http.StatusOK, rec.Code)

	var got types.DailyStats
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Zero(got.TotalTrades)
	suite.Equal(2, got.RemainingTrades)
}

func (suite *ServerTestSuite) TestStatus() {
	rec := suite.get("/api/status")
	suite.Equal(http.StatusOK, rec.Code)

	var got statusResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.NotEmpty(got.Session)
	suite.Positive(got.RiskMultiplier)
	suite.True(got.CanTradeToday)
}

func (suite *ServerTestSuite) TestUnknownRouteIs404() {
	suite.Equal(http.StatusNotFound, suite.get("/api/nope").Code)
}
