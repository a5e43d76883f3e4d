// Package server exposes the pipeline's state over a small read-only HTTP
// API. It never mutates the engine; every endpoint is a snapshot of what the
// pipeline already decided.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aegis-lab/aegis-trading/internal/anomaly"
	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/risk"
	"github.com/aegis-lab/aegis-trading/internal/scheduler"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// defaultSignalCount is returned by /api/signals when no count is given.
const defaultSignalCount = 10

// SignalReader serves the recorded decision history.
type SignalReader interface {
	RecentSignals(n int) ([]types.ConsensusSignal, error)
}

// Server is the status HTTP API over the running pipeline.
type Server struct {
	cfg      config.ServerConfig
	logger   *logger.Logger
	guard    *risk.Guard
	detector *anomaly.Detector
	sched    *scheduler.Scheduler
	signals  SignalReader

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a status server over the given collaborators. signals
// may be nil when no history store is configured.
func NewServer(
	cfg config.ServerConfig,
	l *logger.Logger,
	guard *risk.Guard,
	detector *anomaly.Detector,
	sched *scheduler.Scheduler,
	signals SignalReader,
) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &Server{
		cfg:      cfg,
		logger:   l,
		guard:    guard,
		detector: detector,
		sched:    sched,
		signals:  signals,
	}
}

// Router builds the HTTP routes. Exposed for tests.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/signals", s.handleSignals).Methods("GET")
	router.HandleFunc("/api/positions", s.handlePositions).Methods("GET")
	router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	router.HandleFunc("/api/status", s.handleStatus).Methods("GET")

	return router
}

// Start begins serving on the configured address. An empty address binds a
// random available port.
func (s *Server) Start() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":0"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeServerStart, "failed to create listener", err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("status server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("status server listening", zap.String("addr", listener.Addr().String()))

	return nil
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if s.signals == nil {
		writeJSON(w, []types.ConsensusSignal{})
		return
	}

	count := defaultSignalCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "count must be a positive integer", http.StatusBadRequest)
			return
		}

		count = parsed
	}

	signals, err := s.signals.RecentSignals(count)
	if err != nil {
		s.logger.Error("failed to read signal history", zap.Error(err))
		http.Error(w, "signal history unavailable", http.StatusInternalServerError)

		return
	}

	if signals == nil {
		signals = []types.ConsensusSignal{}
	}

	writeJSON(w, signals)
}

func (s *Server) handlePositions(w http.ResponseWriter, _ *http.Request) {
	positions := s.guard.OpenPositions()
	if positions == nil {
		positions = []types.Position{}
	}

	writeJSON(w, positions)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.guard.DailyStats())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, statusResponse{
		Session:        string(s.sched.CurrentSession()),
		RiskMultiplier: s.sched.RiskAdjustment(),
		CanTradeToday:  s.guard.CanTradeToday(),
		Pumps:          s.detector.Stats(),
		Time:           time.Now().UTC(),
	})
}

type statusResponse struct {
	Session        string          `json:"session"`
	RiskMultiplier float64         `json:"risk_multiplier"`
	CanTradeToday  bool            `json:"can_trade_today"`
	Pumps          types.PumpStats `json:"pumps"`
	Time           time.Time       `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
