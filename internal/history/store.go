// Package history persists signals, closed trades, pump detections and
// anomalies in DuckDB. Writes are best-effort: the pipeline never depends on
// the store succeeding, so write failures are logged and swallowed.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// Store is the DuckDB-backed history store.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewStore opens (or creates) the database at path. An empty path opens an
// in-memory database.
func NewStore(path string, l *logger.Logger) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	if l == nil {
		l = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to open history database", err)
	}

	return &Store{
		db:     db,
		logger: l,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the tables.
func (s *Store) Initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			action TEXT,
			confidence DOUBLE,
			reasoning TEXT,
			source TEXT,
			entry_price DOUBLE,
			stop_loss DOUBLE,
			take_profit DOUBLE,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			action TEXT,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity DOUBLE,
			realized_pnl DOUBLE,
			pnl_pct DOUBLE,
			close_reason TEXT,
			entry_at TIMESTAMP,
			exit_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS candles (
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			candle_time TIMESTAMP,
			PRIMARY KEY (symbol, candle_time)
		)`,
		`CREATE TABLE IF NOT EXISTS pumps (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			class TEXT,
			score DOUBLE,
			price_change_15m DOUBLE,
			price_change_1h DOUBLE,
			volume_ratio DOUBLE,
			detected_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS anomalies (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			type TEXT,
			price_change DOUBLE,
			volume_ratio DOUBLE,
			price DOUBLE,
			confidence DOUBLE,
			detected_at TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to create history tables", err)
		}
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSignal persists one consensus signal. Failures are logged, never
// propagated.
func (s *Store) RecordSignal(signal types.ConsensusSignal) {
	id := signal.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := s.sq.Insert("signals").
		Columns("id", "symbol", "action", "confidence", "reasoning", "source", "entry_price", "stop_loss", "take_profit", "created_at").
		Values(id, signal.Symbol, string(signal.Action), signal.Confidence, signal.Reasoning, string(signal.Source),
			signal.EntryPrice.TakeOr(0), signal.StopLoss.TakeOr(0), signal.TakeProfit.TakeOr(0), signal.Time)

	s.exec("signal", query)
}

// RecordTrade persists one closed position.
func (s *Store) RecordTrade(position types.Position) {
	query := s.sq.Insert("trades").
		Columns("id", "symbol", "action", "entry_price", "exit_price", "quantity", "realized_pnl", "pnl_pct", "close_reason", "entry_at", "exit_at").
		Values(uuid.New().String(), position.Symbol, string(position.Action), position.EntryPrice, position.ExitPrice,
			position.Quantity, position.RealizedPnL, position.PnLPct, string(position.CloseReason), position.EntryTime, position.ExitTime)

	s.exec("trade", query)
}

// RecordPump persists one pump detection.
func (s *Store) RecordPump(event types.PumpEvent) {
	query := s.sq.Insert("pumps").
		Columns("id", "symbol", "class", "score", "price_change_15m", "price_change_1h", "volume_ratio", "detected_at").
		Values(uuid.New().String(), event.Symbol, string(event.Class), event.Score,
			event.PriceChange15m, event.PriceChange1h, event.VolumeRatio, event.DetectedAt)

	s.exec("pump", query)
}

// RecordAnomaly persists one simple anomaly detection.
func (s *Store) RecordAnomaly(anomaly types.Anomaly) {
	query := s.sq.Insert("anomalies").
		Columns("id", "symbol", "type", "price_change", "volume_ratio", "price", "confidence", "detected_at").
		Values(uuid.New().String(), anomaly.Symbol, string(anomaly.Type), anomaly.PriceChange,
			anomaly.VolumeRatio, anomaly.Price, anomaly.Confidence, anomaly.Time)

	s.exec("anomaly", query)
}

// RecordCandles bulk-inserts one symbol's candle history. Unlike the event
// writers this propagates failures so a backfill can abort early.
func (s *Store) RecordCandles(symbol string, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	query := s.sq.Insert("candles").
		Columns("symbol", "open", "high", "low", "close", "volume", "candle_time")

	for _, candle := range candles {
		query = query.Values(symbol, candle.Open, candle.High, candle.Low, candle.Close, candle.Volume, candle.Time)
	}

	if _, err := query.RunWith(s.db).Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeHistoryWriteFailed, err, "failed to record candles for %s", symbol)
	}

	return nil
}

// CandleCount returns the number of stored candles for a symbol.
func (s *Store) CandleCount(symbol string) (int, error) {
	var count int

	err := s.sq.Select("COUNT(*)").From("candles").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(s.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to count candles", err)
	}

	return count, nil
}

// RecentSignals returns the n most recent signals, newest first.
func (s *Store) RecentSignals(n int) ([]types.ConsensusSignal, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := s.sq.Select("id", "symbol", "action", "confidence", "reasoning", "source", "created_at").
		From("signals").
		OrderBy("created_at DESC").
		Limit(uint64(n)).
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to query signals", err)
	}
	defer rows.Close()

	var signals []types.ConsensusSignal

	for rows.Next() {
		var (
			signal    types.ConsensusSignal
			action    string
			source    string
			createdAt time.Time
		)

		if err := rows.Scan(&signal.ID, &signal.Symbol, &action, &signal.Confidence, &signal.Reasoning, &source, &createdAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to scan signal row", err)
		}

		signal.Action = types.Action(action)
		signal.Source = types.SignalSource(source)
		signal.Time = createdAt

		signals = append(signals, signal)
	}

	return signals, rows.Err()
}

// TradeCount returns the number of recorded trades.
func (s *Store) TradeCount() (int, error) {
	var count int

	err := s.sq.Select("COUNT(*)").From("trades").RunWith(s.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to count trades", err)
	}

	return count, nil
}

func (s *Store) exec(kind string, query squirrel.InsertBuilder) {
	if _, err := query.RunWith(s.db).Exec(); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to record %s", kind), zap.Error(err))
	}
}
