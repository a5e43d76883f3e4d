// Package risk implements the gate between consensus signals and actual
// positions. The guard exclusively owns all open-position and daily-trade
// state; callers never mutate positions directly.
package risk

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// positionKey identifies one open position. Opposite-direction entries on
// the same symbol are distinct positions (an implicit flip).
type positionKey struct {
	symbol string
	action types.Action
}

// Guard enforces trade-count, loss, sizing and confidence limits.
type Guard struct {
	cfg    config.RiskConfig
	logger *logger.Logger
	clock  func() time.Time

	mu        sync.Mutex
	positions map[positionKey]*types.Position
	trades    []types.Position
	resetDay  time.Time
}

// NewGuard creates a guard with no open positions.
func NewGuard(cfg config.RiskConfig, l *logger.Logger) *Guard {
	if l == nil {
		l = logger.NewNopLogger()
	}

	g := &Guard{
		cfg:       cfg,
		logger:    l,
		clock:     func() time.Time { return time.Now().UTC() },
		positions: make(map[positionKey]*types.Position),
	}
	g.resetDay = dayOf(g.clock())

	return g
}

// CanTradeToday reports whether new entries are still allowed: today's trade
// count must stay under the daily cap and the cumulative daily loss above
// the configured floor.
func (g *Guard) CanTradeToday() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDayLocked()

	return g.canTradeLocked()
}

func (g *Guard) canTradeLocked() bool {
	today := dayOf(g.clock())

	var (
		count int
		pnl   float64
	)

	for _, trade := range g.trades {
		if dayOf(trade.ExitTime).Equal(today) {
			count++
			pnl += trade.RealizedPnL
		}
	}

	if count >= g.cfg.MaxDailyTrades {
		return false
	}

	return pnl/g.cfg.PortfolioValue > g.cfg.MaxDailyLoss
}

// ValidateSignal reports whether a consensus signal may open a position. It
// never returns an error; malformed input is simply rejected. WAIT always
// passes since it opens nothing.
func (g *Guard) ValidateSignal(signal types.ConsensusSignal) bool {
	if signal.Action == types.ActionWait {
		return true
	}

	if signal.Action != types.ActionBuy && signal.Action != types.ActionSell {
		return false
	}

	if signal.Symbol == "" || signal.Confidence < g.cfg.MinConfidence {
		return false
	}

	// Confidence is the only estimate of edge available here; scale it to
	// an expected risk/reward and hold it to the configured floor.
	if signal.Confidence*3 < g.cfg.MinRiskReward {
		return false
	}

	entry := signal.EntryPrice.TakeOr(0)
	if entry <= 0 {
		return false
	}

	positionValue := g.cfg.PortfolioValue * g.cfg.PositionSize
	if positionValue > g.cfg.PortfolioValue*g.cfg.MaxPositionPct {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDayLocked()

	if !g.canTradeLocked() {
		return false
	}

	// Same-direction pyramiding is rejected; the opposite direction is a
	// permitted implicit flip.
	if _, open := g.positions[positionKey{signal.Symbol, signal.Action}]; open {
		return false
	}

	return true
}

// OpenPosition transitions a validated signal into an open position.
func (g *Guard) OpenPosition(signal types.ConsensusSignal) (types.Position, error) {
	if !g.ValidateSignal(signal) || signal.Action == types.ActionWait {
		return types.Position{}, errors.New(errors.ErrCodeInvalidSignal, "signal rejected by risk validation")
	}

	entry := signal.EntryPrice.TakeOr(0)
	quantity := g.cfg.PortfolioValue * g.cfg.PositionSize / entry

	position := types.Position{
		Symbol:     signal.Symbol,
		Action:     signal.Action,
		EntryPrice: entry,
		Quantity:   quantity,
		StopLoss:   signal.StopLoss.TakeOr(defaultStop(entry, signal.Action, g.cfg.StopLossPct)),
		TakeProfit: signal.TakeProfit.TakeOr(defaultTake(entry, signal.Action, g.cfg.TakeProfitPct)),
		Status:     types.PositionStatusOpen,
		EntryTime:  g.clock(),
		Confidence: signal.Confidence,
		Reasoning:  signal.Reasoning,
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := positionKey{position.Symbol, position.Action}
	if _, open := g.positions[key]; open {
		return types.Position{}, errors.Newf(errors.ErrCodePositionAlreadyOpen, "position already open for %s %s", position.Symbol, position.Action)
	}

	g.positions[key] = &position

	g.logger.Info(fmt.Sprintf("opened %s %s qty %.6f at %.2f (SL %.2f / TP %.2f)",
		position.Action, position.Symbol, position.Quantity, position.EntryPrice, position.StopLoss, position.TakeProfit))

	return position, nil
}

// CheckStopLossTakeProfit sweeps every open position against current prices
// and closes those that crossed their stop or target. Closed positions are
// returned in deterministic symbol order.
func (g *Guard) CheckStopLossTakeProfit(prices map[string]float64) []types.Position {
	g.mu.Lock()

	type hit struct {
		key    positionKey
		price  float64
		reason types.CloseReason
	}

	var hits []hit

	for key, position := range g.positions {
		price, ok := prices[key.symbol]
		if !ok || price <= 0 {
			continue
		}

		switch position.Action {
		case types.ActionBuy:
			if price <= position.StopLoss {
				hits = append(hits, hit{key, price, types.CloseReasonStopLoss})
			} else if price >= position.TakeProfit {
				hits = append(hits, hit{key, price, types.CloseReasonTakeProfit})
			}
		case types.ActionSell:
			if price >= position.StopLoss {
				hits = append(hits, hit{key, price, types.CloseReasonStopLoss})
			} else if price <= position.TakeProfit {
				hits = append(hits, hit{key, price, types.CloseReasonTakeProfit})
			}
		}
	}
	g.mu.Unlock()

	var closed []types.Position

	for _, h := range hits {
		position, err := g.ClosePosition(h.key.symbol, h.key.action, h.price, h.reason)
		if err != nil {
			continue
		}

		closed = append(closed, position)
	}

	sort.Slice(closed, func(i, j int) bool { return closed[i].Symbol < closed[j].Symbol })

	return closed
}

// ClosePosition realizes the P&L of one open position and appends it to the
// daily trade history.
func (g *Guard) ClosePosition(symbol string, action types.Action, exitPrice float64, reason types.CloseReason) (types.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := positionKey{symbol, action}

	position, ok := g.positions[key]
	if !ok {
		return types.Position{}, errors.Newf(errors.ErrCodePositionNotFound, "no open %s position for %s", action, symbol)
	}

	entry := decimal.NewFromFloat(position.EntryPrice)
	exit := decimal.NewFromFloat(exitPrice)
	qty := decimal.NewFromFloat(position.Quantity)

	diff := exit.Sub(entry)
	if position.Action == types.ActionSell {
		diff = entry.Sub(exit)
	}

	pnl := diff.Mul(qty)

	position.Status = types.PositionStatusClosed
	position.ExitPrice = exitPrice
	position.ExitTime = g.clock()
	position.RealizedPnL, _ = pnl.Float64()
	position.CloseReason = reason

	if !entry.IsZero() {
		pct, _ := diff.Div(entry).Float64()
		position.PnLPct = pct
	}

	delete(g.positions, key)
	g.trades = append(g.trades, *position)

	g.logger.Info(fmt.Sprintf("closed %s %s at %.2f (%s, pnl %.2f)",
		position.Action, position.Symbol, exitPrice, reason, position.RealizedPnL))

	return *position, nil
}

// OpenPositions returns a snapshot of the open positions.
func (g *Guard) OpenPositions() []types.Position {
	g.mu.Lock()
	defer g.mu.Unlock()

	positions := make([]types.Position, 0, len(g.positions))
	for _, p := range g.positions {
		positions = append(positions, *p)
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Symbol != positions[j].Symbol {
			return positions[i].Symbol < positions[j].Symbol
		}

		return positions[i].Action < positions[j].Action
	})

	return positions
}

// DailyStats summarizes today's closed trades and current exposure.
func (g *Guard) DailyStats() types.DailyStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDayLocked()

	today := dayOf(g.clock())
	stats := types.DailyStats{
		Date:          today.Format("2006-01-02"),
		OpenPositions: len(g.positions),
	}

	var pnl float64

	for _, trade := range g.trades {
		if !dayOf(trade.ExitTime).Equal(today) {
			continue
		}

		stats.TotalTrades++
		pnl += trade.RealizedPnL

		if trade.RealizedPnL > 0 {
			stats.WinningTrades++
		} else {
			stats.LosingTrades++
		}
	}

	stats.TotalPnL = pnl
	stats.TotalPnLPct = pnl / g.cfg.PortfolioValue
	stats.RemainingTrades = g.cfg.MaxDailyTrades - stats.TotalTrades

	if stats.RemainingTrades < 0 {
		stats.RemainingTrades = 0
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades)
	}

	return stats
}

// rollDayLocked drops trades older than yesterday once the UTC day changes.
// Yesterday's trades are retained for trend continuity.
func (g *Guard) rollDayLocked() {
	today := dayOf(g.clock())
	if today.Equal(g.resetDay) {
		return
	}

	g.resetDay = today
	yesterday := today.AddDate(0, 0, -1)

	kept := g.trades[:0]

	for _, trade := range g.trades {
		if !dayOf(trade.ExitTime).Before(yesterday) {
			kept = append(kept, trade)
		}
	}

	g.trades = kept
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func defaultStop(entry float64, action types.Action, pct float64) float64 {
	if action == types.ActionSell {
		return entry * (1 + pct)
	}

	return entry * (1 - pct)
}

func defaultTake(entry float64, action types.Action, pct float64) float64 {
	if action == types.ActionSell {
		return entry * (1 - pct)
	}

	return entry * (1 + pct)
}
