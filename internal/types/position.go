package types

import "time"

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "open"
	PositionStatusClosed PositionStatus = "closed"
)

// CloseReason records why a position left the open state.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "stop_loss"
	CloseReasonTakeProfit CloseReason = "take_profit"
	CloseReasonExternal   CloseReason = "external"
)

// Position is a tracked trade. It is exclusively owned and mutated by the
// risk guard; stop-loss and take-profit are fixed at open time.
type Position struct {
	Symbol     string         `json:"symbol" validate:"required"`
	Action     Action         `json:"action" validate:"required,oneof=BUY SELL"`
	EntryPrice float64        `json:"entry_price" validate:"gt=0"`
	Quantity   float64        `json:"quantity" validate:"gt=0"`
	StopLoss   float64        `json:"stop_loss"`
	TakeProfit float64        `json:"take_profit"`
	Status     PositionStatus `json:"status"`
	EntryTime  time.Time      `json:"entry_ts"`
	// Confidence and Reasoning are copied from the validated signal that
	// opened the position.
	Confidence float64 `json:"signal_confidence"`
	Reasoning  string  `json:"signal_reasoning"`

	// Exit fields are zero until the position is closed.
	ExitPrice   float64     `json:"exit_price,omitempty"`
	ExitTime    time.Time   `json:"exit_ts,omitempty"`
	RealizedPnL float64     `json:"realized_pnl,omitempty"`
	PnLPct      float64     `json:"pnl_pct,omitempty"`
	CloseReason CloseReason `json:"close_reason,omitempty"`
}

// DailyStats summarizes one UTC day of risk guard activity.
type DailyStats struct {
	Date            string  `json:"date"`
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPct     float64 `json:"total_pnl_pct"`
	RemainingTrades int     `json:"remaining_trades"`
	OpenPositions   int     `json:"open_positions"`
}
