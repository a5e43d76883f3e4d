package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Action is the trading decision carried by a signal.
type Action string

const (
	// ActionBuy is a signal to enter or add long exposure.
	ActionBuy Action = "BUY"
	// ActionSell is a signal to enter or add short exposure.
	ActionSell Action = "SELL"
	// ActionWait is an informational signal that opens nothing.
	ActionWait Action = "WAIT"
)

// SignalSource identifies which component produced a signal.
type SignalSource string

const (
	SignalSourceRule      SignalSource = "rule"
	SignalSourceAnomaly   SignalSource = "anomaly"
	SignalSourceConsensus SignalSource = "consensus"
	SignalSourceFallback  SignalSource = "fallback"
)

// ModelSource returns the source tag for an AI model opinion, e.g. "ai:gemini".
func ModelSource(model string) SignalSource {
	return SignalSource("ai:" + model)
}

// Signal is a single trading opinion for one symbol.
type Signal struct {
	// ID uniquely identifies the signal for history storage.
	ID     string `json:"id" validate:"required"`
	Symbol string `json:"symbol" validate:"required"`
	Action Action `json:"action" validate:"required,oneof=BUY SELL WAIT"`
	// Confidence is the normalized [0,1] conviction of the signal.
	Confidence float64      `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string       `json:"reasoning"`
	Source     SignalSource `json:"source" validate:"required"`
	Time       time.Time    `json:"timestamp"`
	// EntryPrice, StopLoss and TakeProfit are only set on actionable
	// BUY/SELL signals emitted by the consensus aggregator.
	EntryPrice optional.Option[float64] `json:"entry_price,omitempty"`
	StopLoss   optional.Option[float64] `json:"stop_loss,omitempty"`
	TakeProfit optional.Option[float64] `json:"take_profit,omitempty"`
	// RawValue carries the raw indicator values behind the signal.
	RawValue any `json:"raw_value,omitempty"`
}

// Vote is one source's contribution to a consensus decision.
type Vote struct {
	Source     SignalSource `json:"source"`
	Action     Action       `json:"action"`
	Confidence float64      `json:"confidence"`
}

// ConsensusSignal is the aggregated decision for one symbol, with the
// per-source vote breakdown retained for auditing.
type ConsensusSignal struct {
	Signal

	Votes []Vote `json:"votes"`
	// ConsensusStrength is the fraction of total votes won by the
	// winning action.
	ConsensusStrength float64 `json:"consensus_strength"`
	// Agreement is true when every contributing source voted the same way.
	Agreement bool `json:"agreement"`
	// MarketSentiment and RiskLevel are consensus views over the model
	// analyses that contributed opinions, when any were available.
	MarketSentiment string `json:"market_sentiment,omitempty"`
	RiskLevel       string `json:"risk_level,omitempty"`
}
