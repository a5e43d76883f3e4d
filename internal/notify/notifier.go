// Package notify is the notification collaborator boundary. Delivery is
// best-effort; the pipeline never depends on a notification succeeding.
package notify

import (
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"go.uber.org/zap"
)

// Notifier receives validated decisions and position lifecycle events.
type Notifier interface {
	NotifySignal(signal types.ConsensusSignal)
	NotifyPositionClosed(position types.Position)
	NotifyPump(event types.PumpEvent)
	NotifyAnomaly(anomaly types.Anomaly)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink and the fallback when no external channel is configured.
type LogNotifier struct {
	logger *logger.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates the notifier.
func NewLogNotifier(l *logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &LogNotifier{logger: l}
}

// NotifySignal implements Notifier.
func (n *LogNotifier) NotifySignal(signal types.ConsensusSignal) {
	n.logger.Info("signal",
		zap.String("symbol", signal.Symbol),
		zap.String("action", string(signal.Action)),
		zap.Float64("confidence", signal.Confidence),
		zap.Float64("entry", signal.EntryPrice.TakeOr(0)),
		zap.String("reasoning", signal.Reasoning),
	)
}

// NotifyPositionClosed implements Notifier.
func (n *LogNotifier) NotifyPositionClosed(position types.Position) {
	n.logger.Info("position closed",
		zap.String("symbol", position.Symbol),
		zap.String("action", string(position.Action)),
		zap.String("reason", string(position.CloseReason)),
		zap.Float64("pnl", position.RealizedPnL),
		zap.Float64("pnl_pct", position.PnLPct),
	)
}

// NotifyAnomaly implements Notifier.
func (n *LogNotifier) NotifyAnomaly(anomaly types.Anomaly) {
	n.logger.Warn("anomaly detected",
		zap.String("symbol", anomaly.Symbol),
		zap.String("type", string(anomaly.Type)),
		zap.Float64("price_change", anomaly.PriceChange),
		zap.Float64("volume_ratio", anomaly.VolumeRatio),
		zap.Float64("confidence", anomaly.Confidence),
	)
}

// NotifyPump implements Notifier.
func (n *LogNotifier) NotifyPump(event types.PumpEvent) {
	n.logger.Warn("pump detected",
		zap.String("symbol", event.Symbol),
		zap.String("class", string(event.Class)),
		zap.Float64("score", event.Score),
		zap.Float64("change_15m", event.PriceChange15m),
		zap.Float64("volume_ratio", event.VolumeRatio),
		zap.Strings("risk_factors", event.RiskFactors),
	)
}
