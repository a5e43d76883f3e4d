package consensus

import "github.com/aegis-lab/aegis-trading/internal/scheduler"

// AdjustForSession scales a consensus confidence by the current session's
// risk multiplier. It is a pure post-consensus modifier and never changes
// the action, only the conviction, clamped back into [0,1].
func AdjustForSession(confidence float64, session scheduler.Session) float64 {
	return clamp01(confidence * scheduler.RiskMultiplier(session))
}
