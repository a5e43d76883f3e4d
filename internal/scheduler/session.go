// Package scheduler classifies trading sessions from the UTC clock and
// gates the daily and hourly analysis cadence.
package scheduler

import "time"

// Session is a named trading window on the UTC clock.
type Session string

const (
	SessionAsia    Session = "asia"
	SessionEurope  Session = "europe"
	SessionOverlap Session = "overlap"
	SessionUS      Session = "us"
	SessionWeekend Session = "weekend"
	SessionUnknown Session = "unknown"
)

// sessionRisk maps each session to its confidence multiplier. The
// Europe/US overlap carries the most conviction, weekends the least.
var sessionRisk = map[Session]float64{
	SessionAsia:    1.0,
	SessionEurope:  1.2,
	SessionOverlap: 1.5,
	SessionUS:      1.3,
	SessionWeekend: 0.5,
	SessionUnknown: 0.8,
}

// SessionAt classifies a moment into its trading session.
func SessionAt(t time.Time) Session {
	utc := t.UTC()

	switch utc.Weekday() {
	case time.Saturday, time.Sunday:
		return SessionWeekend
	}

	switch hour := utc.Hour(); {
	case hour < 8:
		return SessionAsia
	case hour < 13:
		return SessionEurope
	case hour < 16:
		return SessionOverlap
	case hour < 22:
		return SessionUS
	default:
		return SessionUnknown
	}
}

// RiskMultiplier returns the confidence multiplier for a session.
func RiskMultiplier(s Session) float64 {
	if m, ok := sessionRisk[s]; ok {
		return m
	}

	return sessionRisk[SessionUnknown]
}
