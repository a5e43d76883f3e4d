package scheduler

import (
	"sync"
	"time"
)

// Clock supplies the current time; injected for tests.
type Clock func() time.Time

// Scheduler tracks the analysis cadence across cycles.
type Scheduler struct {
	clock Clock

	// DailyHour is the UTC hour at which the daily macro analysis runs.
	DailyHour int

	mu         sync.Mutex
	lastDaily  time.Time
	lastHourly time.Time
}

// NewScheduler creates a scheduler on the real clock.
func NewScheduler() *Scheduler {
	return NewSchedulerWithClock(func() time.Time { return time.Now().UTC() })
}

// NewSchedulerWithClock creates a scheduler on an injected clock.
func NewSchedulerWithClock(clock Clock) *Scheduler {
	return &Scheduler{
		clock:     clock,
		DailyHour: 9,
	}
}

// CurrentSession classifies the present moment.
func (s *Scheduler) CurrentSession() Session {
	return SessionAt(s.clock())
}

// RiskAdjustment returns the confidence multiplier for the present session.
func (s *Scheduler) RiskAdjustment() float64 {
	return RiskMultiplier(s.CurrentSession())
}

// ShouldRunDaily reports whether the daily macro analysis is due and, if so,
// marks it as run. Due means the configured hour has passed and no run has
// happened on the current UTC day.
func (s *Scheduler) ShouldRunDaily() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	if now.Hour() < s.DailyHour {
		return false
	}

	if sameDay(now, s.lastDaily) {
		return false
	}

	s.lastDaily = now

	return true
}

// ShouldRunHourly reports whether the hourly analysis is due and, if so,
// marks it as run.
func (s *Scheduler) ShouldRunHourly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	if !s.lastHourly.IsZero() && now.Sub(s.lastHourly) < time.Hour {
		return false
	}

	s.lastHourly = now

	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()

	return ay == by && am == bm && ad == bd
}
