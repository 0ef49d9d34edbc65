// Package timekeeper measures consecutive laps, such as the stages of a
// user operation.
package timekeeper

import (
	"time"
)

type Stopwatch struct {
	checkpoint time.Time
	now        func() time.Time
}

func NewStopwatch() *Stopwatch {
	return NewStopwatchWithClock(time.Now)
}

// NewStopwatchWithClock is used in tests to control time.
func NewStopwatchWithClock(now func() time.Time) *Stopwatch {
	return &Stopwatch{
		// In Go, Now keeps track both of wallclock and monotonic clock
		// therefore we can use it to check delta as well
		checkpoint: now(),
		now:        now,
	}
}

// Started returns when the current lap began.
func (s *Stopwatch) Started() time.Time {
	return s.checkpoint
}

// Lap returns the time since the previous lap and starts a new one at the
// returned instant.
func (s *Stopwatch) Lap() (time.Duration, time.Time) {
	now := s.now()
	d := now.Sub(s.checkpoint)
	s.checkpoint = now
	return d, now
}
