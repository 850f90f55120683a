package schedule

import (
	"sync"
	"time"
)

// Timer is a pending callback
type Timer interface {
	// Stop cancels the callback; reports false if it already fired or was stopped
	Stop() bool
}

// Scheduler runs callbacks after a delay and provides the clock they are measured against
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Realtime schedules on the system clock
type Realtime struct{}

// NewRealtime creates a system clock scheduler
func NewRealtime() *Realtime {
	return &Realtime{}
}

// AfterFunc implements Scheduler
func (Realtime) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Now implements Scheduler
func (Realtime) Now() time.Time {
	return time.Now()
}

// Locked wraps a scheduler so every callback runs while holding mu
// The owner of mu serialises its public calls against timer callbacks
func Locked(s Scheduler, mu sync.Locker) Scheduler {
	return &locked{inner: s, mu: mu}
}

type locked struct {
	inner Scheduler
	mu    sync.Locker
}

func (l *locked) AfterFunc(d time.Duration, fn func()) Timer {
	return l.inner.AfterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		fn()
	})
}

func (l *locked) Now() time.Time {
	return l.inner.Now()
}
