package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a controllable scheduler for tests and offline rendering
// Callbacks fire only from Advance, in deadline order, on the caller's goroutine
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	m    *Manual
	at   time.Time
	seq  uint64
	fn   func()
	done bool
}

// NewManual creates a manual scheduler starting at start
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Scheduler
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc implements Scheduler
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Stop implements Timer
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}

// Pending returns the number of timers not yet fired or stopped
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d, firing due timers in order
// Timers scheduled by callbacks fire within the same call when due
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	end := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDue(end)
		if t == nil {
			m.now = end
			m.mu.Unlock()
			return
		}
		t.done = true
		m.remove(t)
		if t.at.After(m.now) {
			m.now = t.at
		}
		m.mu.Unlock()

		t.fn()
	}
}

// nextDue returns the earliest timer due by end; callers hold mu
func (m *Manual) nextDue(end time.Time) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	if first := m.pending[0]; !first.at.After(end) {
		return first
	}
	return nil
}

func (m *Manual) remove(t *manualTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}
