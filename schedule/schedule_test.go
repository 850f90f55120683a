package schedule

import (
	"sync"
	"testing"
	"time"
)

// TestManualOrder verifies timers fire in deadline order with the clock at their deadline
func TestManualOrder(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewManual(start)

	var fired []string
	var at []time.Duration
	record := func(name string) func() {
		return func() {
			fired = append(fired, name)
			at = append(at, m.Now().Sub(start))
		}
	}

	m.AfterFunc(300*time.Millisecond, record("c"))
	m.AfterFunc(100*time.Millisecond, record("a"))
	m.AfterFunc(100*time.Millisecond, record("b"))

	m.Advance(250 * time.Millisecond)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Fatalf("Expected [a b], got %v", fired)
	}
	if at[0] != 100*time.Millisecond {
		t.Errorf("Expected clock at 100ms during callback, got %v", at[0])
	}
	if m.Now().Sub(start) != 250*time.Millisecond {
		t.Errorf("Expected clock at 250ms, got %v", m.Now().Sub(start))
	}

	m.Advance(time.Second)
	if len(fired) != 3 {
		t.Errorf("Expected 3 fired, got %d", len(fired))
	}
}

// TestManualStop verifies stopped timers never fire
func TestManualStop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := false
	tm := m.AfterFunc(time.Second, func() { fired = true })

	if !tm.Stop() {
		t.Error("Expected first Stop to report true")
	}
	if tm.Stop() {
		t.Error("Expected second Stop to report false")
	}
	m.Advance(2 * time.Second)
	if fired {
		t.Error("Stopped timer fired")
	}
	if m.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", m.Pending())
	}
}

// TestManualChained verifies timers scheduled from callbacks fire within the same advance
func TestManualChained(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	count := 0
	var tick func()
	tick = func() {
		count++
		m.AfterFunc(100*time.Millisecond, tick)
	}
	m.AfterFunc(100*time.Millisecond, tick)

	m.Advance(time.Second)
	if count != 10 {
		t.Errorf("Expected 10 ticks, got %d", count)
	}
	if m.Pending() != 1 {
		t.Errorf("Expected the next tick pending, got %d", m.Pending())
	}
}

// TestLockedHoldsMutex verifies callbacks run under the supplied lock
func TestLockedHoldsMutex(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var mu sync.Mutex
	s := Locked(m, &mu)

	held := false
	s.AfterFunc(time.Millisecond, func() {
		held = !mu.TryLock()
	})
	m.Advance(time.Millisecond)
	if !held {
		t.Error("Expected mutex held during callback")
	}
}

// TestRealtimeFires verifies the system scheduler runs callbacks
func TestRealtimeFires(t *testing.T) {
	s := NewRealtime()
	done := make(chan struct{})
	s.AfterFunc(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timer did not fire")
	}
}
