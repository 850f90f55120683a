package generator

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func newInstance(rate int, r graph.Rand) (*Instance, *schedule.Manual) {
	ctx := graph.NewContext(rate)
	ctx.Resume()
	m := schedule.NewManual(time.Unix(0, 0))
	return NewInstance(ctx, m, r), m
}

// TestEveryPeriod verifies recurring timers draw their period from avg plus scaled jitter
func TestEveryPeriod(t *testing.T) {
	in, m := newInstance(8000, &seqRand{vals: []float64{0.5}})
	calls := 0
	in.Every(time.Second, 2*time.Second, func() { calls++ })

	m.Advance(1999 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("Expected no call before 2s, got %d", calls)
	}
	m.Advance(time.Millisecond)
	if calls != 1 {
		t.Fatalf("Expected first call at 2s, got %d", calls)
	}
	m.Advance(4 * time.Second)
	if calls != 3 {
		t.Errorf("Expected 3 calls by 6s, got %d", calls)
	}
}

// TestDisposeCancelsTimers verifies teardown stops every pending callback synchronously
func TestDisposeCancelsTimers(t *testing.T) {
	in, m := newInstance(8000, &seqRand{vals: []float64{0}})
	calls := 0
	in.Every(time.Second, 0, func() { calls++ })
	in.After(500*time.Millisecond, func() { calls++ })

	if in.Timers() != 2 {
		t.Fatalf("Expected 2 timers, got %d", in.Timers())
	}
	in.Dispose()
	in.Dispose()

	m.Advance(10 * time.Second)
	if calls != 0 {
		t.Errorf("Expected no callbacks after dispose, got %d", calls)
	}
	if m.Pending() != 0 {
		t.Errorf("Expected scheduler drained, got %d pending", m.Pending())
	}
	if in.Alive() {
		t.Error("Expected instance not alive")
	}

	in.After(time.Millisecond, func() { calls++ })
	if in.Timers() != 0 {
		t.Error("Expected After on a disposed instance to be ignored")
	}
}

// stubTimer never fires and reports a lost race on Stop
type stubTimer struct{ fn func() }

func (s *stubTimer) Stop() bool { return false }

type stubScheduler struct{ timers []*stubTimer }

func (s *stubScheduler) AfterFunc(_ time.Duration, fn func()) schedule.Timer {
	t := &stubTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *stubScheduler) Now() time.Time { return time.Unix(0, 0) }

// TestLateCallbackIgnored verifies a callback that lost the cancel race does nothing
func TestLateCallbackIgnored(t *testing.T) {
	ctx := graph.NewContext(8000)
	s := &stubScheduler{}
	in := NewInstance(ctx, s, &seqRand{vals: []float64{0}})

	fired := false
	in.After(time.Second, func() { fired = true })
	in.Dispose()

	// deliver the timer after teardown
	s.timers[0].fn()
	if fired {
		t.Error("Expected late callback to be dropped")
	}
}

// TestVoiceSelfDisposes verifies per-event voices release their nodes after their lifetime
func TestVoiceSelfDisposes(t *testing.T) {
	in, m := newInstance(8000, &seqRand{vals: []float64{0}})
	ctx := in.Context()
	Drip(in, ctx.Destination())

	if ctx.Live() != 0 {
		t.Fatalf("Expected drip to create nothing up front, got %d", ctx.Live())
	}

	m.Advance(4 * time.Second)
	if ctx.Live() != 2 {
		t.Fatalf("Expected a 2-node voice, got %d live", ctx.Live())
	}
	if in.Len() != 1 {
		t.Errorf("Expected 1 tracked voice, got %d", in.Len())
	}

	m.Advance(300 * time.Millisecond)
	if ctx.Live() != 0 {
		t.Errorf("Expected voice released, got %d live", ctx.Live())
	}
	if in.Len() != 0 {
		t.Errorf("Expected voice untracked, got %d", in.Len())
	}
}

// TestGroupReverseOrder verifies disposal runs newest first and tolerates repeats
func TestGroupReverseOrder(t *testing.T) {
	var order []int
	g := &Group{}
	for i := range 3 {
		g.Track(disposeFunc(func() { order = append(order, i) }))
	}
	g.Dispose()
	g.Dispose()

	if len(order) != 3 || order[0] != 2 || order[2] != 0 {
		t.Errorf("Expected [2 1 0], got %v", order)
	}

	late := false
	g.Track(disposeFunc(func() { late = true }))
	if !late {
		t.Error("Expected tracking into a disposed group to dispose immediately")
	}
}

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

// TestFactoriesRenderAndRelease builds every generator, renders it and checks teardown
func TestFactoriesRenderAndRelease(t *testing.T) {
	const rate = 22050
	continuous := map[string]bool{
		NamePad: true, NameFallbackPad: true, NameRiver: true, NameCrowd: true,
		NameDrone: true, NameWind: true, NameHum: true, NameAir: true,
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			in, m := newInstance(rate, rand.New(rand.NewPCG(1, 2)))
			ctx := in.Context()
			f, ok := Lookup(name)
			if !ok {
				t.Fatalf("Factory %s not registered", name)
			}
			f(in, ctx.Destination())

			var energy float64
			step := 100 * time.Millisecond
			for range 150 {
				m.Advance(step)
				for _, v := range ctx.Render(rate / 10) {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("Non-finite sample")
					}
					if math.Abs(v) > 1 {
						t.Fatalf("Sample out of range: %f", v)
					}
					energy += v * v
				}
			}
			if energy == 0 {
				t.Errorf("Expected %s to sound within 15s", name)
			}
			if continuous[name] && in.Timers() > 1 {
				t.Errorf("Expected at most one pending timer for a bed, got %d", in.Timers())
			}

			in.Dispose()
			if ctx.Live() != 0 {
				t.Errorf("Expected no live nodes after dispose, got %d", ctx.Live())
			}
			if m.Pending() != 0 {
				t.Errorf("Expected no pending timers after dispose, got %d", m.Pending())
			}
		})
	}

	if _, ok := Lookup("nope"); ok {
		t.Error("Expected unknown generator lookup to fail")
	}
}

// TestNote verifies pitch name parsing against equal temperament
func TestNote(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"A4", 440},
		{"a4", 440},
		{"C4", 261.6256},
		{"D3", 146.8324},
		{"F#4", 369.9944},
		{"Bb2", 116.5409},
		{"B5", 987.7666},
		{"H2", 0},
		{"C", 0},
		{"Cx4", 0},
	}
	for _, tt := range tests {
		if got := Note(tt.name); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("Note(%q): expected %.4f, got %.4f", tt.name, tt.want, got)
		}
	}
	if NoteFreq(128) != 0 || NoteFreq(-1) != 0 {
		t.Error("Expected out-of-range MIDI notes to return 0")
	}
}
