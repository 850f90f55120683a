package scene

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lixenwraith/ambient/constant"
	"github.com/lixenwraith/ambient/generator"
	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

type fixture struct {
	c   *Controller
	ctx *graph.Context
	bus *graph.Gain
	m   *schedule.Manual
}

func newFixture() *fixture {
	ctx := graph.NewContext(8000)
	ctx.Resume()
	bus := ctx.NewGain(0)
	bus.Connect(ctx.Destination())
	m := schedule.NewManual(time.Unix(0, 0))
	c := NewController(ctx, bus, Options{
		Scheduler: m,
		Rand:      rand.New(rand.NewPCG(3, 4)),
		Level:     func() float64 { return 0.5 },
	})
	return &fixture{c: c, ctx: ctx, bus: bus, m: m}
}

// nodes excludes the bus itself
func (f *fixture) nodes() int {
	return f.ctx.Live() - 1
}

// TestResolve verifies mapping, fallback and low complexity halving
func TestResolve(t *testing.T) {
	tbl := DefaultTable()

	tests := []struct {
		key  string
		low  bool
		want []string
	}{
		{Ghat, false, []string{generator.NameRiver, generator.NameBell, generator.NameCrowd}},
		{Ghat, true, []string{generator.NameRiver, generator.NameBell}},
		{Warden, true, []string{generator.NamePulse}},
		{Title, true, []string{generator.NamePad}},
		{"unmapped_key", false, []string{generator.NameFallbackPad}},
	}

	for _, tt := range tests {
		tbl.SetLowComplexity(tt.low)
		got := tbl.Resolve(tt.key)
		if len(got) != len(tt.want) {
			t.Errorf("%s low=%v: expected %v, got %v", tt.key, tt.low, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s low=%v: expected %v, got %v", tt.key, tt.low, tt.want, got)
				break
			}
		}
	}
}

// TestRegister verifies custom mappings and generator validation
func TestRegister(t *testing.T) {
	tbl := DefaultTable()
	if err := tbl.Register("cave", generator.NameDrip, generator.NameAir); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !tbl.Mapped("cave") {
		t.Error("Expected cave mapped")
	}

	err := tbl.Register("bad", "theremin")
	if !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("Expected ErrUnknownGenerator, got %v", err)
	}
	if tbl.Mapped("bad") {
		t.Error("Expected failed registration to leave no entry")
	}
}

// TestStartIdempotent verifies a repeated start keeps one generator set
func TestStartIdempotent(t *testing.T) {
	f := newFixture()
	f.c.Start(Ghat)
	nodes := f.nodes()
	timers := f.m.Pending()

	f.c.Start(Ghat)
	if f.nodes() != nodes {
		t.Errorf("Expected %d nodes, got %d", nodes, f.nodes())
	}
	if f.m.Pending() != timers {
		t.Errorf("Expected %d timers, got %d", timers, f.m.Pending())
	}
	if f.c.Generations() != 1 || f.c.Key() != Ghat {
		t.Errorf("Expected one ghat generation, got %d %q", f.c.Generations(), f.c.Key())
	}
}

// TestBusFadeIn verifies a fresh start ramps from epsilon to the ambient level
func TestBusFadeIn(t *testing.T) {
	f := newFixture()
	f.c.Start(Title)

	if v := f.bus.Gain.ValueAt(0); v != constant.Epsilon {
		t.Errorf("Expected epsilon at start, got %g", v)
	}
	if v := f.bus.Gain.ValueAt(constant.SceneFade.Seconds()); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("Expected 0.5 after fade, got %f", v)
	}
}

// TestSwapReleasesOldScene verifies overlapping transitions end with only the last scene
func TestSwapReleasesOldScene(t *testing.T) {
	f := newFixture()
	f.c.Start(Ghat)
	f.m.Advance(100 * time.Millisecond)

	f.c.Start(Labyrinth)
	if f.c.Pending() != Labyrinth || f.c.Playing() != "" {
		t.Fatalf("Expected labyrinth pending behind fade, got pending %q playing %q", f.c.Pending(), f.c.Playing())
	}
	if f.c.Generations() != 1 {
		t.Fatalf("Expected only the retiring ghat generation, got %d", f.c.Generations())
	}

	f.m.Advance(100 * time.Millisecond)
	f.c.Start(TrialA)
	if f.c.Key() != TrialA {
		t.Fatalf("Expected trial_a current, got %q", f.c.Key())
	}

	f.m.Advance(constant.SceneFade)
	if f.c.Playing() != TrialA || f.c.Pending() != "" {
		t.Fatalf("Expected trial_a playing, got playing %q pending %q", f.c.Playing(), f.c.Pending())
	}
	if f.c.Generations() != 1 {
		t.Errorf("Expected a single generation, got %d", f.c.Generations())
	}

	ref := newFixture()
	ref.c.Start(TrialA)
	if f.nodes() != ref.nodes() {
		t.Errorf("Expected %d nodes as a fresh trial_a, got %d", ref.nodes(), f.nodes())
	}
	if f.m.Pending() != f.c.Timers() {
		t.Errorf("Expected every pending timer owned by trial_a, got %d pending vs %d owned", f.m.Pending(), f.c.Timers())
	}
}

// TestStopFade verifies a faded stop releases everything once the fade completes
func TestStopFade(t *testing.T) {
	f := newFixture()
	f.c.Start(Ghat)
	f.m.Advance(20 * time.Second)

	f.c.Stop(true)
	if f.c.Key() != "" {
		t.Errorf("Expected idle key, got %q", f.c.Key())
	}
	if f.c.Generations() != 1 {
		t.Errorf("Expected retiring generation during fade, got %d", f.c.Generations())
	}

	f.m.Advance(constant.SceneFade - time.Millisecond)
	if f.c.Generations() != 1 {
		t.Errorf("Expected teardown to wait for the fade")
	}

	f.m.Advance(time.Millisecond)
	if f.c.Generations() != 0 {
		t.Errorf("Expected no generations, got %d", f.c.Generations())
	}
	if f.nodes() != 0 {
		t.Errorf("Expected no nodes, got %d", f.nodes())
	}
	if f.m.Pending() != 0 {
		t.Errorf("Expected no timers, got %d", f.m.Pending())
	}
}

// TestStopImmediate verifies an unfaded stop also drops retiring and pending work
func TestStopImmediate(t *testing.T) {
	f := newFixture()
	f.c.Start(Ghat)
	f.c.Start(Warden)
	f.c.Stop(false)

	if f.c.Generations() != 0 || f.c.Pending() != "" {
		t.Errorf("Expected idle controller, got %d generations pending %q", f.c.Generations(), f.c.Pending())
	}
	if f.nodes() != 0 {
		t.Errorf("Expected no nodes, got %d", f.nodes())
	}

	f.m.Advance(time.Second)
	if f.c.Playing() != "" {
		t.Errorf("Expected cancelled start to stay cancelled, got %q", f.c.Playing())
	}
	if f.m.Pending() != 0 {
		t.Errorf("Expected no timers, got %d", f.m.Pending())
	}
}

// TestUnknownSceneFallsBack verifies unmapped keys play the fallback pad
func TestUnknownSceneFallsBack(t *testing.T) {
	f := newFixture()
	f.c.Start("unmapped_key")

	if f.c.Playing() != "unmapped_key" {
		t.Errorf("Expected unmapped_key playing, got %q", f.c.Playing())
	}
	// three voices, three voice gains, the pad gain
	if f.nodes() != 7 {
		t.Errorf("Expected 7 pad nodes, got %d", f.nodes())
	}
}

// TestRestartRetiringKey verifies a key being torn down starts as a new generation
func TestRestartRetiringKey(t *testing.T) {
	f := newFixture()
	f.c.Start(Title)
	f.c.Stop(true)
	f.c.Start(Title)

	if f.c.Pending() != Title {
		t.Fatalf("Expected title pending behind its own fade, got %q", f.c.Pending())
	}
	f.m.Advance(constant.SceneFade)
	if f.c.Playing() != Title || f.c.Generations() != 1 {
		t.Errorf("Expected one fresh title generation, got %q x%d", f.c.Playing(), f.c.Generations())
	}
	if f.nodes() != 7 {
		t.Errorf("Expected 7 nodes, got %d", f.nodes())
	}
}

// TestSetLevelDuringFadeIn verifies a volume change mid fade-in lands on schedule and sticks
func TestSetLevelDuringFadeIn(t *testing.T) {
	f := newFixture()
	f.c.Start(Title)
	f.ctx.Render(800) // 100 ms into the fade

	f.c.SetLevel(0.1)
	end := constant.SceneFade.Seconds()
	if v := f.bus.Gain.ValueAt(end); math.Abs(v-0.1) > 1e-9 {
		t.Errorf("Expected fade to end at 0.1, got %f", v)
	}

	f.ctx.Render(16000)
	if v := f.bus.Gain.Value(); math.Abs(v-0.1) > 1e-6 {
		t.Errorf("Expected bus to stay at 0.1, got %f", v)
	}
}

// TestSetLevelAfterFade verifies a settled bus approaches the new level smoothly
func TestSetLevelAfterFade(t *testing.T) {
	f := newFixture()
	f.c.Start(Title)
	f.ctx.Render(8000)

	f.c.SetLevel(0.2)
	now := f.ctx.CurrentTime()
	if v := f.bus.Gain.ValueAt(now + constant.BusTimeConstant); math.Abs(v-(0.2+0.3*math.Exp(-1))) > 1e-6 {
		t.Errorf("Expected one time constant of smoothing, got %f", v)
	}
	f.ctx.Render(8000)
	if v := f.bus.Gain.Value(); math.Abs(v-0.2) > 1e-6 {
		t.Errorf("Expected 0.2, got %f", v)
	}
}

// TestSetLevelDuringFadeOut verifies a fade-out is not interrupted by a volume change
func TestSetLevelDuringFadeOut(t *testing.T) {
	f := newFixture()
	f.c.Start(Title)
	f.ctx.Render(8000)

	f.c.Stop(true)
	f.c.SetLevel(0.9)
	end := f.ctx.CurrentTime() + constant.SceneFade.Seconds()
	if v := f.bus.Gain.ValueAt(end); v != constant.Epsilon {
		t.Errorf("Expected fade-out to reach epsilon, got %g", v)
	}
}
