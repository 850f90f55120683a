package sfx

import (
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

func newPlayer() (*Player, *graph.Context, *schedule.Manual) {
	ctx := graph.NewContext(8000)
	ctx.Resume()
	m := schedule.NewManual(time.Unix(0, 0))
	p := NewPlayer(ctx, ctx.Destination(), Options{Scheduler: m})
	return p, ctx, m
}

// TestNormalize verifies unknown kinds fall back to click
func TestNormalize(t *testing.T) {
	tests := map[string]Kind{
		"hover":     Hover,
		"journal":   Journal,
		"objective": Objective,
		"click":     Click,
		"":          Click,
		"explosion": Click,
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q): expected %s, got %s", in, want, got)
		}
	}
}

// TestHoverDebounce verifies the cooldown window between accepted hovers
func TestHoverDebounce(t *testing.T) {
	tests := []struct {
		name  string
		gap   time.Duration
		voice int
	}{
		{"50ms apart", 50 * time.Millisecond, 1},
		{"200ms apart", 200 * time.Millisecond, 2},
		{"exactly cooldown", 140 * time.Millisecond, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, m := newPlayer()
			p.Play("hover")
			m.Advance(tt.gap)
			p.Play("hover")
			if p.Active() != tt.voice {
				t.Errorf("Expected %d voices, got %d", tt.voice, p.Active())
			}
		})
	}
}

// TestDroppedHoverDoesNotExtendCooldown verifies the window runs from the last accepted hover
func TestDroppedHoverDoesNotExtendCooldown(t *testing.T) {
	p, _, m := newPlayer()
	p.Play("hover")
	m.Advance(100 * time.Millisecond)
	if p.Play("hover") {
		t.Fatal("Expected hover inside cooldown dropped")
	}
	m.Advance(50 * time.Millisecond)
	if !p.Play("hover") {
		t.Error("Expected hover 150ms after the accepted one to play")
	}
}

// TestOtherKindsNotDebounced verifies only hover is rate limited
func TestOtherKindsNotDebounced(t *testing.T) {
	p, _, _ := newPlayer()
	for range 3 {
		p.Play("click")
	}
	if p.Active() != 3 {
		t.Errorf("Expected 3 click voices, got %d", p.Active())
	}
}

// TestSafetyTimeout verifies voices are released after the timeout
func TestSafetyTimeout(t *testing.T) {
	p, ctx, m := newPlayer()
	p.Play("objective")
	if ctx.Live() != 2 {
		t.Fatalf("Expected 2 nodes, got %d", ctx.Live())
	}

	m.Advance(499 * time.Millisecond)
	if p.Active() != 1 {
		t.Errorf("Expected voice alive before timeout")
	}
	m.Advance(time.Millisecond)
	if p.Active() != 0 || ctx.Live() != 0 {
		t.Errorf("Expected voice released, got %d active %d live", p.Active(), ctx.Live())
	}
}

// TestReleaseAtEnvelopeEnd verifies a voice is released once its envelope has played out
func TestReleaseAtEnvelopeEnd(t *testing.T) {
	p, ctx, m := newPlayer()
	p.Play("hover")

	ctx.Render(8000 * 3 / 10)
	m.Advance(250 * time.Millisecond)
	if p.Active() != 0 || ctx.Live() != 0 {
		t.Errorf("Expected hover released after its envelope, got %d active %d live", p.Active(), ctx.Live())
	}
	if m.Pending() != 0 {
		t.Errorf("Expected safety timer cancelled, got %d pending", m.Pending())
	}
}

// TestStalledAudioKeepsVoice verifies the envelope timer waits for the audio clock
func TestStalledAudioKeepsVoice(t *testing.T) {
	p, _, m := newPlayer()
	p.Play("hover")

	m.Advance(250 * time.Millisecond)
	if p.Active() != 1 {
		t.Errorf("Expected voice kept while audio has not played it, got %d", p.Active())
	}
	m.Advance(250 * time.Millisecond)
	if p.Active() != 0 {
		t.Errorf("Expected safety timeout to release, got %d", p.Active())
	}
}

// TestVoiceEnvelope verifies a cue sounds near its peak and decays
func TestVoiceEnvelope(t *testing.T) {
	p, ctx, _ := newPlayer()
	p.Play("objective")

	out := ctx.Render(8000 / 2)
	peak := 0.0
	for _, v := range out[:800] {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak < 0.08 || peak > 0.12 {
		t.Errorf("Expected peak near 0.12, got %f", peak)
	}
	tail := 0.0
	for _, v := range out[3800:] {
		tail = math.Max(tail, math.Abs(v))
	}
	if tail > 0.001 {
		t.Errorf("Expected silence after release, got %f", tail)
	}
}

// TestClose verifies all voices and timers are released
func TestClose(t *testing.T) {
	p, ctx, m := newPlayer()
	p.Play("click")
	p.Play("journal")
	p.Close()
	p.Close()

	if ctx.Live() != 0 {
		t.Errorf("Expected no nodes, got %d", ctx.Live())
	}
	if m.Pending() != 0 {
		t.Errorf("Expected no timers, got %d", m.Pending())
	}
}
