package generator

import (
	"slices"
	"time"

	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

// Disposable is anything an instance tears down
type Disposable interface {
	Dispose()
}

// Group owns a disposal list of nodes and nested groups
// Disposal runs in reverse creation order and is idempotent
type Group struct {
	ctx      *graph.Context
	items    []Disposable
	disposed bool
}

// Track records d for disposal; tracking into a disposed group disposes d at once
func (g *Group) Track(d Disposable) {
	if g.disposed {
		d.Dispose()
		return
	}
	g.items = append(g.items, d)
}

func (g *Group) untrack(d Disposable) {
	if i := slices.Index(g.items, d); i >= 0 {
		g.items = slices.Delete(g.items, i, i+1)
	}
}

// Len returns the number of tracked items
func (g *Group) Len() int {
	return len(g.items)
}

// Dispose releases every tracked item
func (g *Group) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	for i := len(g.items) - 1; i >= 0; i-- {
		g.items[i].Dispose()
	}
	g.items = nil
}

// Oscillator creates a tracked oscillator
func (g *Group) Oscillator(w graph.Waveform, freq float64) *graph.Oscillator {
	o := g.ctx.NewOscillator(w, freq)
	g.Track(o)
	return o
}

// Gain creates a tracked gain node
func (g *Group) Gain(gain float64) *graph.Gain {
	n := g.ctx.NewGain(gain)
	g.Track(n)
	return n
}

// Filter creates a tracked biquad
func (g *Group) Filter(t graph.FilterType, freq, q float64) *graph.BiquadFilter {
	f := g.ctx.NewBiquadFilter(t, freq, q)
	g.Track(f)
	return f
}

// Buffer creates a tracked buffer source
func (g *Group) Buffer(buf []float64, loop bool) *graph.BufferSource {
	b := g.ctx.NewBufferSource(buf, loop)
	g.Track(b)
	return b
}

// Delay creates a tracked delay line
func (g *Group) Delay(delay, maxSeconds float64) *graph.Delay {
	d := g.ctx.NewDelay(delay, maxSeconds)
	g.Track(d)
	return d
}

// Instance is the runtime bundle of one ambience period: nodes, per-event voices and timers
type Instance struct {
	Group

	sched  schedule.Scheduler
	rng    graph.Rand
	timers map[*timerRef]struct{}
	alive  bool
}

type timerRef struct {
	t schedule.Timer
}

// NewInstance creates a live instance rendering into ctx
// Callbacks run through sched, which the owner wraps with its control lock
func NewInstance(ctx *graph.Context, sched schedule.Scheduler, rng graph.Rand) *Instance {
	return &Instance{
		Group:  Group{ctx: ctx},
		sched:  sched,
		rng:    rng,
		timers: make(map[*timerRef]struct{}),
		alive:  true,
	}
}

// Context returns the graph the instance renders into
func (in *Instance) Context() *graph.Context {
	return in.ctx
}

// Rand returns the injected random source
func (in *Instance) Rand() graph.Rand {
	return in.rng
}

// Now returns the current audio time in seconds
func (in *Instance) Now() float64 {
	return in.ctx.CurrentTime()
}

// Alive reports whether the instance has not been disposed
func (in *Instance) Alive() bool {
	return in.alive
}

// Timers returns the number of pending timers
func (in *Instance) Timers() int {
	return len(in.timers)
}

// After runs fn once after d unless the instance is disposed first
func (in *Instance) After(d time.Duration, fn func()) {
	if !in.alive {
		return
	}
	ref := &timerRef{}
	in.timers[ref] = struct{}{}
	ref.t = in.sched.AfterFunc(d, func() {
		delete(in.timers, ref)
		if !in.alive {
			return
		}
		fn()
	})
}

// Every runs fn repeatedly with a period drawn from [avg, avg+jitter)
func (in *Instance) Every(avg, jitter time.Duration, fn func()) {
	var arm func()
	arm = func() {
		d := avg + time.Duration(in.rng.Float64()*float64(jitter))
		in.After(d, func() {
			fn()
			arm()
		})
	}
	arm()
}

// Voice creates a tracked node group that disposes itself after lifetime
func (in *Instance) Voice(lifetime time.Duration) *Group {
	v := &Group{ctx: in.ctx}
	in.Track(v)
	in.After(lifetime, func() {
		v.Dispose()
		in.untrack(v)
	})
	return v
}

// Dispose cancels every timer, then releases nodes; safe to repeat
func (in *Instance) Dispose() {
	if !in.alive {
		return
	}
	in.alive = false
	for ref := range in.timers {
		ref.t.Stop()
	}
	clear(in.timers)
	in.Group.Dispose()
}
