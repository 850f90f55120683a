// Package sfx synthesises short interface cues on the effects bus
package sfx

import (
	"log/slog"
	"time"

	"github.com/lixenwraith/ambient/constant"
	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

// Kind names a cue
type Kind string

const (
	Hover     Kind = "hover"
	Click     Kind = "click"
	Journal   Kind = "journal"
	Objective Kind = "objective"
)

// Tone describes one cue's oscillator and envelope
type Tone struct {
	Wave    graph.Waveform
	Freq    float64
	GlideTo float64 // 0 holds the pitch
	Glide   float64 // seconds
	Attack  float64
	Release float64
	Peak    float64
}

// Tones is the cue table
var Tones = map[Kind]Tone{
	Hover:     {Wave: graph.Triangle, Freq: 660, GlideTo: 880, Glide: 0.08, Attack: 0.005, Release: 0.22, Peak: 0.045},
	Click:     {Wave: graph.Sine, Freq: 360, Attack: 0.004, Release: 0.22, Peak: 0.08},
	Journal:   {Wave: graph.Sine, Freq: 520, Attack: 0.01, Release: 0.35, Peak: 0.07},
	Objective: {Wave: graph.Sine, Freq: 440, Attack: 0.01, Release: 0.45, Peak: 0.12},
}

// Normalize maps a requested kind to a known cue; unknown kinds become Click
func Normalize(kind string) Kind {
	k := Kind(kind)
	if _, ok := Tones[k]; ok {
		return k
	}
	return Click
}

type voice struct {
	osc *graph.Oscillator
	env *graph.Gain
	// audio time at which the oscillator stops
	end float64

	ended  schedule.Timer
	safety schedule.Timer
}

func (v *voice) dispose() {
	v.ended.Stop()
	v.safety.Stop()
	v.osc.Dispose()
	v.env.Dispose()
}

// Options configures a Player
type Options struct {
	Scheduler schedule.Scheduler
	// Now is the wall clock used for hover debounce; defaults to the scheduler clock
	Now      func() time.Time
	Cooldown time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Player fires one-shot voices into a bus
// Not safe for concurrent use; the owner serialises calls and scheduler callbacks
type Player struct {
	ctx      *graph.Context
	bus      graph.Node
	sched    schedule.Scheduler
	now      func() time.Time
	cooldown time.Duration
	timeout  time.Duration
	log      *slog.Logger

	lastHover time.Time
	hovered   bool
	voices    map[*voice]struct{}
}

// NewPlayer creates a player rendering into bus
func NewPlayer(ctx *graph.Context, bus graph.Node, opts Options) *Player {
	if opts.Now == nil {
		opts.Now = opts.Scheduler.Now
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = constant.HoverCooldown
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constant.SfxVoiceTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Player{
		ctx:      ctx,
		bus:      bus,
		sched:    opts.Scheduler,
		now:      opts.Now,
		cooldown: opts.Cooldown,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		voices:   make(map[*voice]struct{}),
	}
}

// Play fires a cue and reports whether a voice was created
// A hover inside the cooldown of the previous accepted hover is dropped
func (p *Player) Play(kind string) bool {
	k := Normalize(kind)
	if k == Hover {
		now := p.now()
		if p.hovered && now.Sub(p.lastHover) < p.cooldown {
			return false
		}
		p.hovered = true
		p.lastHover = now
	}

	tone := Tones[k]
	t := p.ctx.CurrentTime()
	v := &voice{
		osc: p.ctx.NewOscillator(tone.Wave, tone.Freq),
		env: p.ctx.NewGain(0),
	}
	if tone.GlideTo > 0 {
		v.osc.Frequency.SetValueAtTime(tone.Freq, t)
		v.osc.Frequency.ExponentialRampToValueAtTime(tone.GlideTo, t+tone.Glide)
	}
	v.env.Gain.SetValueAtTime(0, t)
	v.env.Gain.LinearRampToValueAtTime(tone.Peak, t+tone.Attack)
	v.env.Gain.ExponentialRampToValueAtTime(constant.Epsilon, t+tone.Attack+tone.Release)

	life := tone.Attack + tone.Release + 0.02
	v.end = t + life
	v.osc.Connect(v.env)
	v.env.Connect(p.bus)
	v.osc.Start(t)
	v.osc.Stop(v.end)

	// the end timer only releases once the audio clock has caught up; a stalled
	// context leaves the voice to the safety timeout
	v.ended = p.sched.AfterFunc(time.Duration(life*float64(time.Second)), func() {
		if p.ctx.CurrentTime() >= v.end {
			p.release(v)
		}
	})
	v.safety = p.sched.AfterFunc(p.timeout, func() {
		p.release(v)
	})
	p.voices[v] = struct{}{}
	p.log.Debug("sfx", "kind", string(k))
	return true
}

func (p *Player) release(v *voice) {
	if _, ok := p.voices[v]; !ok {
		return
	}
	delete(p.voices, v)
	v.dispose()
}

// Active returns the number of voices not yet released
func (p *Player) Active() int {
	return len(p.voices)
}

// Close releases every voice and cancels their timers
func (p *Player) Close() {
	for v := range p.voices {
		v.dispose()
	}
	clear(p.voices)
}
