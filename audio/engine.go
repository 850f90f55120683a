package audio

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lixenwraith/ambient/backend"
	"github.com/lixenwraith/ambient/constant"
	"github.com/lixenwraith/ambient/gesture"
	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/scene"
	"github.com/lixenwraith/ambient/schedule"
	"github.com/lixenwraith/ambient/sfx"
)

// AudioEngine owns the audio context, the bus graph, the scene controller and the cue player
// It is constructed dormant; the graph exists only after EnsureContext succeeds
// Every public call and every timer callback runs under one mutex
// Calls never fail: an unavailable device makes the engine silent
type AudioEngine struct {
	mu sync.Mutex

	cfg      *Config
	log      *slog.Logger
	clock    schedule.Scheduler
	sched    schedule.Scheduler // clock with callbacks under mu
	now      func() time.Time
	rng      graph.Rand
	gestures *gesture.Source
	open     backend.Opener
	table    *scene.Table

	enabled bool
	volumes map[string]float64

	ctx         *graph.Context
	out         backend.Backend
	buses       map[string]*Bus
	comp        *graph.Compressor
	scenes      *scene.Controller
	player      *sfx.Player
	unavailable bool
	closed      bool

	// requested before the context existed, started on activation
	wantScene string

	cancelActivate func()
	cancelResume   func()
}

// Option customises an engine
type Option func(*AudioEngine)

// WithScheduler replaces the system timer source
func WithScheduler(s schedule.Scheduler) Option {
	return func(e *AudioEngine) { e.clock = s }
}

// WithRand injects the random source used by every generator
func WithRand(r graph.Rand) Option {
	return func(e *AudioEngine) { e.rng = r }
}

// WithGestures supplies the activation event source
func WithGestures(g *gesture.Source) Option {
	return func(e *AudioEngine) { e.gestures = g }
}

// WithBackendOpener replaces device opening
func WithBackendOpener(o backend.Opener) Option {
	return func(e *AudioEngine) { e.open = o }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *AudioEngine) { e.log = l }
}

// WithClock sets the wall clock used for cue debounce
func WithClock(now func() time.Time) Option {
	return func(e *AudioEngine) { e.now = now }
}

// NewAudioEngine creates a dormant engine
// The first gesture materialises and resumes the context unless cfg asks for eager creation
func NewAudioEngine(cfg *Config, opts ...Option) *AudioEngine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()

	e := &AudioEngine{
		cfg:     cfg,
		enabled: cfg.Enabled,
		volumes: map[string]float64{
			BusMaster:  cfg.MasterVolume,
			BusMusic:   cfg.MusicVolume,
			BusAmbient: cfg.AmbientVolume,
			BusSfx:     cfg.SfxVolume,
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.clock == nil {
		e.clock = schedule.NewRealtime()
	}
	if e.now == nil {
		e.now = e.clock.Now
	}
	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if e.gestures == nil {
		e.gestures = gesture.NewSource()
	}
	if e.open == nil {
		e.open = backend.Open
	}
	e.sched = schedule.Locked(e.clock, &e.mu)

	e.table = scene.DefaultTable()
	e.table.SetLowComplexity(cfg.LowComplexity)
	for key, gens := range cfg.Scenes {
		if err := e.table.Register(key, gens...); err != nil {
			e.log.Warn("scene mapping ignored", "error", err)
		}
	}

	if cfg.EagerContext {
		e.ensureContextLocked()
	} else {
		e.cancelActivate = e.gestures.Once(e.activate)
	}
	return e
}

// Gestures returns the activation source
func (e *AudioEngine) Gestures() *gesture.Source {
	return e.gestures
}

// Table returns the scene table
func (e *AudioEngine) Table() *scene.Table {
	return e.table
}

// EnsureContext materialises the context and bus graph; it is idempotent
// It reports whether a context exists
func (e *AudioEngine) EnsureContext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureContextLocked()
}

func (e *AudioEngine) ensureContextLocked() bool {
	if e.ctx != nil {
		return true
	}
	if e.unavailable || e.closed {
		return false
	}

	out, err := e.open(e.cfg.Backend, backend.Options{
		SampleRate: e.cfg.SampleRate,
		Buffer:     e.cfg.Buffer(),
		Trim:       e.cfg.OutputTrim,
		Logger:     e.log,
	})
	if err != nil {
		e.unavailable = true
		e.log.Warn("audio unavailable, continuing silent", "backend", e.cfg.Backend, "error", err)
		return false
	}

	ctx := graph.NewContext(e.cfg.SampleRate)
	e.buses = map[string]*Bus{
		BusMaster:  newBus(ctx, BusMaster, e.volumes[BusMaster], constant.BusTimeConstant),
		BusMusic:   newBus(ctx, BusMusic, e.volumes[BusMusic], constant.BusTimeConstant),
		BusAmbient: newBus(ctx, BusAmbient, e.volumes[BusAmbient], constant.BusTimeConstant),
		BusSfx:     newBus(ctx, BusSfx, e.volumes[BusSfx], constant.SfxTimeConstant),
	}
	e.comp = ctx.NewCompressor(
		constant.CompressorThreshold,
		constant.CompressorKnee,
		constant.CompressorRatio,
		constant.CompressorAttack,
		constant.CompressorRelease,
	)

	master := e.buses[BusMaster].Node()
	master.Connect(e.comp)
	e.comp.Connect(ctx.Destination())
	for _, name := range []string{BusMusic, BusAmbient, BusSfx} {
		e.buses[name].Node().Connect(master)
	}

	if err := out.Attach(ctx); err != nil {
		ctx.Close()
		out.Close()
		e.unavailable = true
		e.log.Warn("audio output failed, continuing silent", "backend", out.Name(), "error", err)
		return false
	}

	e.ctx = ctx
	e.out = out
	e.scenes = scene.NewController(ctx, e.buses[BusAmbient].gain, scene.Options{
		Table:     e.table,
		Scheduler: e.sched,
		Rand:      e.rng,
		Level:     func() float64 { return e.volumes[BusAmbient] },
		Fade:      e.cfg.SceneFade(),
		Smoothing: constant.BusTimeConstant,
		Logger:    e.log,
	})
	e.player = sfx.NewPlayer(ctx, e.buses[BusSfx].Node(), sfx.Options{
		Scheduler: e.sched,
		Now:       e.now,
		Cooldown:  e.cfg.HoverCooldown(),
		Logger:    e.log,
	})

	if e.cfg.AutoResume {
		ctx.Resume()
	} else {
		e.cancelResume = e.gestures.Once(func(gesture.Kind) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.resumeLocked()
		})
	}

	e.log.Info("audio context created", "backend", out.Name(), "rate", e.cfg.SampleRate)
	return true
}

// activate handles the first gesture of a dormant engine
func (e *AudioEngine) activate(k gesture.Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelActivate = nil
	if e.closed || !e.ensureContextLocked() {
		return
	}
	e.resumeLocked()
	e.log.Debug("audio activated", "gesture", k.String())

	if key := e.wantScene; key != "" {
		e.wantScene = ""
		if e.enabled {
			e.scenes.Start(key)
		}
	}
}

func (e *AudioEngine) resumeLocked() {
	if e.cancelResume != nil {
		e.cancelResume()
		e.cancelResume = nil
	}
	if e.ctx != nil {
		e.ctx.Resume()
	}
}

// SetVolumes applies a partial update; NaN and infinite values are ignored, others clamped
// Disabling sound fades out the current ambience
func (e *AudioEngine) SetVolumes(u VolumeUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for name, v := range map[string]*float64{
		BusMaster:  u.Master,
		BusMusic:   u.Music,
		BusAmbient: u.Ambient,
		BusSfx:     u.Sfx,
	} {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		level := clamp01(*v)
		e.volumes[name] = level
		switch {
		case e.ctx == nil:
		case name == BusAmbient:
			// the scene controller owns the ambient bus envelope
			e.buses[name].level = level
			e.scenes.SetLevel(level)
		default:
			e.buses[name].set(level, e.ctx.CurrentTime())
		}
	}

	if u.Enabled != nil && *u.Enabled != e.enabled {
		e.enabled = *u.Enabled
		e.log.Debug("sound enabled changed", "enabled", e.enabled)
		if !e.enabled {
			e.wantScene = ""
			if e.scenes != nil {
				e.scenes.Stop(true)
			}
		}
	}
}

// ApplySettings pushes the state store's settings object
func (e *AudioEngine) ApplySettings(s Settings) {
	e.SetVolumes(s.Update())
}

// StartAmbient begins or swaps the scene ambience
// Disabled engines ignore it. Unlike the other operations it is not a plain no-op without a context:
// the key is remembered and the scene starts once activation builds the graph
func (e *AudioEngine) StartAmbient(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.enabled || e.unavailable {
		return
	}
	if e.scenes == nil {
		e.wantScene = key
		return
	}
	e.scenes.Start(key)
}

// StopAmbient silences the scene ambience, fading first when fade is set
func (e *AudioEngine) StopAmbient(fade bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wantScene = ""
	if e.scenes != nil {
		e.scenes.Stop(fade)
	}
}

// PlaySfx fires a one-shot cue; unknown kinds play the click
func (e *AudioEngine) PlaySfx(kind string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.enabled || e.player == nil {
		return
	}
	e.player.Play(kind)
}

// CurrentAmbient returns the scene playing or about to play, "" when idle
func (e *AudioEngine) CurrentAmbient() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scenes == nil {
		return e.wantScene
	}
	return e.scenes.Key()
}

// Enabled reports the sound enabled flag
func (e *AudioEngine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Volume returns the stored level of a bus
func (e *AudioEngine) Volume(bus string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volumes[bus]
}

// Bus returns a bus by name; nil while dormant
func (e *AudioEngine) Bus(name string) *Bus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buses[name]
}

// Context returns the audio context; nil while dormant
func (e *AudioEngine) Context() *graph.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// Available reports whether output has not failed
func (e *AudioEngine) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.unavailable
}

// Stats is a snapshot for status displays
type Stats struct {
	State       string
	Scene       string
	Generations int
	Voices      int
	LiveNodes   int
	Reduction   float64
	Backend     string
}

// Stats returns a snapshot of the engine state
func (e *AudioEngine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{State: "dormant", Scene: e.wantScene}
	if e.unavailable {
		s.State = "unavailable"
	}
	if e.ctx == nil {
		return s
	}
	s.State = e.ctx.State().String()
	s.Scene = e.scenes.Key()
	s.Generations = e.scenes.Generations()
	s.Voices = e.player.Active()
	s.LiveNodes = e.ctx.Live()
	s.Reduction = e.comp.Reduction()
	s.Backend = e.out.Name()
	return s
}

// Close tears everything down and releases the device; later calls are no-ops
func (e *AudioEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.cancelActivate != nil {
		e.cancelActivate()
		e.cancelActivate = nil
	}
	if e.cancelResume != nil {
		e.cancelResume()
		e.cancelResume = nil
	}
	if e.scenes != nil {
		e.scenes.Stop(false)
	}
	if e.player != nil {
		e.player.Close()
	}
	if e.ctx != nil {
		e.ctx.Close()
	}
	out := e.out
	e.mu.Unlock()

	if out != nil {
		return out.Close()
	}
	return nil
}
