package scene

import (
	"log/slog"
	"time"

	"github.com/lixenwraith/ambient/constant"
	"github.com/lixenwraith/ambient/generator"
	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

// generation is one started scene and the instance that owns its generators
type generation struct {
	key  string
	inst *generator.Instance
}

type retiree struct {
	timer    schedule.Timer
	deadline time.Time
}

type pendingStart struct {
	key   string
	timer schedule.Timer
}

// Controller runs at most one scene ambience on the ambient bus
// It tracks the playing generation, the generations fading out and a deferred start
// separately, so overlapping transitions never share or resurrect nodes
// Not safe for concurrent use; the owner serialises calls and scheduler callbacks
type Controller struct {
	ctx   *graph.Context
	bus   *graph.Gain
	table *Table
	sched schedule.Scheduler
	rng   graph.Rand
	level func() float64
	fade  time.Duration
	tau   float64
	log   *slog.Logger

	// audio time at which the current fade-in reaches the ambient level
	fadeInEnd float64

	playing  *generation
	retiring map[*generation]*retiree
	pending  *pendingStart
}

// Options configures a Controller
type Options struct {
	Table     *Table
	Scheduler schedule.Scheduler
	Rand      graph.Rand
	// Level returns the ambient volume a new scene fades up to
	Level func() float64
	Fade  time.Duration
	// Smoothing is the time constant for level changes outside a fade
	Smoothing float64
	Logger    *slog.Logger
}

// NewController creates an idle controller feeding bus
func NewController(ctx *graph.Context, bus *graph.Gain, opts Options) *Controller {
	if opts.Table == nil {
		opts.Table = DefaultTable()
	}
	if opts.Fade <= 0 {
		opts.Fade = constant.SceneFade
	}
	if opts.Level == nil {
		opts.Level = func() float64 { return constant.DefaultAmbientVolume }
	}
	if opts.Smoothing <= 0 {
		opts.Smoothing = constant.BusTimeConstant
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		ctx:      ctx,
		bus:      bus,
		table:    opts.Table,
		sched:    opts.Scheduler,
		rng:      opts.Rand,
		level:    opts.Level,
		fade:     opts.Fade,
		tau:      opts.Smoothing,
		log:      opts.Logger,
		retiring: make(map[*generation]*retiree),
	}
}

// Key returns the scene that is playing or about to play, "" when idle
func (c *Controller) Key() string {
	if c.pending != nil {
		return c.pending.key
	}
	if c.playing != nil {
		return c.playing.key
	}
	return ""
}

// Playing returns the key whose generators are running now, "" when none
func (c *Controller) Playing() string {
	if c.playing == nil {
		return ""
	}
	return c.playing.key
}

// Pending returns the key waiting for a fade-out to finish, "" when none
func (c *Controller) Pending() string {
	if c.pending == nil {
		return ""
	}
	return c.pending.key
}

// Generations returns the number of generations still owning nodes
func (c *Controller) Generations() int {
	n := len(c.retiring)
	if c.playing != nil {
		n++
	}
	return n
}

// Timers returns the timers held by live generators
func (c *Controller) Timers() int {
	n := 0
	if c.playing != nil {
		n += c.playing.inst.Timers()
	}
	for g := range c.retiring {
		n += g.inst.Timers()
	}
	return n
}

// SetLevel applies a new ambient volume to the bus
// A fade-in in progress is retargeted to end at v on schedule; during a fade-out or a
// deferred start nothing changes, the next start reads the level again
func (c *Controller) SetLevel(v float64) {
	if len(c.retiring) > 0 || c.pending != nil {
		return
	}
	v = clamp01(v)
	now := c.ctx.CurrentTime()
	p := c.bus.Gain
	if c.playing != nil && now < c.fadeInEnd {
		p.CancelAndHoldAtTime(now)
		p.LinearRampToValueAtTime(v, c.fadeInEnd)
		return
	}
	p.SetTargetAtTime(v, now, c.tau)
}

// Start plays key: a playing scene fades out and is torn down before key starts
func (c *Controller) Start(key string) {
	if key == c.Key() {
		return
	}
	c.cancelPending()

	if c.playing != nil {
		c.retire(c.playing)
		c.playing = nil
	}

	if len(c.retiring) == 0 {
		c.startNow(key)
		return
	}

	var last time.Time
	for _, r := range c.retiring {
		if r.deadline.After(last) {
			last = r.deadline
		}
	}
	p := &pendingStart{key: key}
	p.timer = c.sched.AfterFunc(last.Sub(c.sched.Now()), func() {
		if c.pending != p {
			return
		}
		c.pending = nil
		for g := range c.retiring {
			c.teardown(g)
		}
		c.startNow(key)
	})
	c.pending = p
	c.log.Debug("scene start deferred", "key", key, "retiring", len(c.retiring))
}

// Stop ends the ambience; fade ramps the bus down first, otherwise teardown is immediate
func (c *Controller) Stop(fade bool) {
	c.cancelPending()

	if fade {
		if c.playing != nil {
			c.retire(c.playing)
			c.playing = nil
		}
		return
	}

	for g := range c.retiring {
		c.teardown(g)
	}
	if c.playing != nil {
		g := c.playing
		c.playing = nil
		g.inst.Dispose()
		c.log.Debug("scene stopped", "key", g.key)
	}
	now := c.ctx.CurrentTime()
	c.bus.Gain.CancelAndHoldAtTime(now)
	c.bus.Gain.SetValueAtTime(constant.Epsilon, now)
}

func (c *Controller) startNow(key string) {
	inst := generator.NewInstance(c.ctx, c.sched, c.rng)
	names := c.table.Resolve(key)
	for _, name := range names {
		f, ok := generator.Lookup(name)
		if !ok {
			c.log.Warn("scene references unknown generator", "key", key, "generator", name)
			continue
		}
		f(inst, c.bus)
	}

	now := c.ctx.CurrentTime()
	p := c.bus.Gain
	p.CancelAndHoldAtTime(now)
	p.SetValueAtTime(constant.Epsilon, now)
	c.fadeInEnd = now + c.fade.Seconds()
	p.LinearRampToValueAtTime(clamp01(c.level()), c.fadeInEnd)

	c.playing = &generation{key: key, inst: inst}
	c.log.Debug("scene started", "key", key, "generators", names)
}

// retire fades the bus out and schedules teardown of g at the end of the fade
func (c *Controller) retire(g *generation) {
	now := c.ctx.CurrentTime()
	p := c.bus.Gain
	p.CancelAndHoldAtTime(now)
	p.LinearRampToValueAtTime(constant.Epsilon, now+c.fade.Seconds())

	r := &retiree{deadline: c.sched.Now().Add(c.fade)}
	r.timer = c.sched.AfterFunc(c.fade, func() {
		if _, ok := c.retiring[g]; ok {
			c.teardown(g)
		}
	})
	c.retiring[g] = r
	c.log.Debug("scene retiring", "key", g.key)
}

func (c *Controller) teardown(g *generation) {
	if r, ok := c.retiring[g]; ok {
		r.timer.Stop()
		delete(c.retiring, g)
	}
	g.inst.Dispose()
	c.log.Debug("scene torn down", "key", g.key)
}

func (c *Controller) cancelPending() {
	if c.pending == nil {
		return
	}
	c.pending.timer.Stop()
	c.pending = nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
