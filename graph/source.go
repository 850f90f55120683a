package graph

import (
	"math"
)

// Waveform selects the oscillator shape
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// schedule tracks the start/stop window of a source
type schedule struct {
	started bool
	startAt float64
	stopAt  float64
}

func (s *schedule) start(t float64) {
	if s.started {
		return
	}
	s.started = true
	s.startAt = t
	s.stopAt = math.Inf(1)
}

// stop is a no-op for never-started sources and never extends an earlier stop
func (s *schedule) stop(t float64) {
	if !s.started {
		return
	}
	if t < s.stopAt {
		s.stopAt = t
	}
}

func (s *schedule) active(t float64) bool {
	return s.started && t >= s.startAt && t < s.stopAt
}

// Oscillator is a periodic source with automatable frequency and detune
type Oscillator struct {
	node
	schedule

	Type      Waveform
	Frequency *Param
	Detune    *Param // cents

	phase float64
}

// NewOscillator creates a stopped oscillator
func (c *Context) NewOscillator(w Waveform, freq float64) *Oscillator {
	c.mu.Lock()
	defer c.mu.Unlock()

	o := &Oscillator{Type: w}
	o.init(c, "oscillator", o)
	nyquist := float64(c.rate) / 2
	o.Frequency = o.newParam("frequency", freq, -nyquist, nyquist)
	o.Detune = o.newParam("detune", 0, -maxParam, maxParam)
	c.register(&o.node)
	return o
}

// Start schedules playback at t; repeated starts are ignored
func (o *Oscillator) Start(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if o.disposed {
		return
	}
	o.start(t)
}

// Stop schedules the end of playback at t
func (o *Oscillator) Stop(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.stop(t)
}

func (o *Oscillator) stopNow() {
	o.stop(o.ctx.now())
}

func (o *Oscillator) process(block uint64) {
	clear(o.out)
	if !o.started {
		return
	}
	freq := o.Frequency.fill(block)
	detune := o.Detune.fill(block)
	t0 := o.ctx.now()
	dt := o.ctx.dt

	for i := range o.out {
		if !o.active(t0 + float64(i)*dt) {
			continue
		}
		f := freq[i]
		if detune[i] != 0 {
			f *= math.Exp2(detune[i] / 1200)
		}
		o.out[i] = waveSample(o.Type, o.phase)
		o.phase += f * dt
		o.phase -= math.Floor(o.phase)
	}
}

// waveSample evaluates a unit waveform at phase in [0,1)
func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case Sawtooth:
		return 2.0 * (phase - 0.5)
	case Triangle:
		return 1 - 4*math.Abs(phase-0.25-math.Floor(phase+0.25))
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// BufferSource plays a mono buffer, optionally looped
type BufferSource struct {
	node
	schedule

	Buffer []float64
	Loop   bool

	pos int
}

// NewBufferSource creates a stopped source over buf
func (c *Context) NewBufferSource(buf []float64, loop bool) *BufferSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := &BufferSource{Buffer: buf, Loop: loop}
	b.init(c, "buffer-source", b)
	c.register(&b.node)
	return b
}

// Start schedules playback at t; repeated starts are ignored
func (b *BufferSource) Start(t float64) {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	if b.disposed {
		return
	}
	b.start(t)
}

// Stop schedules the end of playback at t
func (b *BufferSource) Stop(t float64) {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	b.stop(t)
}

func (b *BufferSource) stopNow() {
	b.stop(b.ctx.now())
}

func (b *BufferSource) process(block uint64) {
	clear(b.out)
	if !b.started || len(b.Buffer) == 0 {
		return
	}
	t0 := b.ctx.now()
	dt := b.ctx.dt

	for i := range b.out {
		if !b.active(t0 + float64(i)*dt) {
			continue
		}
		if b.pos >= len(b.Buffer) {
			if !b.Loop {
				return
			}
			b.pos = 0
		}
		b.out[i] = b.Buffer[b.pos]
		b.pos++
	}
}
