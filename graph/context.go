package graph

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/ambient/constant"
)

// State is the run state of a Context
type State int

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context owns a signal graph and renders it in fixed blocks
// It implements beep.Streamer; the output backend pulls it from its own goroutine
// while control calls mutate the graph under the same lock
type Context struct {
	mu sync.Mutex

	rate  beep.SampleRate
	dt    float64
	state State

	frame uint64 // start frame of the block being rendered
	block uint64

	dest    *Destination
	live    map[*node]struct{}
	created uint64

	pending    []float64
	pendingPos int
	silence    []float64
}

// NewContext creates a suspended context at the given sample rate
func NewContext(rate int) *Context {
	if rate <= 0 {
		rate = constant.AudioSampleRate
	}
	c := &Context{
		rate:    beep.SampleRate(rate),
		dt:      1 / float64(rate),
		live:    make(map[*node]struct{}),
		silence: make([]float64, constant.BlockSize),
		pending: make([]float64, constant.BlockSize),
	}
	c.pendingPos = len(c.pending)
	c.dest = &Destination{}
	c.dest.init(c, "destination", c.dest)
	return c
}

// SampleRate returns the rate as beep.SampleRate
func (c *Context) SampleRate() beep.SampleRate {
	return c.rate
}

// Destination returns the terminal node
func (c *Context) Destination() *Destination {
	return c.dest
}

// State returns the current run state
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resume starts the clock; no-op once closed
func (c *Context) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSuspended {
		c.state = StateRunning
	}
}

// Suspend stops the clock; rendering emits silence
func (c *Context) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StateSuspended
	}
}

// Close releases every live node and ends the stream
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	for n := range c.live {
		n.disposeLocked()
	}
}

// CurrentTime returns seconds of audio rendered
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

// Created returns the number of nodes ever created
func (c *Context) Created() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

// Live returns the number of created nodes not yet disposed
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// Stream implements beep.Streamer
func (c *Context) Stream(samples [][2]float64) (n int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return 0, false
	}
	for i := range samples {
		if c.state != StateRunning {
			samples[i] = [2]float64{}
			continue
		}
		v := c.next()
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (c *Context) Err() error {
	return nil
}

// Render produces n mono frames regardless of run state, for offline use
func (c *Context) Render(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]float64, n)
	if c.state == StateClosed {
		return out
	}
	for i := range out {
		out[i] = c.next()
	}
	return out
}

// next returns one rendered frame, rendering a new block when the current one is drained
func (c *Context) next() float64 {
	if c.pendingPos >= len(c.pending) {
		c.renderBlock()
		c.pendingPos = 0
	}
	v := c.pending[c.pendingPos]
	c.pendingPos++
	return v
}

func (c *Context) renderBlock() {
	out := c.dest.render(c.block)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		c.pending[i] = v
	}
	c.frame += constant.BlockSize
	c.block++
}

// now is the start time of the block being rendered; callers hold mu
func (c *Context) now() float64 {
	return float64(c.frame) * c.dt
}

func (c *Context) register(n *node) {
	c.live[n] = struct{}{}
	c.created++
}

func (c *Context) unregister(n *node) {
	delete(c.live, n)
}
