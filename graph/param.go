package graph

import (
	"math"
	"sort"

	"github.com/lixenwraith/ambient/constant"
)

const maxParam = math.MaxFloat32

// settled is the distance at which a target curve is treated as having arrived
const settled = 1e-7

type eventKind int

const (
	evSet eventKind = iota
	evLinear
	evExp
	evTarget
)

type event struct {
	kind  eventKind
	time  float64
	value float64
	tau   float64
}

// cursor is the committed automation state: the last settled value, or an active target curve
type cursor struct {
	t0, v0 float64
	tgtOn  bool
	tgt    float64
	tau    float64
}

func (c *cursor) at(t float64) float64 {
	if !c.tgtOn || t <= c.t0 {
		return c.v0
	}
	return c.tgt + (c.v0-c.tgt)*math.Exp(-(t-c.t0)/c.tau)
}

func (c *cursor) commit(e event) {
	switch e.kind {
	case evTarget:
		c.v0 = c.at(e.time)
		c.t0 = e.time
		c.tgtOn = true
		c.tgt = e.value
		c.tau = e.tau
	default:
		c.t0 = e.time
		c.v0 = e.value
		c.tgtOn = false
	}
}

// during returns the value at t while e (with e.time > t) is still pending
func (c *cursor) during(e event, t float64) float64 {
	switch e.kind {
	case evLinear:
		if e.time <= c.t0 {
			return e.value
		}
		return c.v0 + (e.value-c.v0)*(t-c.t0)/(e.time-c.t0)
	case evExp:
		if c.v0 <= 0 {
			return c.v0
		}
		if e.time <= c.t0 {
			return e.value
		}
		return c.v0 * math.Pow(e.value/c.v0, (t-c.t0)/(e.time-c.t0))
	default:
		return c.at(t)
	}
}

// Param is an automatable node parameter evaluated per sample
// Ramps start at the previous event, so callers pin the current value before ramping
type Param struct {
	ctx    *Context
	owner  *node
	name   string
	lo, hi float64

	cur    cursor
	events []event
	ins    []*node
	buf    []float64
}

// Name returns the parameter name
func (p *Param) Name() string {
	return p.name
}

// Value returns the automated value at the current context time, without modulation
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.clamp(p.valueAt(p.ctx.now()))
}

// ValueAt returns the automated value at time t, without modulation
func (p *Param) ValueAt(t float64) float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.clamp(p.valueAt(t))
}

// SetValue sets the value now; with no automation pending it replaces the base value
func (p *Param) SetValue(v float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	now := p.ctx.now()
	if len(p.events) == 0 {
		p.cur = cursor{t0: now, v0: v}
		return
	}
	p.insert(event{kind: evSet, time: now, value: v})
}

// SetValueAtTime schedules a step to v at t
func (p *Param) SetValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(event{kind: evSet, time: t, value: v})
}

// LinearRampToValueAtTime ramps linearly from the previous event to v at t
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(event{kind: evLinear, time: t, value: v})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to v at t
// Non-positive targets are replaced by constant.Epsilon
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	if v <= 0 || math.IsNaN(v) {
		v = constant.Epsilon
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(event{kind: evExp, time: t, value: v})
}

// SetTargetAtTime approaches v exponentially from t with the given time constant (seconds)
func (p *Param) SetTargetAtTime(v, t, timeConstant float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if timeConstant <= 0 {
		p.insert(event{kind: evSet, time: t, value: v})
		return
	}
	p.insert(event{kind: evTarget, time: t, value: v, tau: timeConstant})
}

// CancelScheduledValues removes every event at or after t
func (p *Param) CancelScheduledValues(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.truncate(t)
}

// CancelAndHoldAtTime removes events at or after t and holds the value the automation had at t
func (p *Param) CancelAndHoldAtTime(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	v := p.valueAt(t)
	p.truncate(t)
	p.insert(event{kind: evSet, time: t, value: v})
}

func (p *Param) truncate(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
	if t <= p.cur.t0 && p.cur.tgtOn {
		p.cur.tgtOn = false
	}
}

// insert keeps events sorted; equal times keep insertion order
func (p *Param) insert(e event) {
	if math.IsNaN(e.value) || math.IsNaN(e.time) {
		return
	}
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })

	if e.kind == evLinear || e.kind == evExp {
		afterTarget := false
		var predTime float64
		if i > 0 && p.events[i-1].kind == evTarget {
			afterTarget, predTime = true, p.events[i-1].time
		} else if i == 0 && p.cur.tgtOn {
			afterTarget, predTime = true, p.cur.t0
		}
		if afterTarget {
			at := math.Min(math.Max(p.ctx.now(), predTime), e.time)
			pin := event{kind: evSet, time: at, value: p.valueAt(at)}
			p.events = append(p.events, event{})
			copy(p.events[i+1:], p.events[i:])
			p.events[i] = pin
			i++
		}
	}

	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) valueAt(t float64) float64 {
	c := p.cur
	for _, e := range p.events {
		if e.time > t {
			return c.during(e, t)
		}
		c.commit(e)
	}
	return c.at(t)
}

// settle folds events that have fully elapsed by t into the cursor
func (p *Param) settle(t float64) {
	k := 0
	for k < len(p.events) && p.events[k].time <= t {
		p.cur.commit(p.events[k])
		k++
	}
	if k > 0 {
		n := copy(p.events, p.events[k:])
		p.events = p.events[:n]
	}
	if p.cur.tgtOn && t > p.cur.t0 && math.Abs(p.cur.at(t)-p.cur.tgt) < settled {
		p.cur = cursor{t0: t, v0: p.cur.tgt}
	}
}

func (p *Param) clamp(v float64) float64 {
	if v < p.lo {
		return p.lo
	}
	if v > p.hi {
		return p.hi
	}
	return v
}

// fill computes per-sample values for block, including audio-rate modulation
func (p *Param) fill(block uint64) []float64 {
	t0 := p.ctx.now()
	p.settle(t0)

	if len(p.events) == 0 && !p.cur.tgtOn {
		v := p.cur.v0
		for i := range p.buf {
			p.buf[i] = v
		}
	} else {
		dt := p.ctx.dt
		for i := range p.buf {
			p.buf[i] = p.valueAt(t0 + float64(i)*dt)
		}
	}

	for _, m := range p.ins {
		src := m.render(block)
		for i, v := range src {
			p.buf[i] += v
		}
	}

	for i, v := range p.buf {
		p.buf[i] = p.clamp(v)
	}
	return p.buf
}
