package graph

import (
	"math"

	"github.com/lixenwraith/ambient/constant"
)

// Delay is a fractional delay line; it may close a feedback cycle
type Delay struct {
	node

	DelayTime *Param

	ring []float64
	w    int
}

// NewDelay creates a delay line holding up to maxSeconds (bounded by constant.MaxDelaySeconds)
func (c *Context) NewDelay(delay, maxSeconds float64) *Delay {
	c.mu.Lock()
	defer c.mu.Unlock()

	if maxSeconds <= 0 || maxSeconds > constant.MaxDelaySeconds {
		maxSeconds = constant.MaxDelaySeconds
	}
	d := &Delay{
		ring: make([]float64, int(maxSeconds*float64(c.rate))+2*constant.BlockSize+2),
	}
	d.init(c, "delay", d)
	d.DelayTime = d.newParam("delayTime", delay, 0, maxSeconds)
	c.register(&d.node)
	return d
}

// process reads the whole block from history first, publishing the output before
// pulling inputs so a feedback path through this node sees this block's output
func (d *Delay) process(block uint64) {
	times := d.DelayTime.fill(block)
	size := len(d.ring)
	rate := float64(d.ctx.rate)
	minDelay := float64(constant.BlockSize)
	maxDelay := float64(size - constant.BlockSize - 1)

	for i := range d.out {
		ds := math.Min(math.Max(times[i]*rate, minDelay), maxDelay)
		rp := float64(d.w+i) - ds
		for rp < 0 {
			rp += float64(size)
		}
		i0 := int(rp)
		frac := rp - float64(i0)
		a := d.ring[i0%size]
		b := d.ring[(i0+1)%size]
		d.out[i] = a + (b-a)*frac
	}
	d.stamp = block + 1

	in := d.pullInputs(block)
	for i, v := range in {
		d.ring[(d.w+i)%size] = v
	}
	d.w = (d.w + constant.BlockSize) % size
}
