package graph

import (
	"math"
)

// FilterType selects the biquad response
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

func (f FilterType) String() string {
	switch f {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// BiquadFilter is a second-order RBJ filter with automatable cutoff and Q
type BiquadFilter struct {
	node

	Type      FilterType
	Frequency *Param
	Q         *Param

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
	lastF, lastQ       float64
}

// NewBiquadFilter creates a filter at cutoff freq (Hz) with quality q
func (c *Context) NewBiquadFilter(t FilterType, freq, q float64) *BiquadFilter {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := &BiquadFilter{Type: t, lastF: -1, lastQ: -1}
	f.init(c, "biquad", f)
	nyquist := float64(c.rate) / 2
	f.Frequency = f.newParam("frequency", freq, 10, nyquist*0.999)
	f.Q = f.newParam("Q", q, 0.0001, 1000)
	c.register(&f.node)
	return f
}

// coefficients recomputes the RBJ cookbook coefficients when cutoff or Q moved
func (f *BiquadFilter) coefficients(freq, q float64) {
	if freq == f.lastF && q == f.lastQ {
		return
	}
	f.lastF, f.lastQ = freq, q

	w0 := 2 * math.Pi * freq / float64(f.ctx.rate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2 float64
	switch f.Type {
	case Highpass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}
	a0 := 1 + alpha
	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *BiquadFilter) process(block uint64) {
	in := f.pullInputs(block)
	freq := f.Frequency.fill(block)
	q := f.Q.fill(block)

	for i, x := range in {
		f.coefficients(freq[i], q[i])
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		if math.Abs(y) < 1e-30 {
			y = 0
		}
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		f.out[i] = y
	}
}
