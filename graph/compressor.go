package graph

import (
	"math"
)

// Compressor is a soft-knee feed-forward dynamics compressor with automatic makeup gain
type Compressor struct {
	node

	Threshold *Param // dB
	Knee      *Param // dB
	Ratio     *Param
	Attack    *Param // seconds
	Release   *Param // seconds

	reduction float64 // smoothed gain reduction, dB (<= 0)
}

// NewCompressor creates a compressor with the given static curve and timing
func (c *Context) NewCompressor(threshold, knee, ratio, attack, release float64) *Compressor {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := &Compressor{}
	k.init(c, "compressor", k)
	k.Threshold = k.newParam("threshold", threshold, -100, 0)
	k.Knee = k.newParam("knee", knee, 0, 40)
	k.Ratio = k.newParam("ratio", ratio, 1, 20)
	k.Attack = k.newParam("attack", attack, 0, 1)
	k.Release = k.newParam("release", release, 0, 1)
	c.register(&k.node)
	return k
}

// Reduction returns the current gain reduction in dB
func (k *Compressor) Reduction() float64 {
	k.ctx.mu.Lock()
	defer k.ctx.mu.Unlock()
	return k.reduction
}

// staticCurve maps input level to output level (dB) with a quadratic knee
func staticCurve(x, threshold, knee, ratio float64) float64 {
	over := x - threshold
	switch {
	case knee > 0 && 2*math.Abs(over) <= knee:
		d := over + knee/2
		return x + (1/ratio-1)*d*d/(2*knee)
	case 2*over < -knee || over <= 0:
		return x
	default:
		return threshold + over/ratio
	}
}

func (k *Compressor) process(block uint64) {
	in := k.pullInputs(block)

	// parameters are k-rate
	threshold := k.Threshold.fill(block)[0]
	knee := k.Knee.fill(block)[0]
	ratio := k.Ratio.fill(block)[0]
	attack := k.Attack.fill(block)[0]
	release := k.Release.fill(block)[0]

	rate := float64(k.ctx.rate)
	aCoef := smoothing(attack, rate)
	rCoef := smoothing(release, rate)

	fullRange := staticCurve(0, threshold, knee, ratio)
	makeup := -0.6 * fullRange

	for i, x := range in {
		level := 20 * math.Log10(math.Abs(x)+1e-12)
		target := staticCurve(level, threshold, knee, ratio) - level
		if target < k.reduction {
			k.reduction = aCoef*k.reduction + (1-aCoef)*target
		} else {
			k.reduction = rCoef*k.reduction + (1-rCoef)*target
		}
		k.out[i] = x * math.Pow(10, (k.reduction+makeup)/20)
	}
}

func smoothing(seconds, rate float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Exp(-1 / (seconds * rate))
}
