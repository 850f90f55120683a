package graph

// Rand is the random source consumed by noise fills and generators
// *math/rand/v2.Rand satisfies it; tests supply fixed sequences
type Rand interface {
	Float64() float64
}

// NoiseBuffer fills seconds of uniform white noise in [-amp, amp]
func NoiseBuffer(r Rand, rate int, seconds, amp float64) []float64 {
	buf := make([]float64, int(seconds*float64(rate)))
	for i := range buf {
		buf[i] = (r.Float64()*2 - 1) * amp
	}
	return buf
}

// PinkNoiseBuffer fills seconds of pink-like noise using a three-pole recursive shaper
func PinkNoiseBuffer(r Rand, rate int, seconds, scale float64) []float64 {
	buf := make([]float64, int(seconds*float64(rate)))
	var b0, b1, b2 float64
	for i := range buf {
		white := r.Float64()*2 - 1
		b0 = 0.99765*b0 + white*0.0990460
		b1 = 0.96300*b1 + white*0.2965164
		b2 = 0.57000*b2 + white*1.0526913
		buf[i] = (b0 + b1 + b2 + white*0.1848) * scale
	}
	return buf
}
