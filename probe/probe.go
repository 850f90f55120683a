// Package probe measures rendered audio: levels and spectral shape
package probe

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// WindowSize is the analysis frame length in samples
const WindowSize = 4096

// Band edges in Hz
const (
	bassEdge = 250.0
	midEdge  = 2000.0
)

// Report summarises a block of mono audio
type Report struct {
	Samples    int
	Peak       float64
	RMS        float64
	Centroid   float64 // Hz, magnitude weighted
	DominantHz float64
	Bass       float64 // share of spectral magnitude below bassEdge
	Mid        float64
	High       float64
}

// PeakDB returns the peak in dBFS
func (r Report) PeakDB() float64 {
	return DB(r.Peak)
}

// RMSDB returns the RMS level in dBFS
func (r Report) RMSDB() float64 {
	return DB(r.RMS)
}

func (r Report) String() string {
	return fmt.Sprintf("peak %.1f dBFS  rms %.1f dBFS  centroid %.0f Hz  dominant %.0f Hz  bands %.2f/%.2f/%.2f",
		r.PeakDB(), r.RMSDB(), r.Centroid, r.DominantHz, r.Bass, r.Mid, r.High)
}

// DB converts a linear amplitude to decibels, floored at -120
func DB(v float64) float64 {
	if v <= 1e-6 {
		return -120
	}
	return 20 * math.Log10(v)
}

// Analyze measures samples at the given rate
// The spectrum is averaged over Hann-windowed frames; input shorter than a frame is zero padded
func Analyze(samples []float64, rate int) Report {
	r := Report{Samples: len(samples)}
	if len(samples) == 0 || rate <= 0 {
		return r
	}

	var sum float64
	for _, v := range samples {
		if a := math.Abs(v); a > r.Peak {
			r.Peak = a
		}
		sum += v * v
	}
	r.RMS = math.Sqrt(sum / float64(len(samples)))

	mags := Spectrum(samples)
	binHz := float64(rate) / WindowSize

	var total, weighted, best float64
	var bands [3]float64
	for i, m := range mags {
		if i == 0 {
			continue
		}
		hz := float64(i) * binHz
		total += m
		weighted += m * hz
		if m > best {
			best, r.DominantHz = m, hz
		}
		switch {
		case hz < bassEdge:
			bands[0] += m
		case hz < midEdge:
			bands[1] += m
		default:
			bands[2] += m
		}
	}
	if total > 0 {
		r.Centroid = weighted / total
		r.Bass, r.Mid, r.High = bands[0]/total, bands[1]/total, bands[2]/total
	}
	return r
}

// Spectrum returns the mean magnitude of bins 0..WindowSize/2 over half-overlapping frames
func Spectrum(samples []float64) []float64 {
	mags := make([]float64, WindowSize/2+1)
	frame := make([]float64, WindowSize)

	frames := 0
	for start := 0; start == 0 || start+WindowSize <= len(samples); start += WindowSize / 2 {
		for i := range frame {
			v := 0.0
			if start+i < len(samples) {
				v = samples[start+i]
			}
			frame[i] = v * hann(i)
		}
		spec := fft.FFTReal(frame)
		for i := range mags {
			mags[i] += cmplx.Abs(spec[i])
		}
		frames++
	}

	for i := range mags {
		mags[i] /= float64(frames)
	}
	return mags
}

func hann(i int) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(WindowSize-1)))
}
