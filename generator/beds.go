package generator

import (
	"time"

	"github.com/lixenwraith/ambient/constant"
	"github.com/lixenwraith/ambient/graph"
)

// Chord voicings for the pad
var (
	TitleChord    = Chord("D3", "F3", "A3")
	FallbackChord = Chord("C3", "G3", "B3")
)

// Pad builds a sustained sine chord with a slow breathing envelope
func Pad(chord []float64) Factory {
	return func(in *Instance, sink graph.Node) {
		t := in.Now()
		pad := in.Gain(0)
		pad.Gain.SetValueAtTime(0, t)
		pad.Gain.LinearRampToValueAtTime(0.09, t+4)
		pad.Connect(sink)

		for i, f := range chord {
			osc := in.Oscillator(graph.Sine, f)
			// spread voices a few cents apart
			osc.Detune.SetValue(float64(i-len(chord)/2) * 3)
			g := in.Gain(1 / float64(len(chord)))
			osc.Connect(g)
			g.Connect(pad)
			osc.Start(t)
		}

		in.Every(9*time.Second, 4*time.Second, func() {
			now := in.Now()
			pad.Gain.CancelAndHoldAtTime(now)
			pad.Gain.LinearRampToValueAtTime(0.09, now+3)
			pad.Gain.ExponentialRampToValueAtTime(0.02, now+11)
		})
	}
}

// River is looped white noise through a lowpass with a slow swell
func River(in *Instance, sink graph.Node) {
	t := in.Now()
	src := noiseBed(in, 0.5, t)
	lp := in.Filter(graph.Lowpass, 900, 0.7)
	out := in.Gain(0.16)
	src.Connect(lp)
	lp.Connect(out)
	out.Connect(sink)
	lfo(&in.Group, 0.05, 0.05, out.Gain, t)
}

// Crowd is pink noise through a bandpass whose centre drifts
func Crowd(in *Instance, sink graph.Node) {
	t := in.Now()
	buf := graph.PinkNoiseBuffer(in.rng, int(in.ctx.SampleRate()), constant.NoiseBufferSeconds, 0.11)
	src := in.Buffer(buf, true)
	bp := in.Filter(graph.Bandpass, 520, 0.9)
	out := in.Gain(0.14)
	src.Connect(bp)
	bp.Connect(out)
	out.Connect(sink)
	lfo(&in.Group, 0.09, 240, bp.Frequency, t)
	src.Start(t)
}

// Drone is two slightly detuned saws under a resonant lowpass
func Drone(in *Instance, sink graph.Node) {
	t := in.Now()
	lp := in.Filter(graph.Lowpass, 240, 1.2)
	out := in.Gain(0.05)
	lp.Connect(out)
	out.Connect(sink)

	for _, cents := range []float64{0, 7} {
		osc := in.Oscillator(graph.Sawtooth, 55)
		osc.Detune.SetValue(cents)
		osc.Connect(lp)
		osc.Start(t)
	}
}

// Wind is highpassed noise with gusting gain and cutoff
func Wind(in *Instance, sink graph.Node) {
	t := in.Now()
	src := noiseBed(in, 0.6, t)
	hp := in.Filter(graph.Highpass, 420, 0.707)
	out := in.Gain(0.045)
	src.Connect(hp)
	hp.Connect(out)
	out.Connect(sink)
	lfo(&in.Group, 0.13, 0.035, out.Gain, t)
	lfo(&in.Group, 0.07, 320, hp.Frequency, t)
}

// Hum is two close sines beating under a lowpass
func Hum(in *Instance, sink graph.Node) {
	t := in.Now()
	lp := in.Filter(graph.Lowpass, 380, 0.707)
	out := in.Gain(0.05)
	lp.Connect(out)
	out.Connect(sink)

	for _, f := range []float64{98, 98.7} {
		osc := in.Oscillator(graph.Sine, f)
		osc.Connect(lp)
		osc.Start(t)
	}
}

// Air is faint bandpassed noise with slow amplitude modulation
func Air(in *Instance, sink graph.Node) {
	t := in.Now()
	src := noiseBed(in, 0.3, t)
	bp := in.Filter(graph.Bandpass, 2600, 0.5)
	out := in.Gain(0.022)
	src.Connect(bp)
	bp.Connect(out)
	out.Connect(sink)
	lfo(&in.Group, 0.11, 0.014, out.Gain, t)
}
