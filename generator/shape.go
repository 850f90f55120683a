package generator

import (
	"time"

	"github.com/lixenwraith/ambient/constant"
	"github.com/lixenwraith/ambient/graph"
)

// pluck shapes a percussive envelope starting at t: linear attack to peak, exponential tail
func pluck(p *graph.Param, t, peak, attack, release float64) {
	p.SetValueAtTime(0, t)
	p.LinearRampToValueAtTime(peak, t+attack)
	p.ExponentialRampToValueAtTime(constant.Epsilon, t+attack+release)
}

// glide pins freq at t and bends it exponentially to target over dur
func glide(p *graph.Param, from, to, t, dur float64) {
	p.SetValueAtTime(from, t)
	p.ExponentialRampToValueAtTime(to, t+dur)
}

// lfo adds a sine of the given rate and depth to target
func lfo(g *Group, rate, depth float64, target *graph.Param, t float64) {
	osc := g.Oscillator(graph.Sine, rate)
	amt := g.Gain(depth)
	osc.Connect(amt)
	amt.ConnectParam(target)
	osc.Start(t)
}

// noiseBed returns a looping white-noise source started at t
func noiseBed(in *Instance, amp, t float64) *graph.BufferSource {
	buf := graph.NoiseBuffer(in.rng, int(in.ctx.SampleRate()), constant.NoiseBufferSeconds, amp)
	src := in.Buffer(buf, true)
	src.Start(t)
	return src
}

// between draws uniformly from [lo, hi)
func between(r graph.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// seconds converts to a timer duration
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// stopTail keeps a source running past its envelope so the tail decays fully
const stopTail = 0.09

// ping is one self-disposing enveloped tone
type ping struct {
	wave            graph.Waveform
	from, to        float64 // glide endpoints; to == 0 holds the pitch
	bend            float64 // glide time
	peak            float64
	attack, release float64
	delay           float64 // audio-time offset from now
}

// play synthesises p into the given destinations and returns its voice
func (p ping) play(in *Instance, dst ...graph.Node) *Group {
	t := in.Now() + p.delay
	end := t + p.attack + p.release
	v := in.Voice(seconds(p.delay+p.attack+p.release) + 100*time.Millisecond)

	osc := v.Oscillator(p.wave, p.from)
	if p.to > 0 {
		glide(osc.Frequency, p.from, p.to, t, p.bend)
	}
	env := v.Gain(0)
	pluck(env.Gain, t, p.peak, p.attack, p.release)

	osc.Connect(env)
	for _, d := range dst {
		env.Connect(d)
	}
	osc.Start(t)
	osc.Stop(end + stopTail)
	return v
}
