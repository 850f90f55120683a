package generator

import (
	"time"

	"github.com/lixenwraith/ambient/graph"
)

// BellNotes are the pitches a bell strike picks from
var BellNotes = Chord("D5", "E5", "G5", "A5", "B5")

// Bell strikes a sparse triangle bell that sags slightly in pitch
func Bell(in *Instance, sink graph.Node) {
	in.Every(7*time.Second, 6*time.Second, func() {
		base := BellNotes[int(in.rng.Float64()*float64(len(BellNotes)))%len(BellNotes)]
		ping{
			wave:    graph.Triangle,
			from:    base,
			to:      base * 0.985,
			bend:    2.5,
			peak:    0.06,
			attack:  0.01,
			release: 2.5,
		}.play(in, sink)
	})
}

// Drip is a short sine click falling in pitch
func Drip(in *Instance, sink graph.Node) {
	in.Every(4*time.Second, 3*time.Second, func() {
		base := between(in.rng, 1100, 1800)
		ping{
			wave:    graph.Sine,
			from:    base,
			to:      base * 0.4,
			bend:    0.12,
			peak:    0.07,
			attack:  0.005,
			release: 0.18,
		}.play(in, sink)
	})
}

// Sparkle is a high sine chime, sometimes answered a fifth up
func Sparkle(in *Instance, sink graph.Node) {
	in.Every(3*time.Second, 2500*time.Millisecond, func() {
		base := between(in.rng, 2000, 3600)
		chime := ping{
			wave:    graph.Sine,
			from:    base,
			peak:    0.028,
			attack:  0.01,
			release: 0.9,
		}
		chime.play(in, sink)

		if in.rng.Float64() < 0.35 {
			chime.from = base * 1.5
			chime.delay = 0.12
			chime.play(in, sink)
		}
	})
}

// Pulse is a low sine thump diving to sub-bass
func Pulse(in *Instance, sink graph.Node) {
	in.Every(5*time.Second, 3*time.Second, func() {
		ping{
			wave:    graph.Sine,
			from:    110,
			to:      38,
			bend:    0.6,
			peak:    0.11,
			attack:  0.01,
			release: 0.7,
		}.play(in, sink)
	})
}

// Echo feeds triangle pings into a delay with a highpassed feedback path
func Echo(in *Instance, sink graph.Node) {
	delay := in.Delay(0.42, 1)
	hp := in.Filter(graph.Highpass, 320, 0.707)
	fb := in.Gain(0.25)
	wet := in.Gain(0.6)

	delay.Connect(hp)
	hp.Connect(fb)
	fb.Connect(delay)
	delay.Connect(wet)
	wet.Connect(sink)

	in.Every(6*time.Second, 4*time.Second, func() {
		base := between(in.rng, 300, 600)
		ping{
			wave:    graph.Triangle,
			from:    base,
			to:      base * 0.5,
			bend:    0.4,
			peak:    0.05,
			attack:  0.005,
			release: 0.35,
		}.play(in, sink, delay)
	})
}
