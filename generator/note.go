package generator

import (
	"math"
	"strings"
)

// MIDI note 69 is A4 at 440Hz, equal temperament
const (
	midiA4 = 69
	freqA4 = 440.0
)

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// NoteFreq returns the frequency in Hz for a MIDI note number, 0 when out of range
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return freqA4 * math.Exp2(float64(midi-midiA4)/12)
}

// Note returns the frequency of a scientific pitch name such as "D3", "F#4" or "Bb2"
// Unparseable names return 0
func Note(name string) float64 {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0
	}
	step, ok := semitones[name[0]&^0x20]
	if !ok {
		return 0
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		step++
		rest = rest[1:]
	case 'b':
		step--
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return 0
	}
	octave := 0
	neg := false
	if rest[0] == '-' {
		neg = true
		rest = rest[1:]
	}
	for _, c := range []byte(rest) {
		if c < '0' || c > '9' {
			return 0
		}
		octave = octave*10 + int(c-'0')
	}
	if neg {
		octave = -octave
	}
	return NoteFreq((octave+1)*12 + step)
}

// Chord returns the frequencies of the named notes
func Chord(names ...string) []float64 {
	freqs := make([]float64, len(names))
	for i, n := range names {
		freqs[i] = Note(n)
	}
	return freqs
}
