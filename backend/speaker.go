package backend

import (
	"fmt"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// speakerBackend plays through the beep speaker package
type speakerBackend struct {
	opts Options

	mu       sync.Mutex
	attached bool
	closed   bool
}

func openSpeaker(opts Options) (Backend, error) {
	rate := beep.SampleRate(opts.SampleRate)
	if err := speaker.Init(rate, rate.N(opts.Buffer*2)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	return &speakerBackend{opts: opts}, nil
}

func (b *speakerBackend) Name() string {
	return NameSpeaker
}

func (b *speakerBackend) Attach(s beep.Streamer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrPipeClosed
	}
	if b.attached {
		return fmt.Errorf("speaker: stream already attached")
	}
	b.attached = true
	speaker.Play(trimmed(s, b.opts.Trim))
	return nil
}

func (b *speakerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	speaker.Clear()
	speaker.Close()
	return nil
}

// trimmed scales s by a linear gain
func trimmed(s beep.Streamer, gain float64) beep.Streamer {
	if gain >= 1 {
		return s
	}
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
