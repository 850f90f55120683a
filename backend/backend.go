// Package backend sends a rendered stream to an audio device
package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/ambient/constant"
)

// Backend names
const (
	NameAuto    = "auto"
	NameSpeaker = "speaker"
	NameOto     = "oto"
	NamePipe    = "pipe"
	NameNull    = "null"
)

// Sentinel errors
var (
	ErrNoAudioBackend = errors.New("no compatible audio backend found")
	ErrPipeClosed     = errors.New("audio pipe closed")
	ErrUnknownBackend = errors.New("unknown audio backend")
)

// Backend pulls a stream and plays it
type Backend interface {
	// Name identifies the backend that was opened
	Name() string
	// Attach starts pulling s; it may be called once
	Attach(s beep.Streamer) error
	// Close stops playback and releases the device
	Close() error
}

// Options configures an output
type Options struct {
	SampleRate int
	// Buffer is the device or write-chunk latency
	Buffer time.Duration
	// Trim is a final output gain in [0,1] applied after the graph
	Trim   float64
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = constant.AudioSampleRate
	}
	if o.Buffer <= 0 {
		o.Buffer = constant.AudioBufferDuration
	}
	if o.Trim <= 0 || o.Trim > 1 {
		o.Trim = 1
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Opener creates a backend by name
type Opener func(name string, opts Options) (Backend, error)

// Open creates the named backend; auto tries speaker, then a CLI pipe
func Open(name string, opts Options) (Backend, error) {
	opts = opts.withDefaults()

	switch name {
	case NameSpeaker:
		return openSpeaker(opts)
	case NameOto:
		return openOto(opts)
	case NamePipe:
		return openPipe(opts)
	case NameNull:
		return NewNull(opts), nil
	case NameAuto, "":
		b, err := openSpeaker(opts)
		if err == nil {
			return b, nil
		}
		opts.Logger.Debug("speaker unavailable", "error", err)

		b, err = openPipe(opts)
		if err == nil {
			return b, nil
		}
		opts.Logger.Debug("pipe unavailable", "error", err)
		return nil, ErrNoAudioBackend
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}
