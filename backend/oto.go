package backend

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
)

// otoBackend plays float32 frames through an oto context
type otoBackend struct {
	opts Options
	ctx  *oto.Context

	mu     sync.Mutex
	player *oto.Player
	closed bool
}

func openOto(opts Options) (Backend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.Buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready
	return &otoBackend{opts: opts, ctx: ctx}, nil
}

func (b *otoBackend) Name() string {
	return NameOto
}

func (b *otoBackend) Attach(s beep.Streamer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrPipeClosed
	}
	if b.player != nil {
		return fmt.Errorf("oto: stream already attached")
	}
	b.player = b.ctx.NewPlayer(newStreamReader(s, formatFloat32, b.opts.Trim))
	b.player.Play()
	return nil
}

func (b *otoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.player != nil {
		if err := b.player.Close(); err != nil {
			return fmt.Errorf("oto player close: %w", err)
		}
	}
	return b.ctx.Suspend()
}
