package backend

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// Null pulls the stream in real time and discards it
// Headless hosts keep the graph clock moving without a device
type Null struct {
	opts   Options
	frames atomic.Uint64

	once sync.Once
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewNull creates a discarding backend
func NewNull(opts Options) *Null {
	return &Null{opts: opts.withDefaults(), stop: make(chan struct{})}
}

// Name implements Backend
func (n *Null) Name() string {
	return NameNull
}

// Frames returns the number of frames pulled
func (n *Null) Frames() uint64 {
	return n.frames.Load()
}

// Attach implements Backend
func (n *Null) Attach(s beep.Streamer) error {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ticker := time.NewTicker(n.opts.Buffer)
		defer ticker.Stop()

		buf := make([][2]float64, beep.SampleRate(n.opts.SampleRate).N(n.opts.Buffer))
		for {
			select {
			case <-n.stop:
				return
			case <-ticker.C:
				got, ok := s.Stream(buf)
				n.frames.Add(uint64(got))
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Close implements Backend
func (n *Null) Close() error {
	n.once.Do(func() { close(n.stop) })
	n.wg.Wait()
	return nil
}
