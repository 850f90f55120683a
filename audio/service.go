package audio

import (
	"log/slog"
	"sync/atomic"

	"github.com/lixenwraith/ambient/gesture"
)

// Service wraps AudioEngine as a service.Service
// A missing device never fails startup; the engine just stays silent
type Service struct {
	cfg      *Config
	opts     []Option
	engine   *AudioEngine
	disabled atomic.Bool
}

// NewService creates an audio service; opts are passed to the engine
func NewService(cfg *Config, opts ...Option) *Service {
	return &Service{cfg: cfg, opts: opts}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args: *gesture.Source to share the host's activation events, *slog.Logger
func (s *Service) Init(args ...any) error {
	for _, a := range args {
		switch v := a.(type) {
		case *gesture.Source:
			s.opts = append(s.opts, WithGestures(v))
		case *slog.Logger:
			s.opts = append(s.opts, WithLogger(v))
		}
	}
	s.engine = NewAudioEngine(s.cfg, s.opts...)
	return nil
}

// Start implements service.Service
// The context itself waits for the first gesture; an eager engine that failed is marked disabled
func (s *Service) Start() error {
	if s.engine == nil {
		s.disabled.Store(true)
		return nil
	}
	if s.cfg != nil && s.cfg.EagerContext && !s.engine.Available() {
		s.disabled.Store(true)
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Engine returns the engine; nil before Init
func (s *Service) Engine() *AudioEngine {
	return s.engine
}

// Disabled reports whether startup found no usable output
func (s *Service) Disabled() bool {
	return s.disabled.Load()
}
