package control

import (
	"errors"
	"log/slog"

	"github.com/lixenwraith/ambient/audio"
)

// Service runs the control server inside a service hub, after the audio service
type Service struct {
	audio  *audio.Service
	config Config
	logger *slog.Logger
	server *Server
}

// NewService creates a control service bound to the audio service's engine
func NewService(a *audio.Service, cfg Config) *Service {
	return &Service{audio: a, config: cfg}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "control"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return []string{"audio"}
}

// Init implements service.Service
func (s *Service) Init(args ...any) error {
	for _, a := range args {
		if l, ok := a.(*slog.Logger); ok {
			s.logger = l
		}
	}
	engine := s.audio.Engine()
	if engine == nil {
		return errors.New("audio engine not initialized")
	}
	s.server = New(engine, s.config, s.logger)
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	return s.server.Listen()
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown()
}

// Server returns the server; nil before Init
func (s *Service) Server() *Server {
	return s.server
}
