package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/crash"
)

// Service runs the console inside a service hub
// Done is closed when the user quits
type Service struct {
	audio     *audio.Service
	newScreen func() (tcell.Screen, error)
	log       *slog.Logger

	screen tcell.Screen
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewService creates a console service on the process terminal
func NewService(a *audio.Service) *Service {
	return &Service{audio: a, newScreen: tcell.NewScreen, done: make(chan struct{})}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "console"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return []string{"audio"}
}

// Init implements service.Service
func (s *Service) Init(args ...any) error {
	for _, a := range args {
		if l, ok := a.(*slog.Logger); ok {
			s.log = l
		}
	}
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	engine := s.audio.Engine()
	if engine == nil {
		return errors.New("audio engine not initialized")
	}

	screen, err := s.newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	s.screen = screen

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	c := New(screen, engine, s.log)
	crash.SetCleanup(screen.Fini)
	crash.Go(func() {
		defer close(s.done)
		c.Run(ctx)
	})
	return nil
}

// Done is closed when the console loop exits
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.screen != nil {
			crash.SetCleanup(nil)
			s.screen.Fini()
		}
	})
	return nil
}
