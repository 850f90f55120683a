// Package control exposes the audio engine over HTTP for a UI or state layer
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/gesture"
	"github.com/lixenwraith/ambient/scene"
)

// Engine is the part of the audio engine the API drives
type Engine interface {
	SetVolumes(u audio.VolumeUpdate)
	ApplySettings(s audio.Settings)
	StartAmbient(key string)
	StopAmbient(fade bool)
	PlaySfx(kind string)
	CurrentAmbient() string
	Stats() audio.Stats
	Gestures() *gesture.Source
	Table() *scene.Table
}

// Config holds server configuration
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server is the HTTP control surface
type Server struct {
	config Config
	engine Engine
	router *chi.Mux
	logger *slog.Logger

	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

// New creates a server for engine; a nil logger discards
func New(engine Engine, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		config: cfg,
		engine: engine,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/scenes", s.handleScenes)

	r.Post("/gesture", s.handleGesture)
	r.Put("/volumes", s.handleVolumes)
	r.Put("/settings", s.handleSettings)

	r.Route("/ambient", func(r chi.Router) {
		r.Get("/", s.handleCurrent)
		r.Delete("/", s.handleStop)
		r.Post("/{key}", s.handleStart)
	})
	r.Post("/sfx/{kind}", s.handleSfx)
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the configured address and serves in the background
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errors.New("control server already running")
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	done := make(chan struct{})
	s.srv, s.ln, s.done = srv, ln, done

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("control server stopped", slog.Any("error", err))
		}
	}()

	s.logger.Info("control server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, empty before Listen
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops the server gracefully; it is a no-op when not running
func (s *Server) Shutdown() error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv, s.ln, s.done = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	<-done
	return err
}

// requestLogger logs each request through slog
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("took", time.Since(start)),
				slog.String("id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
