package service

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Hub owns registered services and runs them in dependency order
type Hub struct {
	mu       sync.RWMutex
	log      *slog.Logger
	services map[string]Service
	sorted   []string // dependency order, computed on InitAll
	started  []string // services that completed Start, for rollback
}

// NewHub creates an empty hub; a nil logger discards
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		log:      log,
		services: make(map[string]Service),
	}
}

// Register adds a service
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}

	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service as T, panicking when missing or mistyped
func MustGet[T any](h *Hub, name string) T {
	h.mu.RLock()
	svc, ok := h.services[name]
	h.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}

	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll passes args to every service's Init in dependency order
// On failure the already initialized services are stopped in reverse order
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sorted == nil {
		order, err := h.topologicalSort()
		if err != nil {
			return err
		}
		h.sorted = order
	}

	var initialized []string
	for _, name := range h.sorted {
		if err := h.services[name].Init(args...); err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				h.stopLocked(initialized[i])
			}
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		initialized = append(initialized, name)
	}

	return nil
}

// StartAll starts every service in dependency order
// On failure the already started services are stopped in reverse order
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sorted == nil {
		return errors.New("services not initialized")
	}
	h.started = nil

	for _, name := range h.sorted {
		if err := h.services[name].Start(); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				h.stopLocked(h.started[i])
			}
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
		h.log.Debug("service started", "service", name)
	}

	return nil
}

// StopAll stops started services in reverse order; every service gets Stop called
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		if err := h.stopLocked(h.started[i]); err != nil {
			errs = append(errs, err)
		}
	}
	h.started = nil
	return errors.Join(errs...)
}

func (h *Hub) stopLocked(name string) error {
	svc, ok := h.services[name]
	if !ok {
		return nil
	}
	if err := svc.Stop(); err != nil {
		h.log.Warn("service stop failed", "service", name, "error", err)
		return fmt.Errorf("service %s stop failed: %w", name, err)
	}
	return nil
}

// topologicalSort orders services with Kahn's algorithm, ties broken by name
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int)
	dependents := make(map[string][]string)

	for name := range h.services {
		inDegree[name] = 0
	}

	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	slices.Sort(queue)

	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		next := dependents[name]
		slices.Sort(next)
		for _, dependent := range next {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(h.services) {
		return nil, errors.New("circular dependency detected in services")
	}

	return result, nil
}

// Names returns registered service names, sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
