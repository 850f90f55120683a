// Package gesture delivers user activation events to subscribers
// Audio output may only start after the first pointer or key press
package gesture

import (
	"slices"
	"sync"
)

// Kind identifies the input that produced a gesture
type Kind int

const (
	PointerDown Kind = iota
	KeyDown
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case KeyDown:
		return "keydown"
	default:
		return "unknown"
	}
}

// Listener receives gestures
type Listener func(Kind)

// Source fans gestures out to listeners
type Source struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]*entry
	count     uint64
}

type entry struct {
	fn   Listener
	once bool
}

// NewSource creates an empty gesture source
func NewSource() *Source {
	return &Source{listeners: make(map[uint64]*entry)}
}

// Subscribe registers fn for every gesture; the returned func unregisters it
func (s *Source) Subscribe(fn Listener) func() {
	return s.add(fn, false)
}

// Once registers fn for the next gesture only
func (s *Source) Once(fn Listener) func() {
	return s.add(fn, true)
}

func (s *Source) add(fn Listener, once bool) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners[id] = &entry{fn: fn, once: once}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Fire delivers a gesture; listeners run on the caller's goroutine outside the source lock
func (s *Source) Fire(k Kind) {
	s.mu.Lock()
	s.count++
	fns := make([]Listener, 0, len(s.listeners))
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		e := s.listeners[id]
		fns = append(fns, e.fn)
		if e.once {
			delete(s.listeners, id)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(k)
	}
}

// Count returns the number of gestures fired
func (s *Source) Count() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Listeners returns the number of registered listeners
func (s *Source) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
