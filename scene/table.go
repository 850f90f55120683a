package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lixenwraith/ambient/generator"
)

// Scene keys
const (
	Title     = "title"
	Ghat      = "ghat"
	Labyrinth = "labyrinth"
	TrialA    = "trial_a"
	TrialB    = "trial_b"
	Warden    = "warden"
)

// ErrUnknownGenerator is returned when a mapping names a generator that is not registered
var ErrUnknownGenerator = errors.New("unknown generator")

// Table maps scene keys to ordered generator names
// Entries are in priority order; low complexity keeps the leading half
type Table struct {
	entries  map[string][]string
	fallback []string
	low      bool
}

// DefaultTable returns the built-in scene mapping
func DefaultTable() *Table {
	return &Table{
		entries: map[string][]string{
			Title:     {generator.NamePad},
			Ghat:      {generator.NameRiver, generator.NameBell, generator.NameCrowd},
			Labyrinth: {generator.NameDrone, generator.NameDrip, generator.NameWind},
			TrialA:    {generator.NameHum, generator.NameAir, generator.NameEcho},
			TrialB:    {generator.NameDrone, generator.NameSparkle, generator.NameEcho},
			Warden:    {generator.NamePulse, generator.NameWind},
		},
		fallback: []string{generator.NameFallbackPad},
	}
}

// SetLowComplexity toggles halving of every entry
func (t *Table) SetLowComplexity(low bool) {
	t.low = low
}

// LowComplexity reports the current mode
func (t *Table) LowComplexity() bool {
	return t.low
}

// Register adds or replaces a scene mapping
func (t *Table) Register(key string, gens ...string) error {
	if key == "" {
		return fmt.Errorf("register scene: empty key")
	}
	for _, g := range gens {
		if _, ok := generator.Lookup(g); !ok {
			return fmt.Errorf("register scene %q: %w: %s", key, ErrUnknownGenerator, g)
		}
	}
	t.entries[key] = slices.Clone(gens)
	return nil
}

// Keys returns the mapped scene keys, sorted
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Mapped reports whether key has its own entry
func (t *Table) Mapped(key string) bool {
	_, ok := t.entries[key]
	return ok
}

// Resolve returns the generators to run for key; unmapped keys get the fallback pad
func (t *Table) Resolve(key string) []string {
	gens, ok := t.entries[key]
	if !ok || len(gens) == 0 {
		gens = t.fallback
	}
	if t.low {
		gens = gens[:(len(gens)+1)/2]
	}
	return slices.Clone(gens)
}
