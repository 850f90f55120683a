package generator

import (
	"slices"

	"github.com/lixenwraith/ambient/graph"
)

// Factory wires one generator into sink and starts it
type Factory func(in *Instance, sink graph.Node)

// Generator names
const (
	NamePad         = "pad"
	NameFallbackPad = "pad_fallback"
	NameRiver       = "river"
	NameBell        = "bell"
	NameCrowd       = "crowd"
	NameDrone       = "drone"
	NameDrip        = "drip"
	NameWind        = "wind"
	NameHum         = "hum"
	NameAir         = "air"
	NameEcho        = "echo"
	NameSparkle     = "sparkle"
	NamePulse       = "pulse"
)

var factories = map[string]Factory{
	NamePad:         Pad(TitleChord),
	NameFallbackPad: Pad(FallbackChord),
	NameRiver:       River,
	NameBell:        Bell,
	NameCrowd:       Crowd,
	NameDrone:       Drone,
	NameDrip:        Drip,
	NameWind:        Wind,
	NameHum:         Hum,
	NameAir:         Air,
	NameEcho:        Echo,
	NameSparkle:     Sparkle,
	NamePulse:       Pulse,
}

// Lookup returns the factory registered under name
func Lookup(name string) (Factory, bool) {
	f, ok := factories[name]
	return f, ok
}

// Names returns every registered generator name, sorted
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
