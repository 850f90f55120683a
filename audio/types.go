package audio

import (
	"github.com/lixenwraith/ambient/graph"
)

// Bus names
const (
	BusMaster  = "master"
	BusMusic   = "music"
	BusAmbient = "ambient"
	BusSfx     = "sfx"
)

// VolumeUpdate is a partial settings change; nil fields are left unchanged
type VolumeUpdate struct {
	Master  *float64 `json:"master,omitempty"`
	Music   *float64 `json:"music,omitempty"`
	Ambient *float64 `json:"ambient,omitempty"`
	Sfx     *float64 `json:"sfx,omitempty"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// Settings is the state store's sound settings object
type Settings struct {
	SoundEnabled  bool    `json:"soundEnabled"`
	MusicVolume   float64 `json:"musicVolume"`
	SfxVolume     float64 `json:"sfxVolume"`
	AmbientVolume float64 `json:"ambientVolume"`
}

// Update converts settings into a full update that leaves master untouched
func (s Settings) Update() VolumeUpdate {
	return VolumeUpdate{
		Music:   &s.MusicVolume,
		Ambient: &s.AmbientVolume,
		Sfx:     &s.SfxVolume,
		Enabled: &s.SoundEnabled,
	}
}

// Bus is a named gain stage
type Bus struct {
	name  string
	gain  *graph.Gain
	level float64
	tau   float64
}

func newBus(ctx *graph.Context, name string, level, tau float64) *Bus {
	return &Bus{name: name, gain: ctx.NewGain(level), level: level, tau: tau}
}

// Name returns the bus name
func (b *Bus) Name() string {
	return b.name
}

// Level returns the last requested level
func (b *Bus) Level() float64 {
	return b.level
}

// Gain returns the bus gain parameter
func (b *Bus) Gain() *graph.Param {
	return b.gain.Gain
}

// Node returns the bus as a graph node
func (b *Bus) Node() graph.Node {
	return b.gain
}

// set approaches level smoothly from now
func (b *Bus) set(level, now float64) {
	b.level = level
	b.gain.Gain.SetTargetAtTime(level, now, b.tau)
}
