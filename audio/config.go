package audio

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/ambient/backend"
	"github.com/lixenwraith/ambient/constant"
)

// Config holds engine settings
// Durations are milliseconds to keep the file format flat
type Config struct {
	Enabled       bool    `toml:"enabled"`
	MasterVolume  float64 `toml:"master_volume"`
	MusicVolume   float64 `toml:"music_volume"`
	AmbientVolume float64 `toml:"ambient_volume"`
	SfxVolume     float64 `toml:"sfx_volume"`

	SampleRate int     `toml:"sample_rate"`
	Backend    string  `toml:"backend"`
	BufferMs   int     `toml:"buffer_ms"`
	OutputTrim float64 `toml:"output_trim"`

	// LowComplexity keeps the leading half of every scene's generators
	LowComplexity bool `toml:"low_complexity"`
	// EagerContext builds the graph at construction; it stays suspended until a gesture
	EagerContext bool `toml:"eager_context"`
	// AutoResume runs the context as soon as it exists, for headless and offline hosts
	AutoResume bool `toml:"auto_resume"`

	SceneFadeMs     int `toml:"scene_fade_ms"`
	HoverCooldownMs int `toml:"hover_cooldown_ms"`

	// Seed fixes the random source; 0 seeds from the runtime
	Seed uint64 `toml:"seed"`

	// Scenes adds or replaces scene mappings: key = ["river", "bell"]
	Scenes map[string][]string `toml:"scenes"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MasterVolume:    constant.DefaultMasterVolume,
		MusicVolume:     constant.DefaultMusicVolume,
		AmbientVolume:   constant.DefaultAmbientVolume,
		SfxVolume:       constant.DefaultSfxVolume,
		SampleRate:      constant.AudioSampleRate,
		Backend:         backend.NameAuto,
		BufferMs:        int(constant.AudioBufferDuration / time.Millisecond),
		OutputTrim:      1,
		SceneFadeMs:     int(constant.SceneFade / time.Millisecond),
		HoverCooldownMs: int(constant.HoverCooldown / time.Millisecond),
	}
}

// LoadConfig reads defaults, then the optional TOML file at path, then environment overrides
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// applyEnv overlays AMBIENT_* environment variables
func (c *Config) applyEnv() {
	if enabled := os.Getenv("AMBIENT_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			c.Enabled = val
		}
	}

	// Master volume is 0-100
	if volume := os.Getenv("AMBIENT_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			c.MasterVolume = clamp01(float64(val) / 100.0)
		}
	}

	// Bus volumes as a JSON object of 0..1 values
	if vols := os.Getenv("AMBIENT_VOLUMES"); vols != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(vols), &volumes); err == nil {
			if v, ok := volumes[BusMusic]; ok {
				c.MusicVolume = v
			}
			if v, ok := volumes[BusAmbient]; ok {
				c.AmbientVolume = v
			}
			if v, ok := volumes[BusSfx]; ok {
				c.SfxVolume = v
			}
		}
	}

	if sampleRate := os.Getenv("AMBIENT_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			c.SampleRate = val
		}
	}

	if name := os.Getenv("AMBIENT_BACKEND"); name != "" {
		c.Backend = name
	}

	if low := os.Getenv("AMBIENT_LOW_COMPLEXITY"); low != "" {
		if val, err := strconv.ParseBool(low); err == nil {
			c.LowComplexity = val
		}
	}

	if seed := os.Getenv("AMBIENT_SEED"); seed != "" {
		if val, err := strconv.ParseUint(seed, 10, 64); err == nil {
			c.Seed = val
		}
	}
}

// normalize clamps volumes and restores defaults for unusable values
func (c *Config) normalize() {
	c.MasterVolume = clampVolume(c.MasterVolume, constant.DefaultMasterVolume)
	c.MusicVolume = clampVolume(c.MusicVolume, constant.DefaultMusicVolume)
	c.AmbientVolume = clampVolume(c.AmbientVolume, constant.DefaultAmbientVolume)
	c.SfxVolume = clampVolume(c.SfxVolume, constant.DefaultSfxVolume)
	c.OutputTrim = clampVolume(c.OutputTrim, 1)

	if c.SampleRate <= 0 {
		c.SampleRate = constant.AudioSampleRate
	}
	if c.BufferMs <= 0 {
		c.BufferMs = int(constant.AudioBufferDuration / time.Millisecond)
	}
	if c.SceneFadeMs <= 0 {
		c.SceneFadeMs = int(constant.SceneFade / time.Millisecond)
	}
	if c.HoverCooldownMs <= 0 {
		c.HoverCooldownMs = int(constant.HoverCooldown / time.Millisecond)
	}
	if c.Backend == "" {
		c.Backend = backend.NameAuto
	}
}

// SceneFade returns the scene fade duration
func (c *Config) SceneFade() time.Duration {
	return time.Duration(c.SceneFadeMs) * time.Millisecond
}

// HoverCooldown returns the hover debounce window
func (c *Config) HoverCooldown() time.Duration {
	return time.Duration(c.HoverCooldownMs) * time.Millisecond
}

// Buffer returns the output buffer duration
func (c *Config) Buffer() time.Duration {
	return time.Duration(c.BufferMs) * time.Millisecond
}

func clampVolume(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
