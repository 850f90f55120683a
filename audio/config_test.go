package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/ambient/backend"
	"github.com/lixenwraith/ambient/constant"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ambient.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Enabled {
		t.Error("Expected enabled by default")
	}
	if cfg.MasterVolume != constant.DefaultMasterVolume {
		t.Errorf("Expected master %f, got %f", constant.DefaultMasterVolume, cfg.MasterVolume)
	}
	if cfg.SceneFade() != constant.SceneFade {
		t.Errorf("Expected fade %v, got %v", constant.SceneFade, cfg.SceneFade())
	}
	if cfg.HoverCooldown() != constant.HoverCooldown {
		t.Errorf("Expected cooldown %v, got %v", constant.HoverCooldown, cfg.HoverCooldown())
	}
	if cfg.Backend != backend.NameAuto {
		t.Errorf("Expected auto backend, got %s", cfg.Backend)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
master_volume = 0.5
music_volume = 3.0
backend = "null"
scene_fade_ms = 500
low_complexity = true
seed = 42

[scenes]
cave = ["drip", "air"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MasterVolume != 0.5 {
		t.Errorf("Expected master 0.5, got %f", cfg.MasterVolume)
	}
	if cfg.MusicVolume != 1 {
		t.Errorf("Expected music clamped to 1, got %f", cfg.MusicVolume)
	}
	if cfg.Backend != backend.NameNull {
		t.Errorf("Expected null backend, got %s", cfg.Backend)
	}
	if cfg.SceneFade() != 500*time.Millisecond {
		t.Errorf("Expected 500ms fade, got %v", cfg.SceneFade())
	}
	if !cfg.LowComplexity || cfg.Seed != 42 {
		t.Errorf("Expected low complexity and seed 42, got %v %d", cfg.LowComplexity, cfg.Seed)
	}
	if got := cfg.Scenes["cave"]; len(got) != 2 || got[0] != "drip" {
		t.Errorf("Expected cave scene, got %v", got)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "master_volume = 0.5\n")
	t.Setenv("AMBIENT_MASTER_VOLUME", "25")
	t.Setenv("AMBIENT_VOLUMES", `{"music": 2, "sfx": 0.1}`)
	t.Setenv("AMBIENT_ENABLED", "false")
	t.Setenv("AMBIENT_SAMPLE_RATE", "not-a-number")
	t.Setenv("AMBIENT_SEED", "7")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MasterVolume != 0.25 {
		t.Errorf("Expected env master 0.25, got %f", cfg.MasterVolume)
	}
	if cfg.MusicVolume != 1 || cfg.SfxVolume != 0.1 {
		t.Errorf("Expected music 1 sfx 0.1, got %f %f", cfg.MusicVolume, cfg.SfxVolume)
	}
	if cfg.AmbientVolume != constant.DefaultAmbientVolume {
		t.Errorf("Expected untouched ambient, got %f", cfg.AmbientVolume)
	}
	if cfg.Enabled {
		t.Error("Expected env to disable sound")
	}
	if cfg.SampleRate != constant.AudioSampleRate {
		t.Errorf("Expected invalid rate ignored, got %d", cfg.SampleRate)
	}
	if cfg.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", cfg.Seed)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestSettingsUpdateLeavesMaster(t *testing.T) {
	u := Settings{SoundEnabled: true, MusicVolume: 0.1, SfxVolume: 0.2, AmbientVolume: 0.3}.Update()
	if u.Master != nil {
		t.Error("Expected master untouched")
	}
	if *u.Music != 0.1 || *u.Sfx != 0.2 || *u.Ambient != 0.3 || !*u.Enabled {
		t.Errorf("Unexpected update %+v", u)
	}
}
