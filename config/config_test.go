package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Simulation.MaxStepMS != 60 {
		t.Errorf("max_step_ms = %v, want 60", cfg.Simulation.MaxStepMS)
	}
	if cfg.Weather.MinIntervalMS != 12000 || cfg.Weather.MaxIntervalMS != 24000 {
		t.Errorf("weather interval = [%v, %v), want [12000, 24000)",
			cfg.Weather.MinIntervalMS, cfg.Weather.MaxIntervalMS)
	}
	if cfg.Gust.RadiusSq != 20000 {
		t.Errorf("gust radius_sq = %v, want 20000", cfg.Gust.RadiusSq)
	}
	if cfg.Interaction.BurstCount != 12 {
		t.Errorf("burst_count = %d, want 12", cfg.Interaction.BurstCount)
	}
	for _, name := range ModeNames {
		if len(cfg.Weather.Modes[name]) == 0 {
			t.Errorf("mode %q has no spawn table", name)
		}
	}
	if got := cfg.Derived.ModeIndex["fog"]; got != 5 {
		t.Errorf("ModeIndex[fog] = %d, want 5", got)
	}
	if len(cfg.Derived.ImagePaths) != len(cfg.Background.Images) {
		t.Errorf("derived %d image paths, want %d", len(cfg.Derived.ImagePaths), len(cfg.Background.Images))
	}
}

func TestLoadOverrideMerges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("simulation:\n  initial_ambient: 5\nweather:\n  initial: rain\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Simulation.InitialAmbient != 5 {
		t.Errorf("initial_ambient = %d, want 5", cfg.Simulation.InitialAmbient)
	}
	if cfg.Weather.Initial != "rain" {
		t.Errorf("initial = %q, want rain", cfg.Weather.Initial)
	}
	// Untouched fields keep their defaults
	if cfg.Simulation.MaxStepMS != 60 {
		t.Errorf("max_step_ms = %v, want default 60", cfg.Simulation.MaxStepMS)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown initial", func(c *Config) { c.Weather.Initial = "hail" }},
		{"unknown mode", func(c *Config) { c.Weather.Modes["hail"] = []SpawnRate{{Kind: "rain", Rate: 1}} }},
		{"unknown kind", func(c *Config) { c.Weather.Modes["rain"] = []SpawnRate{{Kind: "hail", Rate: 1}} }},
		{"empty table", func(c *Config) { delete(c.Weather.Modes, "snow") }},
		{"empty interval", func(c *Config) { c.Weather.MaxIntervalMS = c.Weather.MinIntervalMS }},
		{"fft not power of two", func(c *Config) { c.Audio.FFTSize = 300 }},
		{"no quotes", func(c *Config) { c.Lore.Quotes = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		dir, name, want string
	}{
		{"images", "a.jpg", filepath.Join("images", "a.jpg")},
		{"images", "/b.webp", filepath.Join("images", "b.webp")},
		{"", "/c.jpg", "c.jpg"},
	}
	for _, tt := range tests {
		if got := resolvePath(tt.dir, tt.name); got != tt.want {
			t.Errorf("resolvePath(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written) error: %v", err)
	}
	if loaded.Audio.FFTSize != cfg.Audio.FFTSize {
		t.Errorf("fft_size = %d, want %d", loaded.Audio.FFTSize, cfg.Audio.FFTSize)
	}
}
