// Package config provides configuration loading and access for the animation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned (wrapped) when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// ModeNames lists the weather modes in selector order.
var ModeNames = []string{"ambient", "ash", "snow", "rain", "sparks", "fog"}

// SpawnKinds lists the generator names a weather table may reference.
var SpawnKinds = []string{"ambient", "ash", "snow", "rain", "sparks"}

// Config holds all configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Bounds      BoundsConfig      `yaml:"bounds"`
	Weather     WeatherConfig     `yaml:"weather"`
	Rare        RareConfig        `yaml:"rare"`
	Gust        GustConfig        `yaml:"gust"`
	Audio       AudioConfig       `yaml:"audio"`
	Interaction InteractionConfig `yaml:"interaction"`
	Background  BackgroundConfig  `yaml:"background"`
	Lore        LoreConfig        `yaml:"lore"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Resizable bool   `yaml:"resizable"`
	Title     string `yaml:"title"`
}

// SimulationConfig holds loop timing and seeding parameters.
// All times are in milliseconds.
type SimulationConfig struct {
	MaxStepMS      float64 `yaml:"max_step_ms"`      // Elapsed time clamp after a stall
	HeadlessStepMS float64 `yaml:"headless_step_ms"` // Fixed step used without a window
	InitialAmbient int     `yaml:"initial_ambient"`  // Ambient entities seeded at start
}

// BoundsConfig holds the culling margins around the viewport.
type BoundsConfig struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// SpawnRate is one entry of a weather spawn table.
type SpawnRate struct {
	Kind string  `yaml:"kind"`
	Rate float64 `yaml:"rate"` // Entities per tick at density 1 (fractions round up)
}

// WeatherConfig holds weather state machine parameters.
type WeatherConfig struct {
	Initial       string                 `yaml:"initial"`
	Density       float64                `yaml:"density"`
	MaxDensity    float64                `yaml:"max_density"`
	MinIntervalMS float64                `yaml:"min_interval_ms"`
	MaxIntervalMS float64                `yaml:"max_interval_ms"`
	Modes         map[string][]SpawnRate `yaml:"modes"`
}

// RareConfig holds rare event parameters.
type RareConfig struct {
	ChancePerFrame float64 `yaml:"chance_per_frame"` // Probability per nominal frame
	NominalFrameMS float64 `yaml:"nominal_frame_ms"`
	WispShare      float64 `yaml:"wisp_share"` // Cumulative split: [0, wisp) wisp
	StarShare      float64 `yaml:"star_share"` // [wisp, wisp+star) shooting star, rest rune
}

// GustConfig holds pointer force field parameters.
type GustConfig struct {
	MinDisplacement float64 `yaml:"min_displacement"` // Below this the pointer counts as idle
	Strength        float64 `yaml:"strength"`         // Impulse per unit of displacement
	MaxImpulse      float64 `yaml:"max_impulse"`
	RadiusSq        float64 `yaml:"radius_sq"` // Squared distance filter
	Falloff         float64 `yaml:"falloff"`   // Linear falloff distance (not clamped)
}

// AudioConfig holds analyser and reactor parameters.
type AudioConfig struct {
	FFTSize        int     `yaml:"fft_size"`
	Smoothing      float64 `yaml:"smoothing"` // Time smoothing constant [0, 1)
	MinDecibels    float64 `yaml:"min_decibels"`
	MaxDecibels    float64 `yaml:"max_decibels"`
	SparkThreshold float64 `yaml:"spark_threshold"` // Low-band level above which sparks spawn
	SparkScale     float64 `yaml:"spark_scale"`     // Sparks = floor(level * scale)
	SizePulse      float64 `yaml:"size_pulse"`      // Size = base * (1 + level * pulse)
	SampleRate     int     `yaml:"sample_rate"`
	Volume         float64 `yaml:"volume"`
}

// InteractionConfig holds click and carrier parameters.
type InteractionConfig struct {
	MinHitRadius      float64 `yaml:"min_hit_radius"`
	HitRadiusScale    float64 `yaml:"hit_radius_scale"`
	BurstCount        int     `yaml:"burst_count"`
	ImageChance       float64 `yaml:"image_chance"`        // Chance a reveal shows a background preview
	InteractiveChance float64 `yaml:"interactive_chance"`  // Chance an ambient entity carries lore
	LinkedImageChance float64 `yaml:"linked_image_chance"` // Chance a carrier shows a tiny preview
}

// BackgroundConfig holds background image parameters.
type BackgroundConfig struct {
	Images         []string `yaml:"images"`
	Dir            string   `yaml:"dir"` // Relative image paths resolve against this
	CrossfadeMS    float64  `yaml:"crossfade_ms"`
	CycleMS        float64  `yaml:"cycle_ms"` // Host timer for auto-advance (0 = off)
	BaseColor      [3]uint8 `yaml:"base_color"`
	VignetteTop    float64  `yaml:"vignette_top"`    // Darkening at the top edge [0, 1]
	VignetteBottom float64  `yaml:"vignette_bottom"` // Darkening at the bottom edge [0, 1]
	DecodeLimit    int      `yaml:"decode_limit"`    // Concurrent decoders
}

// LoreConfig holds the reveal quotes.
type LoreConfig struct {
	Quotes []string `yaml:"quotes"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds of simulated time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
	MaxStep32  float32 // Simulation.MaxStepMS as float32
	ModeIndex  map[string]int
	ImagePaths []string // Background images with Dir applied
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the values that would otherwise break the simulation.
func (c *Config) Validate() error {
	known := make(map[string]bool, len(SpawnKinds))
	for _, k := range SpawnKinds {
		known[k] = true
	}

	if !containsMode(c.Weather.Initial) {
		return fmt.Errorf("%w: unknown initial weather mode %q", ErrInvalid, c.Weather.Initial)
	}
	for _, name := range ModeNames {
		rates, ok := c.Weather.Modes[name]
		if !ok || len(rates) == 0 {
			return fmt.Errorf("%w: weather mode %q has no spawn table", ErrInvalid, name)
		}
		for _, r := range rates {
			if !known[r.Kind] {
				return fmt.Errorf("%w: weather mode %q references unknown spawn kind %q", ErrInvalid, name, r.Kind)
			}
			if r.Rate < 0 {
				return fmt.Errorf("%w: weather mode %q has negative rate for %q", ErrInvalid, name, r.Kind)
			}
		}
	}
	for name := range c.Weather.Modes {
		if !containsMode(name) {
			return fmt.Errorf("%w: unknown weather mode %q", ErrInvalid, name)
		}
	}
	if c.Weather.MinIntervalMS <= 0 || c.Weather.MinIntervalMS >= c.Weather.MaxIntervalMS {
		return fmt.Errorf("%w: weather interval [%v, %v) is empty", ErrInvalid,
			c.Weather.MinIntervalMS, c.Weather.MaxIntervalMS)
	}
	if c.Audio.FFTSize <= 0 || c.Audio.FFTSize&(c.Audio.FFTSize-1) != 0 {
		return fmt.Errorf("%w: fft_size %d is not a positive power of two", ErrInvalid, c.Audio.FFTSize)
	}
	if c.Audio.MinDecibels >= c.Audio.MaxDecibels {
		return fmt.Errorf("%w: min_decibels must be below max_decibels", ErrInvalid)
	}
	if c.Simulation.MaxStepMS <= 0 {
		return fmt.Errorf("%w: max_step_ms must be positive", ErrInvalid)
	}
	if len(c.Lore.Quotes) == 0 {
		return fmt.Errorf("%w: lore needs at least one quote", ErrInvalid)
	}
	return nil
}

func containsMode(name string) bool {
	for _, m := range ModeNames {
		if m == name {
			return true
		}
	}
	return false
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.MaxStep32 = float32(c.Simulation.MaxStepMS)

	c.Derived.ModeIndex = make(map[string]int, len(ModeNames))
	for i, name := range ModeNames {
		c.Derived.ModeIndex[name] = i
	}

	c.Derived.ImagePaths = make([]string, 0, len(c.Background.Images))
	for _, img := range c.Background.Images {
		c.Derived.ImagePaths = append(c.Derived.ImagePaths, resolvePath(c.Background.Dir, img))
	}

	if c.Background.DecodeLimit <= 0 {
		c.Background.DecodeLimit = 4
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
