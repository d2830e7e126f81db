// Package game hosts the animation: it owns the window-side collaborators
// (renderers, UI, audio, telemetry output) and drives the simulation from
// the raylib frame loop or from a fixed-step headless loop.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/audio"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/renderer"
	"github.com/pthm-cable/ashfall/spectrum"
	"github.com/pthm-cable/ashfall/systems"
	"github.com/pthm-cable/ashfall/telemetry"
	"github.com/pthm-cable/ashfall/ui"
)

// bookmarkHistory is the number of stats windows bookmarks compare against.
const bookmarkHistory = 10

// Options holds runtime configuration for the game.
type Options struct {
	Seed           int64
	LogStats       bool    // Log window stats and world state
	StatsWindowSec float64 // Stats window in simulated seconds
	OutputDir      string  // CSV output (empty = disabled)
	Headless       bool    // No window, audio or textures
	AudioFile      string  // Played at start when set
	Mic            bool    // Request the microphone at start
}

// Game holds the complete host state.
type Game struct {
	cfg      *config.Config
	sim      *systems.Simulation
	headless bool

	// Audio
	analyser *spectrum.Analyser
	audio    *audio.Manager

	// Rendering
	textures   *renderer.TextureSet
	background *renderer.BackgroundRenderer
	particles  *renderer.ParticleRenderer

	// UI
	controls  *ui.Controls
	lore      *ui.LorePanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel

	// Background names, in texture order
	backgrounds []string
	cycleMS     float64 // Auto-advance timer

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	logStats         bool

	screenWidth  float32
	screenHeight float32
}

// NewGameWithOptions creates a game. In graphics mode the window and the
// audio device must already be initialized.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	g := &Game{
		cfg:           cfg,
		headless:      opts.Headless,
		collector:     telemetry.NewCollector(opts.StatsWindowSec),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:      opts.LogStats,
		screenWidth:   cfg.Derived.ScreenW32,
		screenHeight:  cfg.Derived.ScreenH32,

		bookmarkDetector: telemetry.NewBookmarkDetector(bookmarkHistory),
	}
	if !opts.Headless {
		g.screenWidth = float32(rl.GetScreenWidth())
		g.screenHeight = float32(rl.GetScreenHeight())
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	sim, err := systems.NewSimulation(cfg, systems.Options{
		Seed:      opts.Seed,
		Width:     g.screenWidth,
		Height:    g.screenHeight,
		Collector: g.collector,
		Perf:      g.perfCollector,
	})
	if err != nil {
		om.Close()
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	g.sim = sim
	sim.OnWeatherChange = g.onWeatherChange
	sim.OnBackground = g.onBackground

	g.loadBackgrounds()
	if !opts.Headless {
		g.initGraphics()
		g.initAudio(opts)
	} else if opts.AudioFile != "" || opts.Mic {
		slog.Warn("audio_ignored_headless", "file", opts.AudioFile, "mic", opts.Mic)
	}

	return g, nil
}

// initGraphics creates the renderers and UI. Textures upload here.
func (g *Game) initGraphics() {
	g.background = renderer.NewBackgroundRenderer(&g.cfg.Background, g.textures, g.screenWidth, g.screenHeight)
	g.particles = renderer.NewParticleRenderer(g.textures)
	g.controls = ui.NewControls()
	g.lore = ui.NewLorePanel()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel()
}

// Update runs one frame: input, audio pumping, one simulation step sized
// by the frame time, and telemetry.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()

	g.audio.Update()

	dtMS := rl.GetFrameTime() * 1000
	g.background.Update(dtMS)
	g.advanceCycle(float64(dtMS))

	g.sim.Step(dtMS)
	g.flushTelemetry()
}

// UpdateHeadless runs one fixed step without graphics.
func (g *Game) UpdateHeadless() {
	dtMS := g.cfg.Simulation.HeadlessStepMS
	g.advanceCycle(dtMS)
	g.sim.Step(float32(dtMS))
	g.flushTelemetry()
}

// advanceCycle moves to the next background every cycle_ms of host time.
func (g *Game) advanceCycle(dtMS float64) {
	period := g.cfg.Background.CycleMS
	if period <= 0 || g.sim.BackgroundCount() < 2 {
		return
	}
	g.cycleMS += dtMS
	if g.cycleMS >= period {
		g.cycleMS = 0
		g.sim.AdvanceBackground()
	}
}

func (g *Game) onWeatherChange(from, to systems.Mode) {
	slog.Info("weather_change", "from", from.String(), "to", to.String(), "tick", g.sim.Tick())
}

func (g *Game) onBackground(index int) {
	name := ""
	if index < len(g.backgrounds) {
		name = g.backgrounds[index]
	}
	g.collector.RecordBackground(telemetry.NewBackgroundEvent(g.sim.Tick(), g.sim.SimTimeMS(), name))
	if g.background != nil {
		g.background.SetIndex(index)
	}
	g.cycleMS = 0
}

func (g *Game) onAudioSource(name string) {
	if name == "" {
		name = "none"
	}
	g.collector.RecordEvent(telemetry.NewAudioSourceEvent(g.sim.Tick(), g.sim.SimTimeMS(), name))
}

// Tick returns the simulation tick.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Simulation exposes the core for inspection.
func (g *Game) Simulation() *systems.Simulation {
	return g.sim
}

// Unload releases audio sources, textures and output files. The caller
// closes the audio device and window afterwards.
func (g *Game) Unload() {
	g.flushFinal()

	if g.audio != nil {
		if err := g.audio.Close(); err != nil {
			slog.Warn("audio_close_failed", "error", err)
		}
	}
	g.textures.Unload()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
