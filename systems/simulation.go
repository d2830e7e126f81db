package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/telemetry"
	"github.com/pthm-cable/ashfall/viewport"
)

// Options configures a Simulation.
type Options struct {
	Seed      int64
	Width     float32
	Height    float32
	Collector *telemetry.Collector     // Optional
	Perf      *telemetry.PerfCollector // Optional
}

// Simulation owns the population and every piece of state the frame loop
// mutates. It is not safe for concurrent use.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand

	pop         *Population
	spawner     *Spawner
	weather     *Weather
	gust        *Gust
	reactor     *Reactor
	rare        *Rare
	interaction *Interaction

	view    viewport.Viewport
	margins viewport.Margins
	pointer Pointer

	running    bool
	density    float32
	maxDensity float32
	maxStep    float32

	bgIndex int
	bgCount int

	reveal   Reveal
	spectrum SpectrumSource

	tick  int64
	simMS float64

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	// OnWeatherChange, if set, is called after every automatic transition.
	OnWeatherChange func(from, to Mode)
	// OnBackground, if set, is called after the background index changes.
	OnBackground func(index int)
}

// NewSimulation creates a running simulation seeded with the initial
// ambient population.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	rng := rand.New(rand.NewSource(opts.Seed))

	weather, err := NewWeather(rng, &cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("creating weather: %w", err)
	}

	s := &Simulation{
		cfg:         cfg,
		rng:         rng,
		pop:         NewPopulation(),
		spawner:     NewSpawner(rng, &cfg.Interaction),
		weather:     weather,
		gust:        NewGust(&cfg.Gust),
		reactor:     NewReactor(&cfg.Audio),
		rare:        NewRare(&cfg.Rare),
		interaction: NewInteraction(&cfg.Interaction, &cfg.Lore),
		view:        viewport.Viewport{W: opts.Width, H: opts.Height},
		margins: viewport.Margins{
			Left:   float32(cfg.Bounds.Left),
			Right:  float32(cfg.Bounds.Right),
			Top:    float32(cfg.Bounds.Top),
			Bottom: float32(cfg.Bounds.Bottom),
		},
		running:    true,
		density:    float32(cfg.Weather.Density),
		maxDensity: float32(cfg.Weather.MaxDensity),
		maxStep:    float32(cfg.Simulation.MaxStepMS),
		reveal:     Reveal{Image: components.NoImage},
		collector:  opts.Collector,
		perf:       opts.Perf,
	}
	weather.OnChange = s.weatherChanged
	s.seed()
	return s, nil
}

func (s *Simulation) seed() {
	for i := 0; i < s.cfg.Simulation.InitialAmbient; i++ {
		s.add(s.spawner.Ambient(s.view))
	}
}

func (s *Simulation) add(sp components.Spawn) {
	s.pop.Add(sp)
	s.collector.RecordSpawn(sp.Particle.Kind)
}

func (s *Simulation) weatherChanged(from, to Mode) {
	s.collector.RecordWeatherChange(telemetry.NewWeatherChangeEvent(s.tick, s.simMS, from.String(), to.String()))
	if s.OnWeatherChange != nil {
		s.OnWeatherChange(from, to)
	}
}

// Step advances the simulation by elapsedMS, clamped to [0, max_step_ms].
// Nothing happens while paused.
func (s *Simulation) Step(elapsedMS float32) {
	dt := min(max(elapsedMS, 0), s.maxStep)
	if !s.running {
		return
	}

	s.perf.StartTick()

	// Weather spawn pass, then transition
	s.perf.StartPhase(telemetry.PhaseWeather)
	for _, r := range s.weather.Rates() {
		n := SpawnCount(r.Rate, s.density)
		for i := 0; i < n; i++ {
			s.add(s.spawner.Generate(r.Gen, s.view))
		}
	}
	s.weather.Advance(dt)

	s.perf.StartPhase(telemetry.PhaseRare)
	if ev, sp := s.rare.Roll(s.rng, s.spawner, s.view, dt); ev != RareNone {
		s.add(sp)
		s.collector.RecordRare(telemetry.NewRareEvent(s.tick, s.simMS, ev.String()))
	}

	s.perf.StartPhase(telemetry.PhaseGust)
	s.gust.Apply(s.pop, &s.pointer)

	s.perf.StartPhase(telemetry.PhaseAudio)
	if s.reactor.Sample(s.spectrum) {
		for i, n := 0, s.reactor.SparkCount(); i < n; i++ {
			s.add(s.spawner.Spark(s.view))
		}
		s.reactor.Pulse(s.pop)
		s.collector.RecordAudioLevel(s.reactor.Level())
	} else if s.reactor.Release() {
		s.reactor.Pulse(s.pop)
	}

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	expired, offscreen := 0, 0
	s.pop.RemoveWhere(func(pos *components.Position, vel *components.Velocity, part *components.Particle) bool {
		if !components.Step(pos, vel, part, dt) {
			expired++
			return true
		}
		if !s.view.Contains(s.margins, pos.X, pos.Y) {
			offscreen++
			return true
		}
		return false
	})

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordCull(expired, offscreen)
	s.tick++
	s.simMS += float64(dt)

	s.perf.EndTick(s.pop.Len())
}

// SetRunning pauses or resumes spawning and movement.
func (s *Simulation) SetRunning(running bool) {
	s.running = running
}

// ToggleRunning flips the running flag.
func (s *Simulation) ToggleRunning() {
	s.running = !s.running
}

// Running reports whether the simulation advances.
func (s *Simulation) Running() bool {
	return s.running
}

// SetWeatherMode overrides the weather mode.
func (s *Simulation) SetWeatherMode(m Mode) {
	s.weather.SetMode(m)
}

// WeatherMode returns the active weather mode.
func (s *Simulation) WeatherMode() Mode {
	return s.weather.Mode()
}

// Weather exposes the weather state machine.
func (s *Simulation) Weather() *Weather {
	return s.weather
}

// SetDensity sets the spawn density factor, clamped to [0, max_density].
func (s *Simulation) SetDensity(d float32) {
	s.density = min(max(d, 0), s.maxDensity)
}

// Density returns the spawn density factor.
func (s *Simulation) Density() float32 {
	return s.density
}

// SetBackgroundCount records how many backgrounds loaded and lets carriers
// link to them. The index wraps into the new range.
func (s *Simulation) SetBackgroundCount(n int) {
	s.bgCount = max(n, 0)
	s.spawner.SetImageCount(s.bgCount)
	if s.bgCount == 0 {
		s.bgIndex = 0
		return
	}
	s.bgIndex %= s.bgCount
}

// BackgroundCount returns the number of loaded backgrounds.
func (s *Simulation) BackgroundCount() int {
	return s.bgCount
}

// AdvanceBackground moves to the next background, wrapping around.
// Does nothing without backgrounds.
func (s *Simulation) AdvanceBackground() {
	if s.bgCount == 0 {
		return
	}
	s.bgIndex = (s.bgIndex + 1) % s.bgCount
	if s.OnBackground != nil {
		s.OnBackground(s.bgIndex)
	}
}

// BackgroundIndex returns the current background index.
func (s *Simulation) BackgroundIndex() int {
	return s.bgIndex
}

// Reset clears the population and forgets the pointer history. Controls
// and the lore panel keep their state.
func (s *Simulation) Reset() {
	s.pop.Clear()
	s.pointer.Forget()
}

// Resize updates the viewport. Existing entities are untouched.
func (s *Simulation) Resize(w, h float32) {
	s.view = viewport.Viewport{W: w, H: h}
}

// Viewport returns the current viewport.
func (s *Simulation) Viewport() viewport.Viewport {
	return s.view
}

// PointerMove records the pointer position.
func (s *Simulation) PointerMove(x, y float32) {
	s.pointer.Move(x, y)
}

// PointerDown handles a click. Works while paused.
func (s *Simulation) PointerDown(x, y float32) {
	s.pointer.Move(x, y)
	s.pointer.Down = true
	hit := s.pointerDown(x, y)
	s.collector.RecordClick(hit)
	if hit {
		image := ""
		if s.reveal.Image != components.NoImage {
			image = fmt.Sprint(s.reveal.Image)
		}
		s.collector.RecordReveal(telemetry.NewRevealEvent(s.tick, s.simMS, image), image != "")
	}
}

// PointerUp releases the pointer button.
func (s *Simulation) PointerUp() {
	s.pointer.Down = false
}

// Pointer returns the pointer state.
func (s *Simulation) Pointer() Pointer {
	return s.pointer
}

// OnKey handles keyboard shortcuts: ' ' toggles running, 'n' advances
// the background. Returns true if the key was handled.
func (s *Simulation) OnKey(r rune) bool {
	switch r {
	case ' ':
		s.ToggleRunning()
	case 'n', 'N':
		s.AdvanceBackground()
	default:
		return false
	}
	return true
}

// SetSpectrumSource attaches an audio spectrum, or detaches with nil.
func (s *Simulation) SetSpectrumSource(src SpectrumSource) {
	s.spectrum = src
}

// AudioLevel returns the last sampled low-band level.
func (s *Simulation) AudioLevel() float64 {
	return s.reactor.Level()
}

// Reveal returns the lore panel state.
func (s *Simulation) Reveal() Reveal {
	return s.reveal
}

// DismissReveal hides the lore panel.
func (s *Simulation) DismissReveal() {
	s.reveal.Visible = false
}

// Population exposes the live entities for drawing and inspection.
func (s *Simulation) Population() *Population {
	return s.pop
}

// Tick returns the number of steps taken while running.
func (s *Simulation) Tick() int64 {
	return s.tick
}

// SimTimeMS returns the simulated time in milliseconds.
func (s *Simulation) SimTimeMS() float64 {
	return s.simMS
}

// Snapshot summarizes the current state for telemetry.
func (s *Simulation) Snapshot() telemetry.Snapshot {
	return telemetry.Snapshot{
		Tick:    s.tick,
		SimMS:   s.simMS,
		Counts:  s.pop.CountByKind(),
		Weather: s.weather.Mode().String(),
		Density: float64(s.density),
		Running: s.running,
	}
}
