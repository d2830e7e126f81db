package systems

import (
	"slices"
	"testing"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/telemetry"
)

// quietConfig disables every source of automatic spawning so tests control
// the population directly.
func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation.InitialAmbient = 0
	cfg.Rare.ChancePerFrame = 0
	for name, rates := range cfg.Weather.Modes {
		for i := range rates {
			rates[i].Rate = 0
		}
		cfg.Weather.Modes[name] = rates
	}
	return cfg
}

func newTestSim(t *testing.T, cfg *config.Config) *Simulation {
	t.Helper()
	sim, err := NewSimulation(cfg, Options{Seed: 42, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("NewSimulation error: %v", err)
	}
	return sim
}

func carrier(x, y float32) components.Spawn {
	sp := stillEntity(x, y)
	sp.Particle.Size = 2
	sp.Particle.BaseSize = 2
	sp.Particle.Interactive = true
	return sp
}

func TestNewSimulationSeedsAmbient(t *testing.T) {
	sim := newTestSim(t, config.Default())

	if n := sim.Population().Len(); n != 300 {
		t.Fatalf("initial population = %d, want 300", n)
	}
	counts := sim.Population().CountByKind()
	if counts[components.KindAmbient] != 300 {
		t.Errorf("initial ambient = %d, want 300", counts[components.KindAmbient])
	}
	if !sim.Running() {
		t.Error("simulation should start running")
	}
	if sim.WeatherMode() != ModeAmbient {
		t.Errorf("initial mode = %v, want ambient", sim.WeatherMode())
	}
}

func TestStepCullsOutsideMargins(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	pop := sim.Population()

	pop.Add(stillEntity(800+201, 300)) // past right margin
	pop.Add(stillEntity(800+199, 300)) // inside right margin
	pop.Add(stillEntity(400, -201))    // above top margin
	pop.Add(stillEntity(400, 600+399)) // inside bottom margin

	sim.Step(16)

	if n := pop.Len(); n != 2 {
		t.Fatalf("population after cull = %d, want 2", n)
	}
	for _, s := range pop.Snapshot() {
		if s.Pos.X == 1001 || s.Pos.Y == -201 {
			t.Errorf("entity at (%v, %v) should have been culled", s.Pos.X, s.Pos.Y)
		}
	}
}

func TestStepRemovesExpired(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	sp := stillEntity(400, 300)
	sp.Particle.Lifetime = 50
	sim.Population().Add(sp)

	for i := 1; i <= 3; i++ {
		sim.Step(16)
		if sim.Population().Len() != 1 {
			t.Fatalf("entity died on step %d, age %v <= 50", i, float32(i*16))
		}
	}
	sim.Step(16)
	if sim.Population().Len() != 0 {
		t.Error("entity should die once age exceeds lifetime")
	}
}

func TestStepClampsElapsed(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float32
		wantAge float32
	}{
		{"normal", 16, 16},
		{"stall", 5000, 60},
		{"negative", -30, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSim(t, quietConfig())
			sp := stillEntity(400, 300)
			sp.Vel = components.Velocity{X: 1, Y: 0}
			sim.Population().Add(sp)

			sim.Step(tt.elapsed)

			s := sim.Population().Snapshot()[0]
			if s.Particle.Age != tt.wantAge {
				t.Errorf("age = %v, want %v", s.Particle.Age, tt.wantAge)
			}
			if s.Pos.X != 400+tt.wantAge {
				t.Errorf("x = %v, want %v", s.Pos.X, 400+tt.wantAge)
			}
		})
	}
}

func TestPausedStepDoesNothing(t *testing.T) {
	sim := newTestSim(t, config.Default())
	sim.SetRunning(false)

	before := sim.Population().Snapshot()
	sim.Step(16)
	after := sim.Population().Snapshot()

	if len(before) != len(after) {
		t.Fatalf("population changed while paused: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("entity %d changed while paused", i)
		}
	}
	if sim.Tick() != 0 {
		t.Errorf("tick = %d, want 0 while paused", sim.Tick())
	}
}

func TestStepSpawnsFromWeatherTable(t *testing.T) {
	cfg := quietConfig()
	cfg.Weather.Modes["rain"] = []config.SpawnRate{{Kind: "rain", Rate: 6}}
	cfg.Weather.Modes["ash"] = []config.SpawnRate{{Kind: "ash", Rate: 2}, {Kind: "ambient", Rate: 0.2}}
	sim := newTestSim(t, cfg)

	tests := []struct {
		mode    Mode
		density float32
		want    int
	}{
		{ModeRain, 1, 6},
		{ModeRain, 0.5, 3},
		{ModeAsh, 1, 3},   // 2 + ceil(0.2)
		{ModeAsh, 2.5, 6}, // 5 + ceil(0.5)
		{ModeRain, 0, 0},
	}
	for _, tt := range tests {
		sim.Reset()
		sim.SetWeatherMode(tt.mode)
		sim.SetDensity(tt.density)
		sim.Step(1)
		if got := sim.Population().Len(); got != tt.want {
			t.Errorf("%v at density %v spawned %d, want %d", tt.mode, tt.density, got, tt.want)
		}
	}
}

func TestWeatherChangeHook(t *testing.T) {
	collector := telemetry.NewCollector(10)
	cfg := quietConfig()
	sim, err := NewSimulation(cfg, Options{Seed: 1, Width: 800, Height: 600, Collector: collector})
	if err != nil {
		t.Fatal(err)
	}

	changes := 0
	sim.OnWeatherChange = func(from, to Mode) { changes++ }

	// 24000ms at the 60ms clamp crosses at least one threshold
	for i := 0; i < 401; i++ {
		sim.Step(60)
	}
	if changes == 0 {
		t.Fatal("no weather transition after 24s of simulated time")
	}
	if sim.Weather().Elapsed() >= sim.Weather().Threshold() {
		t.Error("accumulator not reset after transition")
	}

	stats := collector.Flush(sim.Snapshot())
	if stats.WeatherChanges != changes {
		t.Errorf("collector counted %d changes, hook saw %d", stats.WeatherChanges, changes)
	}
}

func TestPointerDownRevealsCarrier(t *testing.T) {
	cfg := quietConfig()
	sim := newTestSim(t, cfg)
	sim.SetBackgroundCount(3)
	sim.Population().Add(carrier(100, 100))

	sim.PointerDown(108, 100)

	pop := sim.Population()
	if n := pop.Len(); n != 12 {
		t.Fatalf("population after reveal = %d, want 12 burst sparks", n)
	}
	for _, s := range pop.Snapshot() {
		if s.Particle.Kind != components.KindSpark {
			t.Errorf("burst entity kind = %v, want spark", s.Particle.Kind)
		}
		if s.Pos.X != 100 || s.Pos.Y != 100 {
			t.Errorf("burst spark at (%v, %v), want (100, 100)", s.Pos.X, s.Pos.Y)
		}
	}

	rev := sim.Reveal()
	if !rev.Visible {
		t.Fatal("reveal not visible")
	}
	if !slices.Contains(cfg.Lore.Quotes, rev.Quote) {
		t.Errorf("quote %q is not a configured quote", rev.Quote)
	}
	if rev.Image != components.NoImage && (rev.Image < 0 || rev.Image >= 3) {
		t.Errorf("reveal image %d out of range", rev.Image)
	}

	sim.DismissReveal()
	if sim.Reveal().Visible {
		t.Error("DismissReveal did not hide the panel")
	}
}

func TestPointerDownPicksMostRecent(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	pop := sim.Population()

	older := carrier(100, 100)
	older.Particle.Alpha = 0.1
	newer := carrier(102, 100)
	newer.Particle.Alpha = 0.2
	pop.Add(older)
	pop.Add(newer)

	sim.PointerDown(101, 100)

	var survivors []components.Spawn
	for _, s := range pop.Snapshot() {
		if s.Particle.Kind == components.KindAmbient {
			survivors = append(survivors, s)
		}
	}
	if len(survivors) != 1 {
		t.Fatalf("%d carriers left, want 1", len(survivors))
	}
	if survivors[0].Particle.Alpha != 0.1 {
		t.Error("the older carrier was removed instead of the most recent")
	}
}

func TestPointerDownOnNothingSpawnsWisp(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	pop := sim.Population()

	// Non-interactive entity under the pointer and a carrier out of reach
	pop.Add(stillEntity(300, 300))
	pop.Add(carrier(340, 300))

	sim.PointerDown(300, 300)

	if n := pop.Len(); n != 3 {
		t.Fatalf("population = %d, want 3 (nothing removed, one wisp)", n)
	}
	counts := pop.CountByKind()
	if counts[components.KindWisp] != 1 {
		t.Fatalf("wisps = %d, want 1", counts[components.KindWisp])
	}
	for _, s := range pop.Snapshot() {
		if s.Particle.Kind == components.KindWisp && (s.Pos.X != 300 || s.Pos.Y != 300) {
			t.Errorf("wisp at (%v, %v), want (300, 300)", s.Pos.X, s.Pos.Y)
		}
	}
	if sim.Reveal().Visible {
		t.Error("a miss should not reveal lore")
	}
}

func TestPointerDownWorksWhilePaused(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	sim.SetRunning(false)
	sim.Population().Add(carrier(50, 50))

	sim.PointerDown(50, 50)

	if !sim.Reveal().Visible {
		t.Error("reveal should work while paused")
	}
}

func TestHitRadius(t *testing.T) {
	in := NewInteraction(&config.Default().Interaction, &config.Default().Lore)
	tests := []struct {
		size float32
		want float32
	}{
		{0.5, 12},
		{2, 12},
		{3, 18},
		{10, 60},
	}
	for _, tt := range tests {
		if got := in.HitRadius(tt.size); got != tt.want {
			t.Errorf("HitRadius(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestResizeKeepsEntities(t *testing.T) {
	sim := newTestSim(t, config.Default())
	before := sim.Population().Snapshot()

	sim.Resize(320, 240)

	after := sim.Population().Snapshot()
	if len(before) != len(after) {
		t.Fatalf("population changed on resize: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Particle.Lifetime != after[i].Particle.Lifetime {
			t.Fatalf("lifetime of entity %d changed on resize", i)
		}
	}
	if v := sim.Viewport(); v.W != 320 || v.H != 240 {
		t.Errorf("viewport = %+v, want 320x240", v)
	}
}

func TestBackgroundIndex(t *testing.T) {
	sim := newTestSim(t, quietConfig())

	sim.AdvanceBackground()
	if sim.BackgroundIndex() != 0 {
		t.Errorf("index advanced without backgrounds")
	}

	var notified []int
	sim.OnBackground = func(i int) { notified = append(notified, i) }

	sim.SetBackgroundCount(3)
	for _, want := range []int{1, 2, 0, 1} {
		sim.AdvanceBackground()
		if got := sim.BackgroundIndex(); got != want {
			t.Errorf("index = %d, want %d", got, want)
		}
	}
	if len(notified) != 4 {
		t.Errorf("OnBackground called %d times, want 4", len(notified))
	}

	sim.SetBackgroundCount(1)
	if sim.BackgroundIndex() != 0 {
		t.Errorf("index = %d after shrinking to 1", sim.BackgroundIndex())
	}
}

func TestOnKey(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	sim.SetBackgroundCount(2)

	if !sim.OnKey(' ') || sim.Running() {
		t.Error("space should pause")
	}
	if !sim.OnKey(' ') || !sim.Running() {
		t.Error("space should resume")
	}
	if !sim.OnKey('n') || sim.BackgroundIndex() != 1 {
		t.Error("n should advance the background")
	}
	if sim.OnKey('x') {
		t.Error("unbound key reported as handled")
	}
}

func TestSetDensityClamps(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	tests := []struct {
		in, want float32
	}{
		{1.5, 1.5},
		{-1, 0},
		{10, 4},
	}
	for _, tt := range tests {
		sim.SetDensity(tt.in)
		if got := sim.Density(); got != tt.want {
			t.Errorf("SetDensity(%v) -> %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResetClearsPopulation(t *testing.T) {
	sim := newTestSim(t, config.Default())
	sim.Population().Add(carrier(10, 10))
	sim.SetWeatherMode(ModeRain)
	sim.PointerMove(5, 5)
	sim.Step(1)
	if !sim.Pointer().HasPrev {
		t.Fatal("step should seed the pointer history")
	}
	sim.PointerDown(10, 10)
	if !sim.Reveal().Visible {
		t.Fatal("click on the carrier should reveal")
	}

	sim.Reset()

	if n := sim.Population().Len(); n != 0 {
		t.Errorf("population after reset = %d, want 0", n)
	}
	if !sim.Reveal().Visible {
		t.Error("reset should leave the lore panel alone")
	}
	if sim.WeatherMode() != ModeRain {
		t.Error("reset should keep the selected weather mode")
	}
	if sim.Pointer().HasPrev {
		t.Error("reset should drop the pointer history")
	}
}

func TestAudioReactsThroughStep(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	sp := stillEntity(400, 300)
	sp.Particle.BaseSize = 2
	sim.Population().Add(sp)

	sim.SetSpectrumSource(&fakeSpectrum{bins: filled(128, 255), ok: true})
	sim.Step(16)

	counts := sim.Population().CountByKind()
	if counts[components.KindSpark] != 6 {
		t.Errorf("audio sparks = %d, want 6", counts[components.KindSpark])
	}
	for _, s := range sim.Population().Snapshot() {
		if s.Particle.Size != float32(float64(s.Particle.BaseSize)*1.8) {
			t.Errorf("size %v != base %v * 1.8", s.Particle.Size, s.Particle.BaseSize)
		}
	}

	sim.SetSpectrumSource(nil)
	sim.Step(16)
	if sim.AudioLevel() != 0 {
		t.Errorf("level after the source detached = %v, want 0", sim.AudioLevel())
	}
}

func TestSizesReturnToBaseWhenSourceDetaches(t *testing.T) {
	tests := []struct {
		name string
		gone SpectrumSource
	}{
		{"detached", nil},
		{"silent source", &fakeSpectrum{ok: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSim(t, quietConfig())
			sp := stillEntity(400, 300)
			sp.Particle.BaseSize = 2
			sp.Particle.Size = 2
			sim.Population().Add(sp)

			sim.SetSpectrumSource(&fakeSpectrum{bins: filled(128, 255), ok: true})
			sim.Step(16)
			sim.SetSpectrumSource(tt.gone)
			for i := 0; i < 100; i++ {
				sim.Step(16)
			}

			for _, s := range sim.Population().Snapshot() {
				if s.Particle.Size != s.Particle.BaseSize {
					t.Errorf("%v size = %v, want base %v", s.Particle.Kind, s.Particle.Size, s.Particle.BaseSize)
				}
			}
			if sim.AudioLevel() != 0 {
				t.Errorf("level = %v, want 0", sim.AudioLevel())
			}
		})
	}
}

func TestGustThroughSimulation(t *testing.T) {
	sim := newTestSim(t, quietConfig())
	sim.Population().Add(stillEntity(150, 100))

	sim.PointerMove(100, 100)
	sim.Step(1)
	sim.PointerMove(120, 100)
	sim.Step(1)

	v := sim.Population().Snapshot()[0].Vel
	if v.X <= 0 || v.Y != 0 {
		t.Errorf("velocity = %+v, want a push along +x", v)
	}
}
