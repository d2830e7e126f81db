package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/viewport"
)

func TestSpawnCount(t *testing.T) {
	tests := []struct {
		rate, density float32
		want          int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{6, 1, 6},
		{0.2, 1, 1},
		{0.05, 1, 1},
		{0.6, 2, 2},
		{2, 1.5, 3},
		{2, 0, 0},
		{0, 4, 0},
	}

	for _, tt := range tests {
		if got := SpawnCount(tt.rate, tt.density); got != tt.want {
			t.Errorf("SpawnCount(%v, %v) = %d, want %d", tt.rate, tt.density, got, tt.want)
		}
	}
}

func TestParseGenerator(t *testing.T) {
	for i, name := range config.SpawnKinds {
		g, err := ParseGenerator(name)
		if err != nil {
			t.Fatalf("ParseGenerator(%q) error: %v", name, err)
		}
		if g != Generator(i) || g.String() != name {
			t.Errorf("ParseGenerator(%q) = %v", name, g)
		}
	}
	if _, err := ParseGenerator("hail"); err == nil {
		t.Error("ParseGenerator(hail) should fail")
	}
}

type spawnRange struct {
	minX, maxX   float32
	minY, maxY   float32
	minVX, maxVX float32
	minVY, maxVY float32
	minSz, maxSz float32
	minA, maxA   float32
	minL, maxL   float32
	kind         components.Kind
}

func (r spawnRange) check(t *testing.T, s components.Spawn) {
	t.Helper()
	in := func(v, lo, hi float32) bool { return v >= lo && v <= hi }
	p := s.Particle
	switch {
	case !in(s.Pos.X, r.minX, r.maxX), !in(s.Pos.Y, r.minY, r.maxY):
		t.Fatalf("position (%v, %v) out of range", s.Pos.X, s.Pos.Y)
	case !in(s.Vel.X, r.minVX, r.maxVX), !in(s.Vel.Y, r.minVY, r.maxVY):
		t.Fatalf("velocity (%v, %v) out of range", s.Vel.X, s.Vel.Y)
	case !in(p.Size, r.minSz, r.maxSz):
		t.Fatalf("size %v out of [%v, %v]", p.Size, r.minSz, r.maxSz)
	case !in(p.Alpha, r.minA, r.maxA):
		t.Fatalf("alpha %v out of [%v, %v]", p.Alpha, r.minA, r.maxA)
	case !in(p.Lifetime, r.minL, r.maxL):
		t.Fatalf("lifetime %v out of [%v, %v]", p.Lifetime, r.minL, r.maxL)
	case p.Kind != r.kind:
		t.Fatalf("kind = %v, want %v", p.Kind, r.kind)
	case p.BaseSize != p.Size:
		t.Fatalf("base size %v != size %v", p.BaseSize, p.Size)
	case p.Age != 0:
		t.Fatalf("age = %v, want 0", p.Age)
	}
}

func TestSpawnerDistributions(t *testing.T) {
	v := viewport.Viewport{W: 800, H: 600}
	inf := components.Forever

	tests := []struct {
		name string
		gen  func(s *Spawner) components.Spawn
		want spawnRange
	}{
		{"ambient", func(s *Spawner) components.Spawn { return s.Ambient(v) },
			spawnRange{0, 800, 0, 600, -0.15, 0.15, 0.02, 0.17, 1, 4, 0.15, 0.65, inf, inf, components.KindAmbient}},
		{"ash", func(s *Spawner) components.Spawn { return s.Ash(v) },
			spawnRange{0, 800, -10, -10, -0.1, 0.1, 0.1, 0.7, 0.6, 2.6, 0.05, 0.55, 599, 1001, components.KindAmbient}},
		{"snow", func(s *Spawner) components.Spawn { return s.Snow(v) },
			spawnRange{0, 800, -6, -6, -0.2, 0.2, 0.2, 1.0, 1.2, 4.2, 0.2, 0.8, 999, 1001, components.KindAmbient}},
		{"rain", func(s *Spawner) components.Spawn { return s.Rain(v) },
			spawnRange{0, 800, -6, -6, -0.2, 0.8, 8, 16, 0.6, 1.8, 0.6, 0.6, 75, 75, components.KindAmbient}},
		{"spark", func(s *Spawner) components.Spawn { return s.Spark(v) },
			spawnRange{0, 800, 0, 300, -1, 1, -0.8, 0.2, 0.4, 2.4, 0.1, 1.0, 100, 300, components.KindSpark}},
		{"wisp", func(s *Spawner) components.Spawn { return s.Wisp(50, 60) },
			spawnRange{50, 50, 60, 60, -0.25, 0.25, -0.25, 0.25, 4, 10, 0.9, 0.9, 300, 1100, components.KindWisp}},
		{"rune", func(s *Spawner) components.Spawn { return s.Rune(50, 60) },
			spawnRange{50, 50, 60, 60, -0.2, 0.2, -0.2, 0.2, 2, 6, 0.8, 0.8, 120, 320, components.KindRune}},
		{"shooting star", func(s *Spawner) components.Spawn { return s.ShootingStar(v) },
			spawnRange{0, 0, 0, 240, 8, 14, 1, 3, 2, 4, 1, 1, 100, 100, components.KindSpark}},
		{"burst spark", func(s *Spawner) components.Spawn { return s.BurstSpark(5, 7) },
			spawnRange{5, 5, 7, 7, -3, 3, -3, 3, 0.8, 2.8, 1, 1, 40, 120, components.KindSpark}},
	}

	cfg := config.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpawner(rand.New(rand.NewSource(1)), &cfg.Interaction)
			for i := 0; i < 1000; i++ {
				tt.want.check(t, tt.gen(s))
			}
		})
	}
}

func TestSpawnerCarriers(t *testing.T) {
	v := viewport.Viewport{W: 800, H: 600}
	cfg := config.InteractionConfig{InteractiveChance: 1, LinkedImageChance: 1}
	s := NewSpawner(rand.New(rand.NewSource(2)), &cfg)

	// No backgrounds: carriers never link an image
	for i := 0; i < 100; i++ {
		sp := s.Ambient(v)
		if !sp.Particle.Interactive {
			t.Fatal("expected every ambient entity to be interactive")
		}
		if sp.Particle.HasImage() {
			t.Fatal("linked image without backgrounds")
		}
	}

	s.SetImageCount(3)
	for i := 0; i < 100; i++ {
		sp := s.Ambient(v)
		if sp.Particle.Image < 0 || sp.Particle.Image >= 3 {
			t.Fatalf("linked image %d out of [0, 3)", sp.Particle.Image)
		}
	}

	// Non-ambient generators never carry lore
	if sp := s.Ash(v); sp.Particle.Interactive || sp.Particle.HasImage() {
		t.Error("ash flake should not be interactive")
	}
}

func TestSpawnerInteractiveShare(t *testing.T) {
	v := viewport.Viewport{W: 800, H: 600}
	cfg := config.Default()
	s := NewSpawner(rand.New(rand.NewSource(3)), &cfg.Interaction)

	interactive := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if s.Ambient(v).Particle.Interactive {
			interactive++
		}
	}
	// 2% of 20000 = 400
	if interactive < 300 || interactive > 500 {
		t.Errorf("interactive share = %d/%d, want about 2%%", interactive, n)
	}
}
