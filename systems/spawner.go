package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/viewport"
)

// Generator identifies a weather-driven spawn distribution.
type Generator uint8

const (
	GenAmbient Generator = iota // Uniform drift across the viewport
	GenAsh                      // Slow fall from the top edge
	GenSnow                     // Faster, larger fall from the top edge
	GenRain                     // Fast near-vertical streaks
	GenSparks                   // Embers in the upper half
)

// String returns the config name of a generator.
func (g Generator) String() string {
	if int(g) < len(config.SpawnKinds) {
		return config.SpawnKinds[g]
	}
	return "unknown"
}

// ParseGenerator maps a config spawn kind to its generator.
func ParseGenerator(name string) (Generator, error) {
	for i, k := range config.SpawnKinds {
		if k == name {
			return Generator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown spawn kind %q", name)
}

// SpawnCount converts a fractional per-tick rate into an entity count.
// Any positive rate yields at least one entity.
func SpawnCount(rate, density float32) int {
	c := rate * density
	if c <= 0 {
		return 0
	}
	return int(math.Ceil(float64(c)))
}

// Spawner samples initial entity state for every behavior.
type Spawner struct {
	rng *rand.Rand

	interactiveChance float32
	linkedImageChance float32
	images            int
}

// NewSpawner creates a spawner drawing from rng.
func NewSpawner(rng *rand.Rand, cfg *config.InteractionConfig) *Spawner {
	return &Spawner{
		rng:               rng,
		interactiveChance: float32(cfg.InteractiveChance),
		linkedImageChance: float32(cfg.LinkedImageChance),
	}
}

// SetImageCount sets how many background images carriers may link to.
func (s *Spawner) SetImageCount(n int) {
	s.images = n
}

func (s *Spawner) r() float32 {
	return s.rng.Float32()
}

// Generate samples one entity from a weather generator.
func (s *Spawner) Generate(g Generator, v viewport.Viewport) components.Spawn {
	switch g {
	case GenAmbient:
		return s.Ambient(v)
	case GenAsh:
		return s.Ash(v)
	case GenSnow:
		return s.Snow(v)
	case GenRain:
		return s.Rain(v)
	case GenSparks:
		return s.Spark(v)
	default:
		panic(fmt.Sprintf("systems: unknown generator %d", g))
	}
}

// Ambient samples a drifting dust mote anywhere in the viewport.
// A small share become lore carriers.
func (s *Spawner) Ambient(v viewport.Viewport) components.Spawn {
	sp := newSpawn(components.KindAmbient,
		s.r()*v.W, s.r()*v.H,
		(s.r()-0.5)*0.3, s.r()*0.15+0.02,
		s.r()*3+1,
		s.r()*0.5+0.15,
		components.Forever,
	)
	if s.r() < s.interactiveChance {
		sp.Particle.Interactive = true
		if s.images > 0 && s.r() < s.linkedImageChance {
			sp.Particle.Image = int32(s.rng.Intn(s.images))
		}
	}
	return sp
}

// Ash samples a flake falling from the top edge. Lifetime lets it reach
// the bottom at its fall speed.
func (s *Spawner) Ash(v viewport.Viewport) components.Spawn {
	return newSpawn(components.KindAmbient,
		s.r()*v.W, -10,
		(s.r()-0.5)*0.2, s.r()*0.6+0.1,
		s.r()*2+0.6,
		s.r()*0.5+0.05,
		v.H/(0.6+s.r()*0.4),
	)
}

// Snow samples a larger, faster flake falling from the top edge.
func (s *Spawner) Snow(v viewport.Viewport) components.Spawn {
	return newSpawn(components.KindAmbient,
		s.r()*v.W, -6,
		(s.r()-0.5)*0.4, s.r()*0.8+0.2,
		s.r()*3+1.2,
		s.r()*0.6+0.2,
		v.H/0.6,
	)
}

// Rain samples a fast streak with a short lifetime.
func (s *Spawner) Rain(v viewport.Viewport) components.Spawn {
	return newSpawn(components.KindAmbient,
		s.r()*v.W, -6,
		(s.r()-0.2)*1.0, s.r()*8+8,
		s.r()*1.2+0.6,
		0.6,
		v.H/8,
	)
}

// Spark samples an ember in the upper half of the viewport.
func (s *Spawner) Spark(v viewport.Viewport) components.Spawn {
	return newSpawn(components.KindSpark,
		s.r()*v.W, s.r()*v.H*0.5,
		(s.r()-0.5)*2, (s.r()-0.8)*1,
		s.r()*2+0.4,
		s.r()*0.9+0.1,
		100+s.r()*200,
	)
}

// Wisp samples a slow orb at (x, y).
func (s *Spawner) Wisp(x, y float32) components.Spawn {
	return newSpawn(components.KindWisp,
		x, y,
		(s.r()-0.5)*0.5, (s.r()-0.5)*0.5,
		s.r()*6+4,
		0.9,
		300+s.r()*800,
	)
}

// Rune samples a sigil at (x, y).
func (s *Spawner) Rune(x, y float32) components.Spawn {
	return newSpawn(components.KindRune,
		x, y,
		(s.r()-0.5)*0.4, (s.r()-0.5)*0.4,
		s.r()*4+2,
		0.8,
		120+s.r()*200,
	)
}

// ShootingStar samples a fast spark crossing from the left edge.
func (s *Spawner) ShootingStar(v viewport.Viewport) components.Spawn {
	return newSpawn(components.KindSpark,
		0, s.r()*v.H*0.4,
		8+s.r()*6, 1+s.r()*2,
		2+s.r()*2,
		1,
		v.W/8,
	)
}

// BurstSpark samples one spark of a reveal burst at (x, y).
func (s *Spawner) BurstSpark(x, y float32) components.Spawn {
	return newSpawn(components.KindSpark,
		x, y,
		(s.r()-0.5)*6, (s.r()-0.5)*6,
		s.r()*2+0.8,
		1,
		40+s.r()*80,
	)
}

func newSpawn(kind components.Kind, x, y, vx, vy, size, alpha, life float32) components.Spawn {
	return components.Spawn{
		Pos: components.Position{X: x, Y: y},
		Vel: components.Velocity{X: vx, Y: vy},
		Particle: components.Particle{
			Size:     size,
			BaseSize: size,
			Alpha:    alpha,
			Lifetime: life,
			Kind:     kind,
			Image:    components.NoImage,
		},
	}
}
