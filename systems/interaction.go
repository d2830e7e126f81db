package systems

import (
	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
)

// Reveal is the lore panel state.
type Reveal struct {
	Visible bool
	Quote   string
	Image   int32 // Background index, or components.NoImage
}

// Interaction resolves pointer-down events against the population.
type Interaction struct {
	minRadius   float32
	radiusScale float32
	burst       int
	imageChance float32
	quotes      []string
}

// NewInteraction creates the click handler from config.
func NewInteraction(cfg *config.InteractionConfig, lore *config.LoreConfig) *Interaction {
	return &Interaction{
		minRadius:   float32(cfg.MinHitRadius),
		radiusScale: float32(cfg.HitRadiusScale),
		burst:       cfg.BurstCount,
		imageChance: float32(cfg.ImageChance),
		quotes:      lore.Quotes,
	}
}

// HitRadius returns the click radius for an entity of the given size.
func (in *Interaction) HitRadius(size float32) float32 {
	return max(in.minRadius, size*in.radiusScale)
}

// Hit reports whether (x, y) lands on an interactive entity.
func (in *Interaction) Hit(pos *components.Position, part *components.Particle, x, y float32) bool {
	if !part.Interactive {
		return false
	}
	r := in.HitRadius(part.Size)
	return distanceSq(pos.X, pos.Y, x, y) < r*r
}

// pointerDown handles a click at (x, y). Returns true when a carrier was revealed.
func (s *Simulation) pointerDown(x, y float32) bool {
	in := s.interaction
	entity, ok := s.pop.Newest(func(pos *components.Position, part *components.Particle) bool {
		return in.Hit(pos, part, x, y)
	})
	if !ok {
		s.add(s.spawner.Wisp(x, y))
		return false
	}

	pos, _, _ := s.pop.Get(entity)
	ex, ey := pos.X, pos.Y

	s.reveal = Reveal{
		Visible: true,
		Quote:   in.quotes[s.rng.Intn(len(in.quotes))],
		Image:   components.NoImage,
	}
	if s.bgCount > 0 && s.rng.Float32() < in.imageChance {
		s.reveal.Image = int32(s.rng.Intn(s.bgCount))
	}

	for i := 0; i < in.burst; i++ {
		s.add(s.spawner.BurstSpark(ex, ey))
	}
	s.pop.Remove(entity)
	return true
}
