package systems

import (
	"math"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
)

// Pointer tracks the current and previous pointer samples.
type Pointer struct {
	X, Y         float32
	PrevX, PrevY float32
	HasPrev      bool
	Down         bool
	seen         bool
}

// Move records a new pointer position.
func (p *Pointer) Move(x, y float32) {
	p.X, p.Y = x, y
	p.seen = true
}

// Displacement returns the motion since the previous sample. It is zero
// until a previous sample exists.
func (p *Pointer) Displacement() (dx, dy float32) {
	if !p.HasPrev {
		return 0, 0
	}
	return p.X - p.PrevX, p.Y - p.PrevY
}

// Advance rolls the current sample into the history.
func (p *Pointer) Advance() {
	if !p.seen {
		return
	}
	p.PrevX, p.PrevY = p.X, p.Y
	p.HasPrev = true
}

// Forget drops the history so the next tick only seeds it.
func (p *Pointer) Forget() {
	p.HasPrev = false
}

// Gust turns pointer motion into velocity impulses on nearby entities.
type Gust struct {
	minDisplacement float32
	strength        float32
	maxImpulse      float32
	radiusSq        float32
	falloff         float32
}

// NewGust creates a force field from config.
func NewGust(cfg *config.GustConfig) *Gust {
	return &Gust{
		minDisplacement: float32(cfg.MinDisplacement),
		strength:        float32(cfg.Strength),
		maxImpulse:      float32(cfg.MaxImpulse),
		radiusSq:        float32(cfg.RadiusSq),
		falloff:         float32(cfg.Falloff),
	}
}

// Force returns the impulse magnitude for a displacement, or 0 when the
// pointer counts as idle.
func (g *Gust) Force(dx, dy float32) float32 {
	mag := magnitude(dx, dy)
	if mag < g.minDisplacement {
		return 0
	}
	return min(g.maxImpulse, mag*g.strength)
}

// Apply pushes every entity near the pointer along the pointer motion,
// then rolls the pointer history forward. Returns the number of entities hit.
// The falloff term goes negative past the falloff distance.
func (g *Gust) Apply(pop *Population, ptr *Pointer) int {
	defer ptr.Advance()

	dx, dy := ptr.Displacement()
	force := g.Force(dx, dy)
	if force == 0 {
		return 0
	}

	hit := 0
	px, py := ptr.X, ptr.Y
	pop.Each(func(pos *components.Position, vel *components.Velocity, _ *components.Particle) {
		dist2 := distanceSq(pos.X, pos.Y, px, py)
		if dist2 >= g.radiusSq {
			return
		}
		dist := float32(math.Sqrt(float64(dist2))) + 0.001
		k := force * (1 - dist/g.falloff) / dist
		vel.X += dx * k
		vel.Y += dy * k
		hit++
	})
	return hit
}
