package systems

import (
	"math/rand"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/viewport"
)

// RareEvent identifies which rare spawn fired.
type RareEvent uint8

const (
	RareNone RareEvent = iota
	RareWisp
	RareShootingStar
	RareRune
)

// String returns the event name used in logs and telemetry.
func (e RareEvent) String() string {
	switch e {
	case RareWisp:
		return "wisp"
	case RareShootingStar:
		return "shooting_star"
	case RareRune:
		return "rune"
	default:
		return "none"
	}
}

// Rare rolls the occasional wisp, shooting star or rune.
type Rare struct {
	chance    float32
	nominal   float32
	wispShare float32
	starShare float32
}

// NewRare creates the rare event roller from config.
func NewRare(cfg *config.RareConfig) *Rare {
	return &Rare{
		chance:    float32(cfg.ChancePerFrame),
		nominal:   float32(cfg.NominalFrameMS),
		wispShare: float32(cfg.WispShare),
		starShare: float32(cfg.StarShare),
	}
}

// Chance returns the probability that an event fires in a tick of dt ms.
func (r *Rare) Chance(dt float32) float32 {
	return r.chance * dt / r.nominal
}

// Roll decides whether an event fires this tick and samples it.
func (r *Rare) Roll(rng *rand.Rand, sp *Spawner, v viewport.Viewport, dt float32) (RareEvent, components.Spawn) {
	if rng.Float32() >= r.Chance(dt) {
		return RareNone, components.Spawn{}
	}

	pick := rng.Float32()
	switch {
	case pick < r.wispShare:
		return RareWisp, sp.Wisp(rng.Float32()*v.W, rng.Float32()*v.H)
	case pick < r.wispShare+r.starShare:
		return RareShootingStar, sp.ShootingStar(v)
	default:
		// Centered horizontally, a little above the middle
		cx, _ := v.Center()
		x := cx + (rng.Float32()-0.5)*200
		y := v.H*0.4 + (rng.Float32()-0.5)*200
		return RareRune, sp.Rune(x, y)
	}
}
