// Package components defines ECS components for the particle population.
package components

import "math"

// Kind tags an entity with the physical and visual rules it follows.
type Kind uint8

const (
	KindAmbient Kind = iota // Drifting dust, ash, snow and rain
	KindSpark               // Warm glowing ember
	KindWisp                // Large cool orb
	KindRune                // Violet sigil
)

// NumKinds is the number of behavior tags.
const NumKinds = 4

// String returns the display name for a Kind.
func (k Kind) String() string {
	names := KindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// KindNames returns the display names for all kinds.
// The order matches the Kind constants.
func KindNames() []string {
	return []string{"ambient", "spark", "wisp", "rune"}
}

// NoImage marks a particle without a linked image.
const NoImage int32 = -1

// Forever is the lifetime of entities that only die by leaving the viewport.
var Forever = float32(math.Inf(1))

// Position represents an entity's position in viewport units.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in units per millisecond.
type Velocity struct {
	X, Y float32
}

// Particle holds the visual and lifecycle state of an entity.
type Particle struct {
	Size     float32 // Current radius, recomputed from BaseSize by the audio pulse
	BaseSize float32 // Immutable reference size
	Alpha    float32 // [0, 1]

	Age      float32 // Elapsed simulated milliseconds
	Lifetime float32 // Forever for unbounded entities

	Kind        Kind
	Image       int32 // Index into the background set, or NoImage
	Interactive bool  // Clicking reveals lore

	Seq uint64 // Spawn order; higher is more recent
}

// Expired reports whether the particle has outlived its lifetime.
func (p *Particle) Expired() bool {
	return p.Age > p.Lifetime
}

// HasImage reports whether a linked image is attached.
func (p *Particle) HasImage() bool {
	return p.Image != NoImage
}

// Spawn bundles the components of an entity that has not been added to the world yet.
type Spawn struct {
	Pos      Position
	Vel      Velocity
	Particle Particle
}

// Step integrates position by velocity*dt and ages the particle by dt.
// Returns false once the age exceeds the lifetime. Bounds are the caller's job.
func Step(pos *Position, vel *Velocity, p *Particle, dt float32) bool {
	pos.X += vel.X * dt
	pos.Y += vel.Y * dt
	p.Age += dt
	return !p.Expired()
}
