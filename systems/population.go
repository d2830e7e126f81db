package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ashfall/components"
)

// Population owns the live entities. Spawn order is kept in Particle.Seq,
// since the archetype storage does not preserve insertion order.
type Population struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Particle]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Particle]

	nextSeq uint64
	count   int

	// Scratch buffer for collect-then-remove passes
	doomed []ecs.Entity
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	world := ecs.NewWorld()
	return &Population{
		world:  world,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Particle](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Particle](world),
		doomed: make([]ecs.Entity, 0, 256),
	}
}

// Add inserts a spawned entity and stamps its sequence number.
// Must not be called while a query is open.
func (p *Population) Add(s components.Spawn) ecs.Entity {
	s.Particle.Seq = p.nextSeq
	p.nextSeq++
	entity := p.mapper.NewEntity(&s.Pos, &s.Vel, &s.Particle)
	p.count++
	return entity
}

// Len returns the number of live entities.
func (p *Population) Len() int {
	return p.count
}

// Get returns the components of an entity.
func (p *Population) Get(e ecs.Entity) (*components.Position, *components.Velocity, *components.Particle) {
	return p.mapper.Get(e)
}

// Alive reports whether the entity is still in the population.
func (p *Population) Alive(e ecs.Entity) bool {
	return p.world.Alive(e)
}

// Remove deletes a single entity.
func (p *Population) Remove(e ecs.Entity) {
	p.world.RemoveEntity(e)
	p.count--
}

// Each calls fn for every live entity. fn may mutate the components
// but must not add or remove entities.
func (p *Population) Each(fn func(pos *components.Position, vel *components.Velocity, part *components.Particle)) {
	query := p.filter.Query()
	for query.Next() {
		pos, vel, part := query.Get()
		fn(pos, vel, part)
	}
}

// RemoveWhere deletes every entity for which doomed returns true.
// The predicate may mutate components. Returns the number removed.
func (p *Population) RemoveWhere(doomed func(pos *components.Position, vel *components.Velocity, part *components.Particle) bool) int {
	// First pass: collect (the world is locked during iteration)
	p.doomed = p.doomed[:0]
	query := p.filter.Query()
	for query.Next() {
		pos, vel, part := query.Get()
		if doomed(pos, vel, part) {
			p.doomed = append(p.doomed, query.Entity())
		}
	}

	// Second pass: remove
	for _, e := range p.doomed {
		p.Remove(e)
	}
	return len(p.doomed)
}

// Newest returns the most recently spawned entity matching pred.
func (p *Population) Newest(pred func(pos *components.Position, part *components.Particle) bool) (ecs.Entity, bool) {
	var best ecs.Entity
	var bestSeq uint64
	found := false

	query := p.filter.Query()
	for query.Next() {
		pos, _, part := query.Get()
		if found && part.Seq <= bestSeq {
			continue
		}
		if pred(pos, part) {
			best = query.Entity()
			bestSeq = part.Seq
			found = true
		}
	}
	return best, found
}

// Clear removes every entity. Sequence numbers keep counting.
func (p *Population) Clear() {
	p.RemoveWhere(func(*components.Position, *components.Velocity, *components.Particle) bool {
		return true
	})
}

// Snapshot copies every entity, ordered from oldest to most recent.
func (p *Population) Snapshot() []components.Spawn {
	out := make([]components.Spawn, 0, p.count)
	p.Each(func(pos *components.Position, vel *components.Velocity, part *components.Particle) {
		out = append(out, components.Spawn{Pos: *pos, Vel: *vel, Particle: *part})
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Particle.Seq < out[j].Particle.Seq
	})
	return out
}

// CountByKind returns the number of live entities per behavior tag.
func (p *Population) CountByKind() [components.NumKinds]int {
	var counts [components.NumKinds]int
	p.Each(func(_ *components.Position, _ *components.Velocity, part *components.Particle) {
		if int(part.Kind) < components.NumKinds {
			counts[part.Kind]++
		}
	})
	return counts
}
