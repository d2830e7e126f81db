package telemetry

import "github.com/pthm-cable/ashfall/components"

// Collector accumulates events within windows of simulated time and
// produces WindowStats. A nil collector ignores every call.
type Collector struct {
	windowMS float64

	// Current window tracking
	windowStartTick int64
	windowStartMS   float64

	// Event counters for current window
	spawns         [components.NumKinds]int
	expired        int
	offscreen      int
	clicks         int
	reveals        int
	revealImages   int
	missWisps      int
	rare           int
	weatherChanges int
	backgrounds    int

	audioLevels []float64
	events      []Event
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulated seconds
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 10
	}
	return &Collector{
		windowMS:    windowDurationSec * 1000,
		audioLevels: make([]float64, 0, 1024),
	}
}

// RecordSpawn records a spawned entity.
func (c *Collector) RecordSpawn(kind components.Kind) {
	if c == nil || int(kind) >= components.NumKinds {
		return
	}
	c.spawns[kind]++
}

// RecordCull records entities removed by the lifetime or bounds test.
func (c *Collector) RecordCull(expired, offscreen int) {
	if c == nil {
		return
	}
	c.expired += expired
	c.offscreen += offscreen
}

// RecordClick records a pointer-down. hit reports whether a carrier was revealed.
func (c *Collector) RecordClick(hit bool) {
	if c == nil {
		return
	}
	c.clicks++
	if !hit {
		c.missWisps++
	}
}

// RecordReveal records a lore reveal.
func (c *Collector) RecordReveal(e Event, withImage bool) {
	if c == nil {
		return
	}
	c.reveals++
	if withImage {
		c.revealImages++
	}
	c.events = append(c.events, e)
}

// RecordRare records a rare spawn.
func (c *Collector) RecordRare(e Event) {
	if c == nil {
		return
	}
	c.rare++
	c.events = append(c.events, e)
}

// RecordWeatherChange records an automatic weather transition.
func (c *Collector) RecordWeatherChange(e Event) {
	if c == nil {
		return
	}
	c.weatherChanges++
	c.events = append(c.events, e)
}

// RecordBackground records a background advance.
func (c *Collector) RecordBackground(e Event) {
	if c == nil {
		return
	}
	c.backgrounds++
	c.events = append(c.events, e)
}

// RecordEvent appends an event without touching any counter.
func (c *Collector) RecordEvent(e Event) {
	if c == nil {
		return
	}
	c.events = append(c.events, e)
}

// RecordAudioLevel records the low-band level sampled this tick.
func (c *Collector) RecordAudioLevel(level float64) {
	if c == nil {
		return
	}
	c.audioLevels = append(c.audioLevels, level)
}

// ShouldFlush returns true if enough simulated time has passed to flush the window.
func (c *Collector) ShouldFlush(simMS float64) bool {
	if c == nil {
		return false
	}
	return simMS-c.windowStartMS >= c.windowMS
}

// DrainEvents returns and clears the buffered events.
func (c *Collector) DrainEvents() []Event {
	if c == nil || len(c.events) == 0 {
		return nil
	}
	out := c.events
	c.events = nil
	return out
}

// Snapshot describes the population at the end of a window.
type Snapshot struct {
	Tick    int64
	SimMS   float64
	Counts  [components.NumKinds]int
	Weather string
	Density float64
	Running bool
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(snap Snapshot) WindowStats {
	if c == nil {
		return WindowStats{}
	}

	levelMean, levelStd, levelP90, levelMax := ComputeLevelStats(c.audioLevels)

	total := 0
	for _, n := range snap.Counts {
		total += n
	}

	var revealImageRate float64
	if c.reveals > 0 {
		revealImageRate = float64(c.revealImages) / float64(c.reveals)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   snap.Tick,
		SimTimeSec:      snap.SimMS / 1000,

		Weather: snap.Weather,
		Density: snap.Density,
		Running: snap.Running,

		Entities: total,
		Ambient:  snap.Counts[components.KindAmbient],
		Sparks:   snap.Counts[components.KindSpark],
		Wisps:    snap.Counts[components.KindWisp],
		Runes:    snap.Counts[components.KindRune],

		SpawnedAmbient: c.spawns[components.KindAmbient],
		SpawnedSparks:  c.spawns[components.KindSpark],
		SpawnedWisps:   c.spawns[components.KindWisp],
		SpawnedRunes:   c.spawns[components.KindRune],

		Expired:   c.expired,
		Offscreen: c.offscreen,

		Clicks:          c.clicks,
		Reveals:         c.reveals,
		RevealImageRate: revealImageRate,
		MissWisps:       c.missWisps,

		RareEvents:     c.rare,
		WeatherChanges: c.weatherChanges,
		Backgrounds:    c.backgrounds,

		AudioLevelMean: levelMean,
		AudioLevelStd:  levelStd,
		AudioLevelP90:  levelP90,
		AudioLevelMax:  levelMax,
	}

	// Reset for next window
	c.windowStartTick = snap.Tick
	c.windowStartMS = snap.SimMS
	c.spawns = [components.NumKinds]int{}
	c.expired = 0
	c.offscreen = 0
	c.clicks = 0
	c.reveals = 0
	c.revealImages = 0
	c.missWisps = 0
	c.rare = 0
	c.weatherChanges = 0
	c.backgrounds = 0
	c.audioLevels = c.audioLevels[:0]

	return stats
}

// WindowMS returns the window length in simulated milliseconds.
func (c *Collector) WindowMS() float64 {
	return c.windowMS
}
