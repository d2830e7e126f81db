package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase is a timed section of the simulation step.
type Phase uint8

// Step phases, in execution order.
const (
	PhaseWeather Phase = iota
	PhaseRare
	PhaseGust
	PhaseAudio
	PhaseIntegrate
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"weather", "rare", "gust", "audio", "integrate", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// noPhase marks that no phase is open.
const noPhase = NumPhases

type perfSample struct {
	tick     time.Duration
	phases   [NumPhases]time.Duration
	entities int
}

// PerfCollector keeps step timings over a rolling window of ticks.
// A nil collector ignores every call.
type PerfCollector struct {
	samples []perfSample
	next    int
	count   int

	current    perfSample
	tickStart  time.Time
	phaseStart time.Time
	open       Phase

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]perfSample, windowSize),
		open:    noPhase,
	}
}

// StartTick begins timing a simulation step.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = time.Now()
	p.current = perfSample{}
	p.open = noPhase
}

// StartPhase closes the open phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.open = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.open < NumPhases {
		p.current.phases[p.open] += now.Sub(p.phaseStart)
	}
	p.open = noPhase
}

// EndTick records the step. entities is the population after the step.
func (p *PerfCollector) EndTick(entities int) {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.current.tick = now.Sub(p.tickStart)
	p.current.entities = entities

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	p.count = min(p.count+1, len(p.samples))
}

// RecordFrame marks a rendered frame. Call once per frame.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the window.
type PerfStats struct {
	AvgTick time.Duration
	P95Tick time.Duration
	MaxTick time.Duration

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // Share of the average step

	AvgEntities float64
	NSPerEntity float64 // Average step cost per live entity

	TicksPerSecond float64
	FrameDuration  time.Duration
	FPS            float64
}

// Stats aggregates the current window. Returns zero stats for a nil
// collector.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p == nil {
		return s
	}
	s.FrameDuration = p.frame
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	ticks := make([]float64, p.count)
	entities := make([]float64, p.count)
	var phaseSum [NumPhases]time.Duration
	for i, sample := range p.samples[:p.count] {
		ticks[i] = float64(sample.tick)
		entities[i] = float64(sample.entities)
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}

	avg := stat.Mean(ticks, nil)
	s.AvgTick = time.Duration(avg)
	s.MaxTick = time.Duration(floats.Max(ticks))
	sort.Float64s(ticks)
	s.P95Tick = time.Duration(Percentile(ticks, 0.95))

	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / time.Duration(p.count)
		if avg > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / avg * 100
		}
	}

	s.AvgEntities = stat.Mean(entities, nil)
	if s.AvgEntities > 0 {
		s.NSPerEntity = avg / s.AvgEntities
	}
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}
	return s
}

// LogStats logs the window as a "perf" record.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are omitted.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ns_per_entity", s.NSPerEntity),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	AvgEntities  float64 `csv:"avg_entities"`
	NSPerEntity  float64 `csv:"ns_per_entity"`
	FPS          float64 `csv:"fps"`
	WeatherPct   float64 `csv:"weather_pct"`
	RarePct      float64 `csv:"rare_pct"`
	GustPct      float64 `csv:"gust_pct"`
	AudioPct     float64 `csv:"audio_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTick.Microseconds(),
		P95TickUS:    s.P95Tick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		AvgEntities:  s.AvgEntities,
		NSPerEntity:  s.NSPerEntity,
		FPS:          s.FPS,
		WeatherPct:   s.PhasePct[PhaseWeather],
		RarePct:      s.PhasePct[PhaseRare],
		GustPct:      s.PhasePct[PhaseGust],
		AudioPct:     s.PhasePct[PhaseAudio],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
