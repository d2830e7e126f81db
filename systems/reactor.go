package systems

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/config"
)

// SpectrumSource yields byte frequency magnitudes in [0, 255].
// Spectrum fills dst (reallocating if needed) and returns false when no
// data is available.
type SpectrumSource interface {
	Spectrum(dst []uint8) ([]uint8, bool)
}

// Reactor turns the low band of an audio spectrum into spark bursts and a
// global size pulse.
type Reactor struct {
	threshold float64
	scale     float64
	pulse     float64

	bins    []uint8
	samples []float64
	level   float64
}

// NewReactor creates an audio reactor from config.
func NewReactor(cfg *config.AudioConfig) *Reactor {
	return &Reactor{
		threshold: cfg.SparkThreshold,
		scale:     cfg.SparkScale,
		pulse:     cfg.SizePulse,
	}
}

// Level returns the low-band level of the last sample, in [0, 1].
func (r *Reactor) Level() float64 {
	return r.level
}

// Sample reads the source and updates the level. Returns false when the
// source is nil or produced nothing, in which case the level is unchanged
// until Release.
func (r *Reactor) Sample(src SpectrumSource) bool {
	if src == nil {
		return false
	}
	bins, ok := src.Spectrum(r.bins)
	r.bins = bins
	if !ok || len(bins) == 0 {
		return false
	}
	r.level = LowBandLevel(bins, &r.samples)
	return true
}

// Release drops the level to zero once the signal is gone. Returns true
// when a non-zero level was dropped and sizes need a final Pulse.
func (r *Reactor) Release() bool {
	if r.level == 0 {
		return false
	}
	r.level = 0
	return true
}

// SparkCount returns how many sparks the current level spawns.
func (r *Reactor) SparkCount() int {
	if r.level <= r.threshold {
		return 0
	}
	return int(math.Floor(r.level * r.scale))
}

// Pulse resizes every entity from its base size.
func (r *Reactor) Pulse(pop *Population) {
	pop.Each(func(_ *components.Position, _ *components.Velocity, part *components.Particle) {
		part.Size = PulseSize(part.BaseSize, r.level, r.pulse)
	})
}

// LowBandLevel averages the lowest third of the bins (rounded up) and
// normalizes to [0, 1]. scratch is reused between calls.
func LowBandLevel(bins []uint8, scratch *[]float64) float64 {
	n := (len(bins) + 2) / 3
	if n == 0 {
		return 0
	}
	buf := (*scratch)[:0]
	for _, b := range bins[:n] {
		buf = append(buf, float64(b))
	}
	*scratch = buf
	return stat.Mean(buf, nil) / 255
}

// PulseSize scales a base size by the audio level.
func PulseSize(base float32, level, pulse float64) float32 {
	return float32(float64(base) * (1 + level*pulse))
}
