package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of simulated time.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Controls at window end
	Weather string  `csv:"weather"`
	Density float64 `csv:"density"`
	Running bool    `csv:"running"`

	// Population at window end
	Entities int `csv:"entities"`
	Ambient  int `csv:"ambient"`
	Sparks   int `csv:"sparks"`
	Wisps    int `csv:"wisps"`
	Runes    int `csv:"runes"`

	// Spawns during window
	SpawnedAmbient int `csv:"spawned_ambient"`
	SpawnedSparks  int `csv:"spawned_sparks"`
	SpawnedWisps   int `csv:"spawned_wisps"`
	SpawnedRunes   int `csv:"spawned_runes"`

	// Culling
	Expired   int `csv:"expired"`
	Offscreen int `csv:"offscreen"`

	// Interaction
	Clicks          int     `csv:"clicks"`
	Reveals         int     `csv:"reveals"`
	RevealImageRate float64 `csv:"reveal_image_rate"`
	MissWisps       int     `csv:"miss_wisps"`

	RareEvents     int `csv:"rare_events"`
	WeatherChanges int `csv:"weather_changes"`
	Backgrounds    int `csv:"backgrounds"`

	// Low-band audio level distribution
	AudioLevelMean float64 `csv:"audio_mean"`
	AudioLevelStd  float64 `csv:"audio_std"`
	AudioLevelP90  float64 `csv:"audio_p90"`
	AudioLevelMax  float64 `csv:"audio_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLevelStats calculates mean, population std, p90 and max of audio levels.
func ComputeLevelStats(values []float64) (mean, std, p90, peak float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)
	peak = floats.Max(values)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p90, peak
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("weather", s.Weather),
		slog.Float64("density", s.Density),
		slog.Bool("running", s.Running),
		slog.Int("entities", s.Entities),
		slog.Int("ambient", s.Ambient),
		slog.Int("sparks", s.Sparks),
		slog.Int("wisps", s.Wisps),
		slog.Int("runes", s.Runes),
		slog.Int("spawned_ambient", s.SpawnedAmbient),
		slog.Int("spawned_sparks", s.SpawnedSparks),
		slog.Int("spawned_wisps", s.SpawnedWisps),
		slog.Int("spawned_runes", s.SpawnedRunes),
		slog.Int("expired", s.Expired),
		slog.Int("offscreen", s.Offscreen),
		slog.Int("clicks", s.Clicks),
		slog.Int("reveals", s.Reveals),
		slog.Float64("reveal_image_rate", s.RevealImageRate),
		slog.Int("miss_wisps", s.MissWisps),
		slog.Int("rare_events", s.RareEvents),
		slog.Int("weather_changes", s.WeatherChanges),
		slog.Int("backgrounds", s.Backgrounds),
		slog.Float64("audio_mean", s.AudioLevelMean),
		slog.Float64("audio_std", s.AudioLevelStd),
		slog.Float64("audio_p90", s.AudioLevelP90),
		slog.Float64("audio_max", s.AudioLevelMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
