package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/ashfall/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeLevelStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, std, p90, peak := ComputeLevelStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0 is sqrt(0.0825)
	if math.Abs(std-math.Sqrt(0.0825)) > 0.001 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(0.0825))
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	if peak != 1.0 {
		t.Errorf("peak = %v, want 1.0", peak)
	}
}

func TestComputeLevelStatsEmpty(t *testing.T) {
	mean, std, p90, peak := ComputeLevelStats(nil)

	if mean != 0 || std != 0 || p90 != 0 || peak != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0)

	c.RecordSpawn(components.KindAmbient)
	c.RecordSpawn(components.KindAmbient)
	c.RecordSpawn(components.KindSpark)
	c.RecordCull(3, 1)
	c.RecordClick(true)
	c.RecordClick(false)
	c.RecordReveal(NewRevealEvent(5, 80, "a.jpg"), true)
	c.RecordWeatherChange(NewWeatherChangeEvent(6, 96, "ash", "rain"))
	c.RecordAudioLevel(0.5)
	c.RecordAudioLevel(1.0)

	if c.ShouldFlush(999) {
		t.Error("ShouldFlush(999) = true before the window elapsed")
	}
	if !c.ShouldFlush(1000) {
		t.Error("ShouldFlush(1000) = false at the window boundary")
	}

	stats := c.Flush(Snapshot{
		Tick:    60,
		SimMS:   1000,
		Counts:  [components.NumKinds]int{10, 2, 1, 0},
		Weather: "rain",
		Density: 1,
		Running: true,
	})

	if stats.Entities != 13 {
		t.Errorf("Entities = %d, want 13", stats.Entities)
	}
	if stats.SpawnedAmbient != 2 || stats.SpawnedSparks != 1 {
		t.Errorf("spawns = (%d, %d), want (2, 1)", stats.SpawnedAmbient, stats.SpawnedSparks)
	}
	if stats.Expired != 3 || stats.Offscreen != 1 {
		t.Errorf("culls = (%d, %d), want (3, 1)", stats.Expired, stats.Offscreen)
	}
	if stats.Clicks != 2 || stats.MissWisps != 1 || stats.Reveals != 1 {
		t.Errorf("clicks/miss/reveals = %d/%d/%d, want 2/1/1", stats.Clicks, stats.MissWisps, stats.Reveals)
	}
	if stats.RevealImageRate != 1 {
		t.Errorf("RevealImageRate = %v, want 1", stats.RevealImageRate)
	}
	if stats.AudioLevelMean != 0.75 || stats.AudioLevelMax != 1.0 {
		t.Errorf("audio mean/max = %v/%v, want 0.75/1.0", stats.AudioLevelMean, stats.AudioLevelMax)
	}
	if stats.SimTimeSec != 1.0 {
		t.Errorf("SimTimeSec = %v, want 1.0", stats.SimTimeSec)
	}

	events := c.DrainEvents()
	if len(events) != 2 {
		t.Fatalf("drained %d events, want 2", len(events))
	}
	if events[1].Name != "weather_change" || events[1].Detail != "ash->rain" {
		t.Errorf("event = %+v, want weather_change ash->rain", events[1])
	}
	if c.DrainEvents() != nil {
		t.Error("second drain should be empty")
	}

	// Counters reset after flush
	next := c.Flush(Snapshot{Tick: 120, SimMS: 2000})
	if next.Clicks != 0 || next.SpawnedAmbient != 0 || next.AudioLevelMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartTick != 60 {
		t.Errorf("WindowStartTick = %d, want 60", next.WindowStartTick)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	c.RecordSpawn(components.KindWisp)
	c.RecordCull(1, 1)
	c.RecordClick(true)
	c.RecordAudioLevel(0.3)
	if c.ShouldFlush(1e9) {
		t.Error("nil collector should never flush")
	}
	if c.DrainEvents() != nil {
		t.Error("nil collector should have no events")
	}
}
