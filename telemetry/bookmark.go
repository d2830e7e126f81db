package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkAudioSurge   BookmarkType = "audio_surge"
	BookmarkEmberStorm   BookmarkType = "ember_storm"
	BookmarkSwarm        BookmarkType = "swarm"
	BookmarkThinning     BookmarkType = "thinning"
	BookmarkRevealStreak BookmarkType = "reveal_streak"
	BookmarkCalm         BookmarkType = "calm"
)

// Bookmark thresholds.
const (
	surgeRatio      = 2.0
	surgeMinLevel   = 0.25
	stormRatio      = 2.0
	stormMinSparks  = 50
	swarmRatio      = 1.5
	swarmMinCount   = 600
	thinningDrop    = 0.5
	thinningMinLoss = 100
	streakReveals   = 3
	calmMaxLevel    = 0.05
	calmMaxCV2      = 0.04 // CV^2 < 0.04 means CV < 0.2
	calmWindows     = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable windows in a run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentPeak  int // Peak entity count since the last thinning
	calmWindows int // Consecutive quiet, steady windows
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < calmWindows {
		historySize = calmWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
// A nil detector never triggers.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	if bd == nil {
		return nil
	}
	var bookmarks []Bookmark

	checks := []func(WindowStats) *Bookmark{
		bd.checkAudioSurge,
		bd.checkEmberStorm,
		bd.checkSwarm,
		bd.checkThinning,
		bd.checkRevealStreak,
		bd.checkCalm,
	}
	for _, check := range checks {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.Entities > bd.recentPeak {
		bd.recentPeak = stats.Entities
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	history := bd.getHistory()
	n = min(n, len(history))
	out := make([]WindowStats, n)
	for i := range out {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

// historyMean averages field over the history. ok is false with fewer
// than three windows.
func (bd *BookmarkDetector) historyMean(field func(WindowStats) float64) (mean float64, ok bool) {
	history := bd.getHistory()
	if len(history) < 3 {
		return 0, false
	}
	values := make([]float64, len(history))
	for i, h := range history {
		values[i] = field(h)
	}
	return stat.Mean(values, nil), true
}

func (bd *BookmarkDetector) checkAudioSurge(stats WindowStats) *Bookmark {
	avg, ok := bd.historyMean(func(s WindowStats) float64 { return s.AudioLevelMean })
	if !ok || stats.AudioLevelMean < surgeMinLevel {
		return nil
	}
	if avg > 0 && stats.AudioLevelMean <= avg*surgeRatio {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkAudioSurge,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Audio level %.2f against average %.2f", stats.AudioLevelMean, avg),
	}
}

func (bd *BookmarkDetector) checkEmberStorm(stats WindowStats) *Bookmark {
	avg, ok := bd.historyMean(func(s WindowStats) float64 { return float64(s.SpawnedSparks) })
	if !ok || stats.SpawnedSparks < stormMinSparks {
		return nil
	}
	if avg > 0 && float64(stats.SpawnedSparks) <= avg*stormRatio {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkEmberStorm,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d sparks spawned against average %.0f", stats.SpawnedSparks, avg),
	}
}

func (bd *BookmarkDetector) checkSwarm(stats WindowStats) *Bookmark {
	avg, ok := bd.historyMean(func(s WindowStats) float64 { return float64(s.Entities) })
	if !ok || avg == 0 || stats.Entities < swarmMinCount {
		return nil
	}
	if float64(stats.Entities) <= avg*swarmRatio {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSwarm,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d entities is %.1fx average (%.0f)", stats.Entities, float64(stats.Entities)/avg, avg),
	}
}

func (bd *BookmarkDetector) checkThinning(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Entities)/float64(bd.recentPeak)
	if drop > thinningDrop && stats.Entities < bd.recentPeak-thinningMinLoss {
		// Reset peak after triggering
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Entities

		return &Bookmark{
			Type:        BookmarkThinning,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population fell %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Entities),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkRevealStreak(stats WindowStats) *Bookmark {
	if stats.Reveals < streakReveals {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkRevealStreak,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d fragments revealed in one window", stats.Reveals),
	}
}

func (bd *BookmarkDetector) checkCalm(stats WindowStats) *Bookmark {
	if stats.Clicks > 0 || stats.AudioLevelMax > calmMaxLevel || stats.Entities == 0 {
		bd.calmWindows = 0
		return nil
	}

	previous := bd.recent(calmWindows - 1)
	if len(previous) < calmWindows-1 {
		return nil
	}

	// Steady population over the last windows, including this one
	counts := make([]float64, 0, calmWindows)
	for _, h := range previous {
		counts = append(counts, float64(h.Entities))
	}
	counts = append(counts, float64(stats.Entities))
	mean, variance := stat.PopMeanVariance(counts, nil)

	if mean > 0 && variance/(mean*mean) < calmMaxCV2 {
		bd.calmWindows++
	} else {
		bd.calmWindows = 0
	}

	if bd.calmWindows == calmWindows { // trigger exactly once per calm stretch
		return &Bookmark{
			Type:        BookmarkCalm,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Quiet, steady population around %.0f over %d windows", mean, calmWindows),
		}
	}
	return nil
}
