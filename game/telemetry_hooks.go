package game

import "log/slog"

// flushTelemetry closes the stats window once enough simulated time passed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.sim.SimTimeMS()) {
		return
	}
	g.flushWindow()
}

// flushFinal writes whatever the last partial window holds.
func (g *Game) flushFinal() {
	if g.sim.Tick() == 0 {
		return
	}
	g.flushWindow()
}

func (g *Game) flushWindow() {
	stats := g.collector.Flush(g.sim.Snapshot())
	perfStats := g.perfCollector.Stats()
	events := g.collector.DrainEvents()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logWorldState()
	}

	// Write to CSV if output manager is enabled
	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if err := g.outputManager.WriteEvents(events); err != nil {
		slog.Error("failed to write events", "error", err)
	}

	bookmarks := g.bookmarkDetector.Check(stats)
	if g.logStats {
		for _, bm := range bookmarks {
			bm.LogBookmark()
		}
	}
	if err := g.outputManager.WriteBookmarks(bookmarks); err != nil {
		slog.Error("failed to write bookmarks", "error", err)
	}
}
