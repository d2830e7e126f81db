package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager when output is disabled")
	}
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("nil WriteStats error: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close error: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager error: %v", err)
	}

	if err := om.WriteStats(WindowStats{WindowEndTick: 60, Weather: "ash", Entities: 300}); err != nil {
		t.Fatalf("WriteStats error: %v", err)
	}
	if err := om.WriteStats(WindowStats{WindowEndTick: 120, Weather: "rain", Entities: 280}); err != nil {
		t.Fatalf("WriteStats error: %v", err)
	}
	if err := om.WriteEvents([]Event{NewRareEvent(7, 112, "wisp")}); err != nil {
		t.Fatalf("WriteEvents error: %v", err)
	}
	if err := om.WriteBookmarks([]Bookmark{{Type: BookmarkCalm, Tick: 120, Description: "steady"}}); err != nil {
		t.Fatalf("WriteBookmarks error: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 60); err != nil {
		t.Fatalf("WritePerf error: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("stats.csv has %d lines, want header + 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,weather") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "120,") || !strings.Contains(lines[2], "rain") {
		t.Errorf("unexpected second row %q", lines[2])
	}

	events, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(events), "rare,wisp") {
		t.Errorf("events.csv missing rare event:\n%s", events)
	}

	bookmarks, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bookmarks), "calm,120,steady") {
		t.Errorf("bookmarks.csv missing calm bookmark:\n%s", bookmarks)
	}
}
