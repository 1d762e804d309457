package tracker_test

import (
	"testing"
	"time"

	"moodtrack/internal/tracker"
)

func TestSeriesForMonth(t *testing.T) {
	entries := []tracker.MoodEntry{
		entry("2024-02-01", 3),
		entry("2024-02-29", 8),
		entry("2024-03-01", 1),
	}

	points := tracker.SeriesForMonth(entries, 2024, time.February)
	if len(points) != 29 {
		t.Fatalf("len = %d, want 29 for a leap February", len(points))
	}
	if p := points[0]; !p.Present || p.Score != 3 || p.Label != "1" {
		t.Errorf("day 1 = %+v, want present score 3", p)
	}
	if p := points[28]; !p.Present || p.Score != 8 || p.Label != "29" {
		t.Errorf("day 29 = %+v, want present score 8", p)
	}
	for _, p := range points[1:28] {
		if p.Present {
			t.Errorf("day %s present, want absent", p.Label)
		}
	}

	if got := len(tracker.SeriesForMonth(nil, 2023, time.February)); got != 28 {
		t.Errorf("len = %d, want 28 for 2023-02", got)
	}
}

func TestSeriesForMonth_ZeroScoreIsPresent(t *testing.T) {
	points := tracker.SeriesForMonth([]tracker.MoodEntry{entry("2024-01-05", 0)}, 2024, time.January)
	if !points[4].Present || points[4].Score != 0 {
		t.Errorf("day 5 = %+v, want present with score 0", points[4])
	}
}

func TestTrimSeries(t *testing.T) {
	mk := func(present ...int) []tracker.Point {
		points := make([]tracker.Point, 10)
		for i := range points {
			points[i].Label = string(rune('a' + i))
		}
		for _, i := range present {
			points[i].Present = true
		}
		return points
	}

	tests := []struct {
		name      string
		points    []tracker.Point
		pad       int
		wantFirst string
		wantLen   int
	}{
		{name: "pads both sides", points: mk(4, 5), pad: 2, wantFirst: "c", wantLen: 6},
		{name: "clamps at start", points: mk(0, 3), pad: 2, wantFirst: "a", wantLen: 6},
		{name: "clamps at end", points: mk(8), pad: 2, wantFirst: "g", wantLen: 4},
		{name: "no padding", points: mk(2, 7), pad: 0, wantFirst: "c", wantLen: 6},
		{name: "nothing present", points: mk(), pad: 2, wantLen: 0},
		{name: "negative pad counts as zero", points: mk(3), pad: -5, wantFirst: "d", wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tracker.TrimSeries(tt.points, tt.pad)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].Label != tt.wantFirst {
				t.Errorf("first = %q, want %q", got[0].Label, tt.wantFirst)
			}
		})
	}
}

func TestSeriesForYear(t *testing.T) {
	entries := []tracker.MoodEntry{
		entry("2024-01-01", 4),
		entry("2024-01-02", 7),
		entry("2024-03-15", 2),
		entry("2023-01-01", 10),
		{Date: "garbage", Mood: tracker.Mood{Score: 10}},
	}

	points := tracker.SeriesForYear(entries, 2024)
	if len(points) != 12 {
		t.Fatalf("len = %d, want 12", len(points))
	}
	if p := points[0]; !p.Present || p.Score != 5.5 || p.Label != "Jan" {
		t.Errorf("January = %+v, want mean 5.5", p)
	}
	if points[1].Present {
		t.Errorf("February = %+v, want absent", points[1])
	}
	if p := points[2]; !p.Present || p.Score != 2 {
		t.Errorf("March = %+v, want 2", p)
	}
}

func TestGroupByMonth(t *testing.T) {
	entries := []tracker.MoodEntry{
		entry("2023-12-31", 5),
		entry("2024-01-02", 5),
		entry("2024-01-20", 5),
		entry("2024-02-01", 5),
		entry("2023-12-01", 5),
		{Date: "not a date"},
	}

	groups := tracker.GroupByMonth(entries)
	wantKeys := []string{"February 2024", "January 2024", "December 2023"}
	if len(groups) != len(wantKeys) {
		t.Fatalf("len = %d, want %d", len(groups), len(wantKeys))
	}
	for i, g := range groups {
		if g.Key != wantKeys[i] {
			t.Errorf("groups[%d].Key = %q, want %q", i, g.Key, wantKeys[i])
		}
	}

	jan := groups[1]
	if jan.Year != 2024 || jan.Month != time.January {
		t.Errorf("January group = %d-%v", jan.Year, jan.Month)
	}
	if len(jan.Entries) != 2 || jan.Entries[0].Date != "2024-01-20" {
		t.Errorf("January entries = %+v, want newest first", jan.Entries)
	}
	dec := groups[2]
	if len(dec.Entries) != 2 || dec.Entries[0].Date != "2023-12-31" {
		t.Errorf("December entries = %+v, want newest first", dec.Entries)
	}
}
