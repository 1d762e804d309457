package tracker

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Point is one position on a chart series. Absent points have no data and
// must not be drawn as zero.
type Point struct {
	Label   string
	Score   float64
	Present bool
}

// SeriesForMonth returns one point per calendar day of the month, labelled
// with the day number.
func SeriesForMonth(entries []MoodEntry, year int, month time.Month) []Point {
	byDate := make(map[string]int, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e.Mood.Score
	}

	days := daysIn(year, month)
	points := make([]Point, days)
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		p := Point{Label: strconv.Itoa(d)}
		if score, ok := byDate[date]; ok {
			p.Score = float64(score)
			p.Present = true
		}
		points[d-1] = p
	}
	return points
}

// TrimSeries narrows points to the span between the first and last present
// point, widened by pad on each side. A series with no present point trims
// to nothing. A negative pad counts as zero.
func TrimSeries(points []Point, pad int) []Point {
	pad = max(pad, 0)
	first := slices.IndexFunc(points, func(p Point) bool { return p.Present })
	if first < 0 {
		return []Point{}
	}
	last := first
	for i := len(points) - 1; i > first; i-- {
		if points[i].Present {
			last = i
			break
		}
	}
	lo := max(0, first-pad)
	hi := min(len(points)-1, last+pad)
	return slices.Clone(points[lo : hi+1])
}

// SeriesForYear returns twelve points, one per month, each the mean score of
// that month's entries.
func SeriesForYear(entries []MoodEntry, year int) []Point {
	var sums [12]int
	var counts [12]int
	for _, e := range entries {
		t, err := time.Parse(DateLayout, e.Date)
		if err != nil || t.Year() != year {
			continue
		}
		sums[t.Month()-1] += e.Mood.Score
		counts[t.Month()-1]++
	}

	points := make([]Point, 12)
	for i := range points {
		points[i].Label = time.Month(i + 1).String()[:3]
		if counts[i] > 0 {
			points[i].Score = float64(sums[i]) / float64(counts[i])
			points[i].Present = true
		}
	}
	return points
}

// MonthGroup is the entries of one calendar month.
type MonthGroup struct {
	Key     string
	Year    int
	Month   time.Month
	Entries []MoodEntry
}

// GroupByMonth groups entries by calendar month, keyed "<Month> <Year>".
// Groups are ordered newest month first and entries newest first within a
// group. Entries with unparseable dates are skipped.
func GroupByMonth(entries []MoodEntry) []MonthGroup {
	index := make(map[string]int)
	var groups []MonthGroup
	for _, e := range entries {
		t, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%s %d", t.Month(), t.Year())
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Key: key, Year: t.Year(), Month: t.Month()})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	slices.SortFunc(groups, func(a, b MonthGroup) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	for i := range groups {
		slices.SortStableFunc(groups[i].Entries, func(a, b MoodEntry) int {
			return strings.Compare(b.Date, a.Date)
		})
	}
	return groups
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
