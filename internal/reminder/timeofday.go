package reminder

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// DefaultMoodReminder is used when no mood reminder time has been chosen.
var DefaultMoodReminder = TimeOfDay{Hour: 20}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Valid reports whether t is a real time of day.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// On returns t on the calendar day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, ref.Location())
}

var timeLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3PM", "3 PM"}

// ParseTimeOfDay accepts 24-hour ("21:00") and 12-hour ("9:00 PM") forms.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

// ParseTimeList parses a comma separated medication schedule such as
// "9:00 AM, 9:00 PM". Unparseable parts are returned in bad.
func ParseTimeList(s string) (times []TimeOfDay, bad []string) {
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := ParseTimeOfDay(part)
		if err != nil {
			bad = append(bad, part)
			continue
		}
		times = append(times, t)
	}
	return times, bad
}
