package tracker

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for mood entry dates.
const DateLayout = "2006-01-02"

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Today returns the clock's current calendar date in DateLayout.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
