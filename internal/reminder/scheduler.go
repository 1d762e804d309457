package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moodtrack/internal/tracker"
)

// DefaultInterval is how often the scheduler looks for due reminders.
const DefaultInterval = time.Minute

// Kind distinguishes mood reminders from medication reminders.
type Kind string

const (
	KindMood       Kind = "mood"
	KindMedication Kind = "medication"
)

// Reminder is a single due notification.
type Reminder struct {
	Kind         Kind
	MedicationID int64
	Title        string
	Body         string
	At           TimeOfDay
}

// key identifies a reminder slot for once-per-day delivery.
func (r Reminder) key() string {
	return fmt.Sprintf("%s/%d/%s", r.Kind, r.MedicationID, r.At)
}

// Notifier delivers reminders to the user.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// MedicationLister is the part of the medication repository the scheduler reads.
type MedicationLister interface {
	List(ctx context.Context) []tracker.Medication
}

// TodayChecker reports today's mood entry, if any.
type TodayChecker interface {
	GetToday(ctx context.Context) *tracker.MoodEntry
}

// Scheduler checks the reminder preferences on a ticker and hands due
// reminders to a Notifier. Each reminder fires at most once per day.
type Scheduler struct {
	prefs    *Preferences
	meds     MedicationLister
	moods    TodayChecker
	notifier Notifier
	clock    tracker.Clock
	interval time.Duration
	logger   tracker.Logger

	mu    sync.Mutex
	fired map[string]string // reminder key -> date last delivered

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler. moods may be nil, in which case the mood
// reminder fires even when today's entry exists.
func NewScheduler(prefs *Preferences, meds MedicationLister, moods TodayChecker, notifier Notifier, clock tracker.Clock, interval time.Duration, logger tracker.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = tracker.RealClock{}
	}
	if logger == nil {
		logger = tracker.NewNopLogger()
	}
	return &Scheduler{
		prefs:    prefs,
		meds:     meds,
		moods:    moods,
		notifier: notifier,
		clock:    clock,
		interval: interval,
		logger:   logger,
		fired:    make(map[string]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Due returns the reminders whose time falls in the window (now-interval, now]
// and that have not been delivered today.
func (s *Scheduler) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	enabled, err := s.prefs.NotificationsEnabled(ctx)
	if err != nil || !enabled {
		return nil, err
	}

	var candidates []Reminder

	at, ok, err := s.prefs.MoodReminder(ctx)
	if err != nil {
		return nil, err
	}
	if ok && (s.moods == nil || s.moods.GetToday(ctx) == nil) {
		candidates = append(candidates, Reminder{
			Kind:  KindMood,
			Title: "How are you feeling?",
			Body:  "Take a moment to log your mood for today.",
			At:    at,
		})
	}

	medsOn, err := s.prefs.MedicationRemindersEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if medsOn && s.meds != nil {
		for _, med := range s.meds.List(ctx) {
			times, bad := ParseTimeList(med.Time)
			if len(bad) > 0 {
				s.logger.Warn("unparseable medication time", "medication_id", med.ID, "times", bad)
			}
			for _, t := range times {
				candidates = append(candidates, Reminder{
					Kind:         KindMedication,
					MedicationID: med.ID,
					Title:        "Medication reminder",
					Body:         fmt.Sprintf("Time to take %s (%s)", med.Name, med.Dosage),
					At:           t,
				})
			}
		}
	}

	today := now.Format(tracker.DateLayout)
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Reminder
	for _, r := range candidates {
		when := r.At.On(now)
		if when.After(now) || !when.After(now.Add(-s.interval)) {
			continue
		}
		if s.fired[r.key()] == today {
			continue
		}
		due = append(due, r)
	}
	return due, nil
}

// Check delivers every due reminder once. Delivery failures are logged and
// the reminder is retried on the next check.
func (s *Scheduler) Check(ctx context.Context) int {
	now := s.clock.Now()
	due, err := s.Due(ctx, now)
	if err != nil {
		s.logger.Error("reading reminder preferences", "error", err)
		return 0
	}

	today := now.Format(tracker.DateLayout)
	sent := 0
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			s.logger.Warn("reminder delivery failed", "kind", r.Kind, "at", r.At.String(), "error", err)
			continue
		}
		s.mu.Lock()
		s.fired[r.key()] = today
		s.mu.Unlock()
		sent++
		s.logger.Info("reminder sent", "kind", r.Kind, "medication_id", r.MedicationID, "at", r.At.String())
	}
	return sent
}

// Start runs the check loop in the background until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		s.Check(ctx)
		for {
			select {
			case <-ticker.C:
				s.Check(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop started by Start and waits for it to exit. It must
// only be called after Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Run is Start followed by waiting for ctx to be done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}
