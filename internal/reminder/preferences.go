package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"moodtrack/internal/tracker"
)

const (
	permissionGranted = "granted"
	permissionDenied  = "denied"
)

// Preferences stores reminder settings and the ids of scheduled reminders in
// the key-value store next to the mood data.
type Preferences struct {
	store tracker.KeyValueStore
	clock tracker.Clock
}

func NewPreferences(store tracker.KeyValueStore, clock tracker.Clock) *Preferences {
	if clock == nil {
		clock = tracker.RealClock{}
	}
	return &Preferences{store: store, clock: clock}
}

// EnableNotifications records that the user allowed reminders.
func (p *Preferences) EnableNotifications(ctx context.Context) error {
	if err := p.store.Set(ctx, tracker.KeyNotificationPermission, permissionGranted); err != nil {
		return fmt.Errorf("enabling notifications: %w", err)
	}
	return nil
}

// DisableNotifications turns off every reminder and forgets scheduled ids.
func (p *Preferences) DisableNotifications(ctx context.Context) error {
	if err := p.store.Set(ctx, tracker.KeyNotificationPermission, permissionDenied); err != nil {
		return fmt.Errorf("disabling notifications: %w", err)
	}
	if err := p.store.Remove(ctx, tracker.KeyMoodReminderTime); err != nil {
		return fmt.Errorf("disabling notifications: %w", err)
	}
	if err := p.SetMedicationReminders(ctx, false); err != nil {
		return err
	}
	return p.CancelAll(ctx)
}

// NotificationsEnabled reports whether the user allowed reminders.
func (p *Preferences) NotificationsEnabled(ctx context.Context) (bool, error) {
	v, ok, err := p.store.Get(ctx, tracker.KeyNotificationPermission)
	if err != nil {
		return false, fmt.Errorf("reading notification permission: %w", err)
	}
	return ok && v == permissionGranted, nil
}

// SetMoodReminder stores the daily mood reminder time and returns the id of
// the scheduled reminder.
func (p *Preferences) SetMoodReminder(ctx context.Context, at TimeOfDay) (string, error) {
	if !at.Valid() {
		return "", fmt.Errorf("invalid reminder time %s", at)
	}
	if err := p.store.Set(ctx, tracker.KeyMoodReminderTime, at.String()); err != nil {
		return "", fmt.Errorf("saving mood reminder time: %w", err)
	}
	id := fmt.Sprintf("mood-reminder-%d", p.clock.Now().UnixMilli())
	if err := p.store.Set(ctx, tracker.KeyMoodNotificationID, id); err != nil {
		return "", fmt.Errorf("saving mood reminder id: %w", err)
	}
	return id, nil
}

// MoodReminder returns the configured mood reminder time. ok is false when
// mood reminders are off.
func (p *Preferences) MoodReminder(ctx context.Context) (at TimeOfDay, ok bool, err error) {
	v, ok, err := p.store.Get(ctx, tracker.KeyMoodReminderTime)
	if err != nil {
		return TimeOfDay{}, false, fmt.Errorf("reading mood reminder time: %w", err)
	}
	if !ok {
		return TimeOfDay{}, false, nil
	}
	at, err = ParseTimeOfDay(v)
	if err != nil {
		return TimeOfDay{}, false, fmt.Errorf("reading mood reminder time: %w", err)
	}
	return at, true, nil
}

// CancelMoodReminder turns the daily mood reminder off.
func (p *Preferences) CancelMoodReminder(ctx context.Context) error {
	for _, key := range []string{tracker.KeyMoodReminderTime, tracker.KeyMoodNotificationID} {
		if err := p.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("canceling mood reminder: %w", err)
		}
	}
	return nil
}

func (p *Preferences) SetMedicationReminders(ctx context.Context, on bool) error {
	if err := p.store.Set(ctx, tracker.KeyMedicationRemindersEnabled, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("saving medication reminder setting: %w", err)
	}
	return nil
}

func (p *Preferences) MedicationRemindersEnabled(ctx context.Context) (bool, error) {
	v, _, err := p.store.Get(ctx, tracker.KeyMedicationRemindersEnabled)
	if err != nil {
		return false, fmt.Errorf("reading medication reminder setting: %w", err)
	}
	return v == "true", nil
}

// ScheduleMedication records one reminder id per dose time of med and returns
// the ids in dose order. Earlier ids for med are replaced.
func (p *Preferences) ScheduleMedication(ctx context.Context, med tracker.Medication) ([]string, error) {
	times, _ := ParseTimeList(med.Time)

	ids, err := p.MedicationReminderIDs(ctx)
	if err != nil {
		return nil, err
	}
	dropMedication(ids, med.ID)

	stamp := p.clock.Now().UnixMilli()
	out := make([]string, 0, len(times))
	for i := range times {
		id := fmt.Sprintf("medication-reminder-%d-%d", med.ID, stamp)
		ids[fmt.Sprintf("%d_%d", med.ID, i+1)] = id
		out = append(out, id)
	}
	if err := p.saveIDs(ctx, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// MedicationReminderIDs returns the scheduled id map keyed "<medicationID>_<suffix>".
func (p *Preferences) MedicationReminderIDs(ctx context.Context) (map[string]string, error) {
	v, ok, err := p.store.Get(ctx, tracker.KeyMedicationNotificationIDs)
	if err != nil {
		return nil, fmt.Errorf("reading medication reminder ids: %w", err)
	}
	ids := make(map[string]string)
	if !ok || v == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(v), &ids); err != nil {
		return nil, fmt.Errorf("decoding medication reminder ids: %w", err)
	}
	if ids == nil {
		ids = make(map[string]string)
	}
	return ids, nil
}

// CancelMedication forgets every reminder id recorded for medicationID.
func (p *Preferences) CancelMedication(ctx context.Context, medicationID int64) error {
	ids, err := p.MedicationReminderIDs(ctx)
	if err != nil {
		return err
	}
	before := len(ids)
	dropMedication(ids, medicationID)
	if len(ids) == before {
		return nil
	}
	return p.saveIDs(ctx, ids)
}

// CancelAll forgets every scheduled reminder id. The reminder settings stay.
func (p *Preferences) CancelAll(ctx context.Context) error {
	for _, key := range []string{tracker.KeyMoodNotificationID, tracker.KeyMedicationNotificationIDs} {
		if err := p.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("canceling reminders: %w", err)
		}
	}
	return nil
}

func (p *Preferences) saveIDs(ctx context.Context, ids map[string]string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding medication reminder ids: %w", err)
	}
	if err := p.store.Set(ctx, tracker.KeyMedicationNotificationIDs, string(data)); err != nil {
		return fmt.Errorf("saving medication reminder ids: %w", err)
	}
	return nil
}

func dropMedication(ids map[string]string, medicationID int64) {
	prefix := strconv.FormatInt(medicationID, 10) + "_"
	maps.DeleteFunc(ids, func(k, _ string) bool { return strings.HasPrefix(k, prefix) })
}
