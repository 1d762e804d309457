package tracker

import "context"

// Storage keys. Each key holds an independent JSON document; there is no
// transaction spanning more than one key.
const (
	KeyMoods       = "mood_tracker_moods"
	KeyMedications = "mood_tracker_medications"
	KeyToken       = "token"
	KeyUser        = "user"

	KeyNotificationPermission     = "notification_permission"
	KeyMoodReminderTime           = "mood_reminder_time"
	KeyMedicationRemindersEnabled = "medication_reminders_enabled"
	KeyMoodNotificationID         = "mood_notification_id"
	KeyMedicationNotificationIDs  = "medication_notification_ids"
)

// KeyValueStore is the persistence primitive every repository is built on.
// All operations may fail with an I/O error. Readers are expected to treat a
// failed Get as "no data"; only explicit user-initiated Clear surfaces errors.
type KeyValueStore interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every key in the store.
	Clear(ctx context.Context) error
}
