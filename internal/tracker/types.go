package tracker

import "slices"

// Emotion is a user-selected or user-defined emotion tag.
type Emotion struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Mood is the self-rated mood of a single day.
// Category is always derived from Score by CategoryForScore when an entry is saved.
type Mood struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

// MedicationSnapshot is a copy of a medication's state at the time a mood
// entry was recorded. It is never a live reference to a Medication.
type MedicationSnapshot struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency,omitempty"`
	Time      string `json:"time,omitempty"`
	Taken     bool   `json:"taken"`
}

// MoodEntry is one calendar day's record. ID is zero until the entry has been
// saved for the first time and never changes afterwards.
type MoodEntry struct {
	ID               int64                `json:"id,omitempty"`
	Date             string               `json:"date"`
	Mood             Mood                 `json:"mood"`
	Emotions         []Emotion            `json:"emotions,omitempty"`
	Notes            string               `json:"notes,omitempty"`
	MedicationsTaken []MedicationSnapshot `json:"medicationsTaken,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e MoodEntry) Clone() MoodEntry {
	e.Emotions = slices.Clone(e.Emotions)
	e.MedicationsTaken = slices.Clone(e.MedicationsTaken)
	return e
}

// Medication is a prescribed medication. Whether it was taken on a given day
// is only recorded inside a MoodEntry snapshot.
type Medication struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Time      string `json:"time,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Snapshot copies the medication into a MedicationSnapshot with the given taken status.
func (m Medication) Snapshot(taken bool) MedicationSnapshot {
	return MedicationSnapshot{
		ID:        m.ID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Frequency: m.Frequency,
		Time:      m.Time,
		Taken:     taken,
	}
}

// User is the authenticated identity.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile is the identity reported by an external sign-in provider.
type Profile struct {
	Subject string `json:"sub,omitempty"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// AuthResult is what a successful login, registration or token exchange returns.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
