package tracker

import "strings"

// SeedMoods returns the entries a fresh install starts with, newest first.
// Ids follow date order so the next saved entry gets id 5.
func SeedMoods() []MoodEntry {
	return []MoodEntry{
		{ID: 4, Date: "2023-10-23", Mood: Mood{Name: "Happy", Score: 8, Category: CategoryHypomania}},
		{ID: 3, Date: "2023-10-22", Mood: Mood{Name: "Calm", Score: 5, Category: CategoryEuthymic}},
		{ID: 2, Date: "2023-10-21", Mood: Mood{Name: "Tired", Score: 2, Category: CategoryDepression}},
		{ID: 1, Date: "2023-10-20", Mood: Mood{Name: "Anxious", Score: 1, Category: CategoryDeepDepression}},
	}
}

// SeedMedications returns the medication list a fresh install starts with.
func SeedMedications() []Medication {
	return []Medication{
		{ID: 1, Name: "Lithium", Dosage: "300mg", Frequency: "Twice daily", Time: "9:00 AM, 9:00 PM", Notes: "Take with food"},
		{ID: 2, Name: "Lamotrigine", Dosage: "200mg", Frequency: "Once daily", Time: "9:00 AM"},
		{ID: 3, Name: "Quetiapine", Dosage: "50mg", Frequency: "At bedtime", Time: "10:00 PM", Notes: "May cause drowsiness"},
	}
}

var defaultEmotionNames = []string{
	"Happy", "Sad", "Anxious", "Calm", "Frustrated",
	"Excited", "Tired", "Energetic", "Angry", "Content",
	"Bored", "Optimistic", "Pessimistic", "Confused", "Confident",
	"Overwhelmed", "Hopeful", "Grateful", "Lonely", "Loved",
}

// DefaultEmotions is the built-in emotion vocabulary offered when logging a mood.
func DefaultEmotions() []Emotion {
	out := make([]Emotion, len(defaultEmotionNames))
	for i, n := range defaultEmotionNames {
		out[i] = Emotion{ID: int64(i + 1), Name: n}
	}
	return out
}

// EmotionByName looks up a default emotion, ignoring case.
func EmotionByName(name string) (Emotion, bool) {
	for i, n := range defaultEmotionNames {
		if strings.EqualFold(n, name) {
			return Emotion{ID: int64(i + 1), Name: n}, true
		}
	}
	return Emotion{}, false
}
