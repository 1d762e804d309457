package tracker_test

import (
	"context"
	"encoding/json"
	"testing"

	"moodtrack/internal/storage"
	"moodtrack/internal/testutil"
	"moodtrack/internal/tracker"
)

// signedIn returns a SessionStore restored from a persisted token and user.
func signedIn(t *testing.T, store tracker.KeyValueStore, token string, auth tracker.Authenticator) *tracker.SessionStore {
	t.Helper()
	ctx := context.Background()
	user, _ := json.Marshal(tracker.User{ID: 1, Email: "test@example.com", Name: "Test User"})
	if err := store.Set(ctx, tracker.KeyToken, token); err != nil {
		t.Fatalf("Set(token) error = %v", err)
	}
	if err := store.Set(ctx, tracker.KeyUser, string(user)); err != nil {
		t.Fatalf("Set(user) error = %v", err)
	}
	s := tracker.NewSessionStore(store, auth, tracker.NewNopLogger())
	if !s.Restore(ctx) {
		t.Fatal("Restore() = false, want true")
	}
	return s
}

func newMoodRepo(store tracker.KeyValueStore) *tracker.MoodRepository {
	return tracker.NewMoodRepository(store, nil, testutil.FixedClock(), tracker.NewNopLogger())
}

func entry(date string, score int) tracker.MoodEntry {
	return tracker.MoodEntry{Date: date, Mood: tracker.Mood{Name: "Mood", Score: score}}
}

func newStore() *storage.MemoryStore {
	return storage.NewMemoryStore()
}
