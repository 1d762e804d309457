package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"moodtrack/internal/testutil"
	"moodtrack/internal/tracker"
)

func TestMoodRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds and persists an empty store", func(t *testing.T) {
		store := newStore()
		repo := newMoodRepo(store)

		got := repo.List(ctx)
		if !reflect.DeepEqual(got, tracker.SeedMoods()) {
			t.Errorf("List() = %+v, want seed set", got)
		}
		if _, ok, _ := store.Get(ctx, tracker.KeyMoods); !ok {
			t.Error("seed set was not persisted")
		}
	})

	t.Run("read failure yields seed without persisting", func(t *testing.T) {
		store := testutil.NewFailingStore(newStore())
		store.FailReads(true)
		logger := testutil.NewRecordingLogger()
		repo := tracker.NewMoodRepository(store, nil, testutil.FixedClock(), logger)

		got := repo.List(ctx)
		if len(got) != len(tracker.SeedMoods()) {
			t.Errorf("len(List()) = %d, want %d", len(got), len(tracker.SeedMoods()))
		}
		if store.Sets() != 0 {
			t.Errorf("List() wrote %d times, want 0", store.Sets())
		}
		if !logger.Has("WARN", "reading moods failed") {
			t.Errorf("missing warning, got:\n%s", logger)
		}
	})

	t.Run("corrupt data yields seed", func(t *testing.T) {
		store := newStore()
		if err := store.Set(ctx, tracker.KeyMoods, "{not json"); err != nil {
			t.Fatal(err)
		}
		got := newMoodRepo(store).List(ctx)
		if len(got) != len(tracker.SeedMoods()) {
			t.Errorf("len(List()) = %d, want seed set", len(got))
		}
	})

	t.Run("stored empty collection stays empty", func(t *testing.T) {
		store := newStore()
		if err := store.Set(ctx, tracker.KeyMoods, "[]"); err != nil {
			t.Fatal(err)
		}
		if got := newMoodRepo(store).List(ctx); len(got) != 0 {
			t.Errorf("List() = %+v, want empty", got)
		}
	})
}

func TestMoodRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("new date gets next id", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		saved, err := repo.Save(ctx, entry("2024-01-01", 5))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if saved.ID != 5 {
			t.Errorf("ID = %d, want 5", saved.ID)
		}
		if got := len(repo.List(ctx)); got != 5 {
			t.Errorf("len(List()) = %d, want 5", got)
		}
	})

	t.Run("same date collapses and keeps id", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		first, err := repo.Save(ctx, entry("2024-01-01", 3))
		if err != nil {
			t.Fatalf("first Save() error = %v", err)
		}
		second, err := repo.Save(ctx, entry("2024-01-01", 7))
		if err != nil {
			t.Fatalf("second Save() error = %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("ID changed from %d to %d", first.ID, second.ID)
		}

		var matches []tracker.MoodEntry
		for _, e := range repo.List(ctx) {
			if e.Date == "2024-01-01" {
				matches = append(matches, e)
			}
		}
		if len(matches) != 1 {
			t.Fatalf("%d entries for 2024-01-01, want 1", len(matches))
		}
		if matches[0].Mood.Score != 7 || matches[0].Mood.Category != tracker.CategoryHypomania {
			t.Errorf("stored mood = %+v, want score 7 Hypomania", matches[0].Mood)
		}
	})

	t.Run("category is derived from score", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		e := entry("2024-02-01", 2)
		e.Mood.Category = "Mania"
		saved, err := repo.Save(ctx, e)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if saved.Mood.Category != tracker.CategoryDepression {
			t.Errorf("Category = %q, want %q", saved.Mood.Category, tracker.CategoryDepression)
		}
	})

	t.Run("round trip keeps every field", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		e := tracker.MoodEntry{
			Date:     "2024-03-10",
			Mood:     tracker.Mood{Name: "Calm", Score: 5},
			Emotions: []tracker.Emotion{{ID: 4, Name: "Calm"}, {ID: 21, Name: "Restless"}},
			Notes:    "walked by the river",
			MedicationsTaken: []tracker.MedicationSnapshot{
				{ID: 1, Name: "Lithium", Dosage: "300mg", Frequency: "Twice daily", Taken: true},
				{ID: 2, Name: "Lamotrigine", Dosage: "200mg", Taken: false},
			},
		}
		saved, err := repo.Save(ctx, e)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got := repo.GetByDate(ctx, "2024-03-10")
		if got == nil {
			t.Fatal("GetByDate() = nil")
		}
		if !reflect.DeepEqual(*got, *saved) {
			t.Errorf("GetByDate() = %+v, want %+v", *got, *saved)
		}
		if got.Notes != e.Notes || len(got.Emotions) != 2 || len(got.MedicationsTaken) != 2 {
			t.Errorf("fields lost in round trip: %+v", *got)
		}
	})

	t.Run("latest is the newest date regardless of save order", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		for _, d := range []string{"2024-01-01", "2024-01-03", "2024-01-02"} {
			if _, err := repo.Save(ctx, entry(d, 5)); err != nil {
				t.Fatalf("Save(%s) error = %v", d, err)
			}
		}
		latest := repo.GetLatest(ctx)
		if latest == nil || latest.Date != "2024-01-03" {
			t.Errorf("GetLatest() = %+v, want 2024-01-03", latest)
		}
	})

	t.Run("caller's slices are not retained", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		e := entry("2024-04-01", 5)
		e.Emotions = []tracker.Emotion{{ID: 1, Name: "Happy"}}
		saved, err := repo.Save(ctx, e)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		e.Emotions[0].Name = "changed"
		if saved.Emotions[0].Name != "Happy" {
			t.Error("Save() result aliases the caller's slice")
		}
	})
}

func TestMoodRepository_Save_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		entry     tracker.MoodEntry
		wantField string
	}{
		{name: "malformed date", entry: entry("01/02/2024", 5), wantField: "date"},
		{name: "impossible date", entry: entry("2024-02-30", 5), wantField: "date"},
		{name: "score above range", entry: entry("2024-01-01", 11), wantField: "score"},
		{name: "score below range", entry: entry("2024-01-01", -1), wantField: "score"},
		{
			name: "duplicate emotion",
			entry: tracker.MoodEntry{
				Date:     "2024-01-01",
				Mood:     tracker.Mood{Score: 5},
				Emotions: []tracker.Emotion{{ID: 1, Name: "Happy"}, {ID: 1, Name: "Happy"}},
			},
			wantField: "emotions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFailingStore(newStore())
			repo := newMoodRepo(store)

			_, err := repo.Save(ctx, tt.entry)
			var verr *tracker.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Save() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if store.Sets() != 0 {
				t.Errorf("Save() wrote %d times, want 0", store.Sets())
			}
		})
	}
}

func TestMoodRepository_Save_StorageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("write failure is surfaced and nothing changes", func(t *testing.T) {
		store := testutil.NewFailingStore(newStore())
		repo := newMoodRepo(store)
		before := repo.List(ctx)

		notified := 0
		repo.Subscribe(func(tracker.Change) { notified++ })

		store.FailWrites(true)
		if _, err := repo.Save(ctx, entry("2024-01-01", 5)); !errors.Is(err, testutil.ErrInjected) {
			t.Fatalf("Save() error = %v, want ErrInjected", err)
		}
		store.FailWrites(false)

		if notified != 0 {
			t.Errorf("listeners notified %d times, want 0", notified)
		}
		if after := repo.List(ctx); !reflect.DeepEqual(after, before) {
			t.Errorf("List() changed after failed save: %+v", after)
		}
	})

	t.Run("read failure is surfaced and data is not replaced by the seed", func(t *testing.T) {
		store := testutil.NewFailingStore(newStore())
		repo := newMoodRepo(store)
		if err := store.Set(ctx, tracker.KeyMoods, "[]"); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.Save(ctx, entry("2024-01-01", 5)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		store.FailReads(true)
		if _, err := repo.Save(ctx, entry("2024-01-02", 5)); !errors.Is(err, testutil.ErrInjected) {
			t.Fatalf("Save() error = %v, want ErrInjected", err)
		}
		store.FailReads(false)

		got := repo.List(ctx)
		if len(got) != 1 || got[0].Date != "2024-01-01" {
			t.Errorf("List() = %+v, want only 2024-01-01", got)
		}
	})
}

func TestMoodRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMoodRepo(newStore())

	saved, err := repo.Save(ctx, entry("2024-01-01", 5))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	removed, err := repo.Delete(ctx, saved.ID)
	if err != nil || !removed {
		t.Fatalf("Delete() = (%v, %v), want (true, nil)", removed, err)
	}
	if repo.GetByDate(ctx, "2024-01-01") != nil {
		t.Error("entry still present after Delete()")
	}

	removed, err = repo.Delete(ctx, saved.ID)
	if err != nil || removed {
		t.Errorf("second Delete() = (%v, %v), want (false, nil)", removed, err)
	}
}

func TestMoodRepository_GetToday(t *testing.T) {
	ctx := context.Background()
	repo := tracker.NewMoodRepository(newStore(), nil, testutil.ClockOn("2024-05-20"), nil)

	if repo.GetToday(ctx) != nil {
		t.Error("GetToday() before logging should be nil")
	}
	if _, err := repo.Save(ctx, entry("2024-05-20", 6)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := repo.GetToday(ctx); got == nil || got.Mood.Score != 6 {
		t.Errorf("GetToday() = %+v, want score 6", got)
	}
}

func TestMoodRepository_GetLatest_Empty(t *testing.T) {
	store := newStore()
	if err := store.Set(context.Background(), tracker.KeyMoods, "[]"); err != nil {
		t.Fatal(err)
	}
	if got := newMoodRepo(store).GetLatest(context.Background()); got != nil {
		t.Errorf("GetLatest() = %+v, want nil", got)
	}
}

func TestMoodRepository_Subscribe(t *testing.T) {
	ctx := context.Background()
	repo := newMoodRepo(newStore())

	var got []tracker.Change
	unsubscribe := repo.Subscribe(func(c tracker.Change) { got = append(got, c) })

	saved, _ := repo.Save(ctx, entry("2024-01-01", 5))
	repo.Save(ctx, entry("2024-01-01", 6))
	repo.Delete(ctx, saved.ID)
	unsubscribe()
	repo.Save(ctx, entry("2024-01-09", 6))

	want := []tracker.Change{
		{Collection: tracker.CollectionMoods, Kind: tracker.ChangeCreated, ID: saved.ID},
		{Collection: tracker.CollectionMoods, Kind: tracker.ChangeUpdated, ID: saved.ID},
		{Collection: tracker.CollectionMoods, Kind: tracker.ChangeDeleted, ID: saved.ID},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changes = %+v, want %+v", got, want)
	}
}

func TestMoodRepository_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()

	t.Run("one repository serializes its saves", func(t *testing.T) {
		repo := newMoodRepo(newStore())
		var wg sync.WaitGroup
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(day int) {
				defer wg.Done()
				if _, err := repo.Save(ctx, entry(fmt.Sprintf("2024-01-%02d", day), day%11)); err != nil {
					t.Errorf("Save() error = %v", err)
				}
			}(i)
		}
		wg.Wait()

		entries := repo.List(ctx)
		if len(entries) != len(tracker.SeedMoods())+20 {
			t.Errorf("len(List()) = %d, want %d", len(entries), len(tracker.SeedMoods())+20)
		}
		ids := make(map[int64]bool)
		for _, e := range entries {
			if ids[e.ID] {
				t.Errorf("duplicate id %d", e.ID)
			}
			ids[e.ID] = true
		}
	})

	t.Run("two repositories on one store never duplicate a date", func(t *testing.T) {
		// Separate instances do not share a lock, so one of two racing
		// writes may be lost. The surviving collection is still consistent.
		store := newStore()
		a, b := newMoodRepo(store), newMoodRepo(store)

		var wg sync.WaitGroup
		for _, repo := range []*tracker.MoodRepository{a, b} {
			wg.Add(1)
			go func(r *tracker.MoodRepository) {
				defer wg.Done()
				if _, err := r.Save(ctx, entry("2024-06-01", 4)); err != nil {
					t.Errorf("Save() error = %v", err)
				}
			}(repo)
		}
		wg.Wait()

		entries := a.List(ctx)
		if len(entries) != len(tracker.SeedMoods())+1 {
			t.Errorf("len(List()) = %d, want %d", len(entries), len(tracker.SeedMoods())+1)
		}
	})
}

// readBarrier holds the first n reads of the wrapped store until all n have
// read, so every reader sees the same snapshot before anyone writes.
type readBarrier struct {
	tracker.KeyValueStore

	mu      sync.Mutex
	n       int
	release chan struct{}
}

func newReadBarrier(store tracker.KeyValueStore, n int) *readBarrier {
	return &readBarrier{KeyValueStore: store, n: n, release: make(chan struct{})}
}

func (b *readBarrier) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := b.KeyValueStore.Get(ctx, key)
	b.mu.Lock()
	if b.n == 0 {
		b.mu.Unlock()
		return value, ok, err
	}
	b.n--
	if b.n == 0 {
		close(b.release)
	}
	b.mu.Unlock()
	<-b.release
	return value, ok, err
}

func TestMoodRepository_CrossInstanceLostUpdate(t *testing.T) {
	ctx := context.Background()
	inner := newStore()
	if err := inner.Set(ctx, tracker.KeyMoods, "[]"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store := newReadBarrier(inner, 2)
	a, b := newMoodRepo(store), newMoodRepo(store)

	var wg sync.WaitGroup
	for i, repo := range []*tracker.MoodRepository{a, b} {
		wg.Add(1)
		go func(r *tracker.MoodRepository, date string) {
			defer wg.Done()
			if _, err := r.Save(ctx, entry(date, 5)); err != nil {
				t.Errorf("Save(%s) error = %v", date, err)
			}
		}(repo, fmt.Sprintf("2024-01-%02d", i+1))
	}
	wg.Wait()

	// Both saves read the empty collection, so the later write replaces the
	// earlier one.
	entries := newMoodRepo(inner).List(ctx)
	if len(entries) != 1 {
		t.Fatalf("len(List()) = %d, want 1 surviving entry: %+v", len(entries), entries)
	}
	if got := entries[0]; got.ID != 1 || (got.Date != "2024-01-01" && got.Date != "2024-01-02") {
		t.Errorf("surviving entry = %+v, want id 1 on one of the saved dates", got)
	}
}

func TestMoodRepository_ClearThenList(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	repo := newMoodRepo(store)

	if _, err := repo.Save(ctx, entry("2024-01-01", 5)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if got := repo.List(ctx); !reflect.DeepEqual(got, tracker.SeedMoods()) {
		t.Errorf("List() after clear = %+v, want seed set", got)
	}
}
