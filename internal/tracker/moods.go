package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// MoodRepository owns the mood collection stored under KeyMoods.
// The collection is kept sorted newest first and holds at most one entry per date.
type MoodRepository struct {
	store     KeyValueStore
	remote    *FallbackClient
	clock     Clock
	logger    Logger
	mu        sync.Mutex
	listeners listeners[Change]
}

// NewMoodRepository creates a MoodRepository. remote may be nil.
func NewMoodRepository(store KeyValueStore, remote *FallbackClient, clock Clock, logger Logger) *MoodRepository {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &MoodRepository{store: store, remote: remote, clock: clock, logger: logger}
}

// Subscribe registers fn to be called after every successful mutation.
// The returned function removes the subscription.
func (r *MoodRepository) Subscribe(fn func(Change)) func() {
	return r.listeners.add(fn)
}

// NotifyReset tells subscribers the whole collection changed underneath the
// repository, for example after the store was cleared.
func (r *MoodRepository) NotifyReset() {
	r.listeners.notify(Change{Collection: CollectionMoods, Kind: ChangeReset})
}

// List returns every entry, newest first. It never fails: when the stored
// collection cannot be read the seed set is returned without being persisted.
func (r *MoodRepository) List(ctx context.Context) []MoodEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok, err := r.store.Get(ctx, KeyMoods)
	if err != nil {
		r.logger.Warn("reading moods failed, using defaults", "error", err)
		return SeedMoods()
	}
	if ok {
		entries, err := decodeMoods(raw)
		if err != nil {
			r.logger.Warn("decoding moods failed, using defaults", "error", err)
			return SeedMoods()
		}
		return entries
	}

	entries := r.initial(ctx)
	if err := r.persist(ctx, entries); err != nil {
		r.logger.Warn("persisting initial moods failed", "error", err)
	}
	return entries
}

// GetByDate returns the entry for date, or nil.
func (r *MoodRepository) GetByDate(ctx context.Context, date string) *MoodEntry {
	for _, e := range r.List(ctx) {
		if e.Date == date {
			return &e
		}
	}
	return nil
}

// GetLatest returns the entry with the most recent date, or nil when there are none.
func (r *MoodRepository) GetLatest(ctx context.Context) *MoodEntry {
	entries := r.List(ctx)
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}

// GetToday returns the entry for the clock's current date, or nil.
func (r *MoodRepository) GetToday(ctx context.Context) *MoodEntry {
	return r.GetByDate(ctx, Today(r.clock))
}

// Save validates and stores entry. An entry for a date that already exists
// replaces it and keeps the existing id; a new date gets the next id.
// The category is always derived from the score.
func (r *MoodRepository) Save(ctx context.Context, entry MoodEntry) (*MoodEntry, error) {
	if err := ValidateMoodEntry(entry); err != nil {
		return nil, err
	}
	entry = entry.Clone()
	entry.Mood.Category = CategoryForScore(entry.Mood.Score).Name

	r.mu.Lock()
	entries, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("loading moods: %w", err)
	}

	replaced := false
	if i := slices.IndexFunc(entries, func(e MoodEntry) bool { return e.Date == entry.Date }); i >= 0 {
		entry.ID = entries[i].ID
		if entry.ID == 0 {
			entry.ID = nextMoodID(entries)
		}
		entries[i] = entry
		replaced = true
	} else {
		entry.ID = nextMoodID(entries)
		entries = append(entries, entry)
	}
	sortNewestFirst(entries)

	if err := r.persist(ctx, entries); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("saving moods: %w", err)
	}
	r.mu.Unlock()

	kind := ChangeCreated
	if replaced {
		kind = ChangeUpdated
	}
	r.logger.Info("mood saved", "date", entry.Date, "id", entry.ID, "score", entry.Mood.Score, "kind", kind.String())

	if err := r.remote.PushMood(ctx, entry, replaced); err != nil {
		r.logger.Warn("mirroring mood to remote failed", "id", entry.ID, "error", err)
	}
	r.listeners.notify(Change{Collection: CollectionMoods, Kind: kind, ID: entry.ID})

	saved := entry.Clone()
	return &saved, nil
}

// Delete removes the entry with id. It reports whether an entry was removed.
func (r *MoodRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	entries, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return false, fmt.Errorf("loading moods: %w", err)
	}

	i := slices.IndexFunc(entries, func(e MoodEntry) bool { return e.ID == id })
	if i < 0 {
		r.mu.Unlock()
		return false, nil
	}
	entries = slices.Delete(entries, i, i+1)

	if err := r.persist(ctx, entries); err != nil {
		r.mu.Unlock()
		return false, fmt.Errorf("saving moods: %w", err)
	}
	r.mu.Unlock()

	r.logger.Info("mood deleted", "id", id)
	if err := r.remote.RemoveMood(ctx, id); err != nil {
		r.logger.Warn("mirroring mood deletion to remote failed", "id", id, "error", err)
	}
	r.listeners.notify(Change{Collection: CollectionMoods, Kind: ChangeDeleted, ID: id})
	return true, nil
}

// load reads the collection for a mutation. Unlike List it surfaces read
// errors so a failed read never overwrites real data with the seed set.
func (r *MoodRepository) load(ctx context.Context) ([]MoodEntry, error) {
	raw, ok, err := r.store.Get(ctx, KeyMoods)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.initial(ctx), nil
	}
	return decodeMoods(raw)
}

// initial is the collection used when nothing is stored: the remote's if it answers, else the seed set.
func (r *MoodRepository) initial(ctx context.Context) []MoodEntry {
	entries, ok, err := r.remote.FetchMoods(ctx)
	if err != nil {
		r.logger.Warn("fetching moods from remote failed", "error", err)
	}
	if !ok {
		return SeedMoods()
	}
	entries = append([]MoodEntry{}, entries...)
	for i := range entries {
		entries[i].Mood.Category = CategoryForScore(entries[i].Mood.Score).Name
	}
	sortNewestFirst(entries)
	return entries
}

func (r *MoodRepository) persist(ctx context.Context, entries []MoodEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding moods: %w", err)
	}
	return r.store.Set(ctx, KeyMoods, string(data))
}

func decodeMoods(raw string) ([]MoodEntry, error) {
	var entries []MoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decoding moods: %w", err)
	}
	if entries == nil {
		entries = []MoodEntry{}
	}
	return entries, nil
}

// ValidateMoodEntry checks the fields Save requires.
func ValidateMoodEntry(e MoodEntry) error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return invalid("date", "%q is not a YYYY-MM-DD date", e.Date)
	}
	if e.Mood.Score < MinScore || e.Mood.Score > MaxScore {
		return invalid("score", "%d is outside %d-%d", e.Mood.Score, MinScore, MaxScore)
	}
	seen := make(map[int64]bool, len(e.Emotions))
	for _, em := range e.Emotions {
		if seen[em.ID] {
			return invalid("emotions", "emotion %d listed twice", em.ID)
		}
		seen[em.ID] = true
	}
	return nil
}

func nextMoodID(entries []MoodEntry) int64 {
	var maxID int64
	for _, e := range entries {
		maxID = max(maxID, e.ID)
	}
	return maxID + 1
}

func sortNewestFirst(entries []MoodEntry) {
	slices.SortStableFunc(entries, func(a, b MoodEntry) int {
		return strings.Compare(b.Date, a.Date)
	})
}
