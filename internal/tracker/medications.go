package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MedicationRepository owns the medication list stored under KeyMedications.
type MedicationRepository struct {
	store     KeyValueStore
	remote    *FallbackClient
	logger    Logger
	mu        sync.Mutex
	listeners listeners[Change]
}

// NewMedicationRepository creates a MedicationRepository. remote may be nil.
func NewMedicationRepository(store KeyValueStore, remote *FallbackClient, logger Logger) *MedicationRepository {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &MedicationRepository{store: store, remote: remote, logger: logger}
}

// Subscribe registers fn to be called after every successful mutation.
func (r *MedicationRepository) Subscribe(fn func(Change)) func() {
	return r.listeners.add(fn)
}

// NotifyReset tells subscribers the whole list changed underneath the repository.
func (r *MedicationRepository) NotifyReset() {
	r.listeners.notify(Change{Collection: CollectionMedications, Kind: ChangeReset})
}

// List returns every medication. Like MoodRepository.List it never fails.
func (r *MedicationRepository) List(ctx context.Context) []Medication {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok, err := r.store.Get(ctx, KeyMedications)
	if err != nil {
		r.logger.Warn("reading medications failed, using defaults", "error", err)
		return SeedMedications()
	}
	if ok {
		meds, err := decodeMedications(raw)
		if err != nil {
			r.logger.Warn("decoding medications failed, using defaults", "error", err)
			return SeedMedications()
		}
		return meds
	}

	meds := r.initial(ctx)
	if err := r.persist(ctx, meds); err != nil {
		r.logger.Warn("persisting initial medications failed", "error", err)
	}
	return meds
}

// Get returns the medication with id, or nil.
func (r *MedicationRepository) Get(ctx context.Context, id int64) *Medication {
	for _, m := range r.List(ctx) {
		if m.ID == id {
			return &m
		}
	}
	return nil
}

// Add stores a new medication under the next id.
func (r *MedicationRepository) Add(ctx context.Context, med Medication) (*Medication, error) {
	if err := ValidateMedication(med); err != nil {
		return nil, err
	}

	r.mu.Lock()
	meds, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("loading medications: %w", err)
	}
	med.ID = nextMedicationID(meds)
	meds = append(meds, med)
	if err := r.persist(ctx, meds); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("saving medications: %w", err)
	}
	r.mu.Unlock()

	r.logger.Info("medication added", "id", med.ID, "name", med.Name)
	if err := r.remote.PushMedication(ctx, med, false); err != nil {
		r.logger.Warn("mirroring medication to remote failed", "id", med.ID, "error", err)
	}
	r.listeners.notify(Change{Collection: CollectionMedications, Kind: ChangeCreated, ID: med.ID})
	return &med, nil
}

// Update replaces the medication with med.ID. It returns ErrNotFound when no
// medication has that id.
func (r *MedicationRepository) Update(ctx context.Context, med Medication) (*Medication, error) {
	if err := ValidateMedication(med); err != nil {
		return nil, err
	}

	r.mu.Lock()
	meds, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("loading medications: %w", err)
	}
	i := slices.IndexFunc(meds, func(m Medication) bool { return m.ID == med.ID })
	if i < 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("medication %d: %w", med.ID, ErrNotFound)
	}
	meds[i] = med
	if err := r.persist(ctx, meds); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("saving medications: %w", err)
	}
	r.mu.Unlock()

	r.logger.Info("medication updated", "id", med.ID)
	if err := r.remote.PushMedication(ctx, med, true); err != nil {
		r.logger.Warn("mirroring medication to remote failed", "id", med.ID, "error", err)
	}
	r.listeners.notify(Change{Collection: CollectionMedications, Kind: ChangeUpdated, ID: med.ID})
	return &med, nil
}

// Delete removes the medication with id. Deleting an unknown id is not an error.
func (r *MedicationRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	meds, err := r.load(ctx)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("loading medications: %w", err)
	}
	i := slices.IndexFunc(meds, func(m Medication) bool { return m.ID == id })
	if i < 0 {
		r.mu.Unlock()
		return nil
	}
	meds = slices.Delete(meds, i, i+1)
	if err := r.persist(ctx, meds); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("saving medications: %w", err)
	}
	r.mu.Unlock()

	r.logger.Info("medication deleted", "id", id)
	if err := r.remote.RemoveMedication(ctx, id); err != nil {
		r.logger.Warn("mirroring medication deletion to remote failed", "id", id, "error", err)
	}
	r.listeners.notify(Change{Collection: CollectionMedications, Kind: ChangeDeleted, ID: id})
	return nil
}

// StatusFor merges the current medication list with the snapshot recorded in
// entry: one snapshot per current medication, taken when entry lists it as taken.
// A nil entry yields every medication as not taken.
func (r *MedicationRepository) StatusFor(ctx context.Context, entry *MoodEntry) []MedicationSnapshot {
	var taken []int64
	if entry != nil {
		for _, s := range entry.MedicationsTaken {
			if s.Taken {
				taken = append(taken, s.ID)
			}
		}
	}
	return r.SnapshotTaken(ctx, taken)
}

// SnapshotTaken builds the snapshot to embed in a new mood entry from the ids
// of the medications taken. Ids that match no current medication are ignored.
func (r *MedicationRepository) SnapshotTaken(ctx context.Context, takenIDs []int64) []MedicationSnapshot {
	meds := r.List(ctx)
	out := make([]MedicationSnapshot, 0, len(meds))
	for _, m := range meds {
		out = append(out, m.Snapshot(slices.Contains(takenIDs, m.ID)))
	}
	return out
}

func (r *MedicationRepository) load(ctx context.Context) ([]Medication, error) {
	raw, ok, err := r.store.Get(ctx, KeyMedications)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.initial(ctx), nil
	}
	return decodeMedications(raw)
}

func (r *MedicationRepository) initial(ctx context.Context) []Medication {
	meds, ok, err := r.remote.FetchMedications(ctx)
	if err != nil {
		r.logger.Warn("fetching medications from remote failed", "error", err)
	}
	if !ok {
		return SeedMedications()
	}
	return append([]Medication{}, meds...)
}

func (r *MedicationRepository) persist(ctx context.Context, meds []Medication) error {
	data, err := json.Marshal(meds)
	if err != nil {
		return fmt.Errorf("encoding medications: %w", err)
	}
	return r.store.Set(ctx, KeyMedications, string(data))
}

func decodeMedications(raw string) ([]Medication, error) {
	var meds []Medication
	if err := json.Unmarshal([]byte(raw), &meds); err != nil {
		return nil, fmt.Errorf("decoding medications: %w", err)
	}
	if meds == nil {
		meds = []Medication{}
	}
	return meds, nil
}

// ValidateMedication checks the required fields.
func ValidateMedication(m Medication) error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(m.Dosage) == "":
		return invalid("dosage", "is required")
	case strings.TrimSpace(m.Frequency) == "":
		return invalid("frequency", "is required")
	}
	return nil
}

func nextMedicationID(meds []Medication) int64 {
	var maxID int64
	for _, m := range meds {
		maxID = max(maxID, m.ID)
	}
	return maxID + 1
}
