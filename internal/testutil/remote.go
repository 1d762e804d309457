package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"moodtrack/internal/tracker"
)

// StubRemote is a scriptable tracker.Remote. Every call is recorded as
// "<METHOD> <path>" along with the bearer token from the context.
type StubRemote struct {
	mu sync.Mutex

	// Err, when set, is returned by every call.
	Err error
	// Auth is returned by Login, Register and LoginWithGoogle when Err is nil.
	Auth *tracker.AuthResult

	Moods       []tracker.MoodEntry
	Medications []tracker.Medication

	calls  []string
	tokens []string
}

var _ tracker.Remote = (*StubRemote)(nil)

func NewStubRemote() *StubRemote {
	return &StubRemote{}
}

// SetErr changes the error returned by subsequent calls.
func (r *StubRemote) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

// Calls returns the recorded calls in order.
func (r *StubRemote) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Tokens returns the bearer token seen by each call.
func (r *StubRemote) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tokens)
}

func (r *StubRemote) record(ctx context.Context, call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	r.tokens = append(r.tokens, tracker.TokenFromContext(ctx))
	return r.Err
}

func (r *StubRemote) auth(ctx context.Context, call string) (*tracker.AuthResult, error) {
	if err := r.record(ctx, call); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Auth == nil {
		return nil, fmt.Errorf("stub remote: no auth result configured")
	}
	res := *r.Auth
	return &res, nil
}

func (r *StubRemote) Login(ctx context.Context, email, password string) (*tracker.AuthResult, error) {
	return r.auth(ctx, "POST /auth/login/")
}

func (r *StubRemote) Register(ctx context.Context, email, password string) (*tracker.AuthResult, error) {
	return r.auth(ctx, "POST /auth/register/")
}

func (r *StubRemote) LoginWithGoogle(ctx context.Context, providerToken string, profile tracker.Profile) (*tracker.AuthResult, error) {
	return r.auth(ctx, "POST /auth/google/")
}

func (r *StubRemote) FetchMoods(ctx context.Context) ([]tracker.MoodEntry, error) {
	if err := r.record(ctx, "GET /moods/"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.Moods), nil
}

func (r *StubRemote) CreateMood(ctx context.Context, entry tracker.MoodEntry) (*tracker.MoodEntry, error) {
	if err := r.record(ctx, "POST /moods/"); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *StubRemote) UpdateMood(ctx context.Context, id int64, entry tracker.MoodEntry) (*tracker.MoodEntry, error) {
	if err := r.record(ctx, fmt.Sprintf("PUT /moods/%d/", id)); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *StubRemote) DeleteMood(ctx context.Context, id int64) error {
	return r.record(ctx, fmt.Sprintf("DELETE /moods/%d/", id))
}

func (r *StubRemote) FetchMedications(ctx context.Context) ([]tracker.Medication, error) {
	if err := r.record(ctx, "GET /medications/"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.Medications), nil
}

func (r *StubRemote) CreateMedication(ctx context.Context, med tracker.Medication) (*tracker.Medication, error) {
	if err := r.record(ctx, "POST /medications/"); err != nil {
		return nil, err
	}
	return &med, nil
}

func (r *StubRemote) UpdateMedication(ctx context.Context, id int64, med tracker.Medication) (*tracker.Medication, error) {
	if err := r.record(ctx, fmt.Sprintf("PUT /medications/%d/", id)); err != nil {
		return nil, err
	}
	return &med, nil
}

func (r *StubRemote) DeleteMedication(ctx context.Context, id int64) error {
	return r.record(ctx, fmt.Sprintf("DELETE /medications/%d/", id))
}
