package tracker

import "context"

// Authenticator exchanges credentials for a token and user.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, providerToken string, profile Profile) (*AuthResult, error)
}

// MoodRemote is the remote API surface for mood entries.
type MoodRemote interface {
	FetchMoods(ctx context.Context) ([]MoodEntry, error)
	CreateMood(ctx context.Context, entry MoodEntry) (*MoodEntry, error)
	UpdateMood(ctx context.Context, id int64, entry MoodEntry) (*MoodEntry, error)
	DeleteMood(ctx context.Context, id int64) error
}

// MedicationRemote is the remote API surface for medications.
type MedicationRemote interface {
	FetchMedications(ctx context.Context) ([]Medication, error)
	CreateMedication(ctx context.Context, med Medication) (*Medication, error)
	UpdateMedication(ctx context.Context, id int64, med Medication) (*Medication, error)
	DeleteMedication(ctx context.Context, id int64) error
}

// Remote is a backend API the repositories may shadow. Implementations read
// the bearer token from the context with TokenFromContext.
type Remote interface {
	Authenticator
	MoodRemote
	MedicationRemote
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token for remote calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
