package tracker

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultRemoteTimeout bounds every remote call.
const DefaultRemoteTimeout = 10 * time.Second

// DevTokenPrefix marks development tokens. A 401 on such a token does not end the session.
const DevTokenPrefix = "dev-token-"

// SessionGate is the part of the session the fallback client depends on.
type SessionGate interface {
	Token() string
	Expire(ctx context.Context)
}

// FallbackClient decides, per call, whether to consult the remote API and
// how to degrade to local data when it misbehaves. A nil *FallbackClient is
// valid and always answers locally.
type FallbackClient struct {
	remote       Remote
	session      SessionGate
	useLocalData bool
	timeout      time.Duration
	logger       Logger
}

// FallbackOption configures a FallbackClient.
type FallbackOption func(*FallbackClient)

// WithLocalData forces every call to answer locally without contacting the remote.
func WithLocalData(on bool) FallbackOption {
	return func(f *FallbackClient) { f.useLocalData = on }
}

// WithTimeout overrides DefaultRemoteTimeout.
func WithTimeout(d time.Duration) FallbackOption {
	return func(f *FallbackClient) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithFallbackLogger sets the logger used for degraded calls.
func WithFallbackLogger(l Logger) FallbackOption {
	return func(f *FallbackClient) { f.logger = l }
}

// NewFallbackClient wraps remote. remote may be nil, in which case every call is local.
func NewFallbackClient(remote Remote, session SessionGate, opts ...FallbackOption) *FallbackClient {
	f := &FallbackClient{
		remote:  remote,
		session: session,
		timeout: DefaultRemoteTimeout,
		logger:  NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enabled reports whether the next call would reach the remote.
func (f *FallbackClient) Enabled() bool {
	if f == nil || f.remote == nil || f.useLocalData || f.session == nil {
		return false
	}
	return f.session.Token() != ""
}

// call runs fn against the remote when enabled. remote reports whether the
// returned value came from the remote; when it did not, the value is the zero T
// and the caller keeps its local result.
func call[T any](ctx context.Context, f *FallbackClient, op string, fn func(context.Context, Remote) (T, error)) (value T, remote bool, err error) {
	var zero T
	if !f.Enabled() {
		return zero, false, nil
	}

	token := f.session.Token()
	callCtx, cancel := context.WithTimeout(WithToken(ctx, token), f.timeout)
	defer cancel()

	v, err := fn(callCtx, f.remote)
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		f.logger.Warn("remote unavailable, using local data", "op", op, "error", err)
		return zero, false, nil
	case errors.Is(err, ErrUnauthorized):
		if strings.HasPrefix(token, DevTokenPrefix) {
			f.logger.Warn("remote rejected development token, using local data", "op", op)
			return zero, false, nil
		}
		f.logger.Warn("remote rejected token, ending session", "op", op)
		f.session.Expire(ctx)
		return zero, false, ErrSessionExpired
	default:
		return zero, false, err
	}
}

// FetchMoods returns the remote mood collection. ok is false when the caller
// should use local data instead.
func (f *FallbackClient) FetchMoods(ctx context.Context) (entries []MoodEntry, ok bool, err error) {
	return call(ctx, f, "fetch moods", func(ctx context.Context, r Remote) ([]MoodEntry, error) {
		return r.FetchMoods(ctx)
	})
}

// PushMood mirrors a saved entry to the remote: an update when replaced is
// true, a create otherwise.
func (f *FallbackClient) PushMood(ctx context.Context, entry MoodEntry, replaced bool) error {
	_, _, err := call(ctx, f, "push mood", func(ctx context.Context, r Remote) (*MoodEntry, error) {
		if replaced {
			return r.UpdateMood(ctx, entry.ID, entry)
		}
		return r.CreateMood(ctx, entry)
	})
	return err
}

// RemoveMood mirrors a mood deletion to the remote.
func (f *FallbackClient) RemoveMood(ctx context.Context, id int64) error {
	_, _, err := call(ctx, f, "delete mood", func(ctx context.Context, r Remote) (struct{}, error) {
		return struct{}{}, r.DeleteMood(ctx, id)
	})
	return err
}

// FetchMedications returns the remote medication list.
func (f *FallbackClient) FetchMedications(ctx context.Context) (meds []Medication, ok bool, err error) {
	return call(ctx, f, "fetch medications", func(ctx context.Context, r Remote) ([]Medication, error) {
		return r.FetchMedications(ctx)
	})
}

// PushMedication mirrors an added or updated medication to the remote.
func (f *FallbackClient) PushMedication(ctx context.Context, med Medication, replaced bool) error {
	_, _, err := call(ctx, f, "push medication", func(ctx context.Context, r Remote) (*Medication, error) {
		if replaced {
			return r.UpdateMedication(ctx, med.ID, med)
		}
		return r.CreateMedication(ctx, med)
	})
	return err
}

// RemoveMedication mirrors a medication deletion to the remote.
func (f *FallbackClient) RemoveMedication(ctx context.Context, id int64) error {
	_, _, err := call(ctx, f, "delete medication", func(ctx context.Context, r Remote) (struct{}, error) {
		return struct{}{}, r.DeleteMedication(ctx, id)
	})
	return err
}
