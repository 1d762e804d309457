package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// SessionState is the authentication state of the device.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticating
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the session state.
type Session struct {
	State SessionState
	Token string
	User  *User
}

// IsAuthenticated reports whether the session holds a token.
func (s Session) IsAuthenticated() bool { return s.Token != "" }

// SessionStore holds the current token and user and persists them under
// KeyToken and KeyUser. Only its methods change the session.
type SessionStore struct {
	store     KeyValueStore
	auth      Authenticator
	logger    Logger
	mu        sync.RWMutex
	session   Session
	listeners listeners[Session]
}

// NewSessionStore creates an unauthenticated SessionStore. Call Restore to
// pick up a persisted session.
func NewSessionStore(store KeyValueStore, auth Authenticator, logger Logger) *SessionStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &SessionStore{store: store, auth: auth, logger: logger}
}

// Subscribe registers fn to be called with the new session after every state change.
func (s *SessionStore) Subscribe(fn func(Session)) func() {
	return s.listeners.add(fn)
}

// Current returns a copy of the session.
func (s *SessionStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// User returns a copy of the signed-in user, or nil.
func (s *SessionStore) User() *User {
	return s.Current().User
}

// IsAuthenticated reports whether a token is held.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login authenticates with email and password.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*User, error) {
	if err := requireCredentials(email, password); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "login", func(ctx context.Context, a Authenticator) (*AuthResult, error) {
		return a.Login(ctx, strings.TrimSpace(email), password)
	})
}

// Register creates an account and signs in to it.
func (s *SessionStore) Register(ctx context.Context, email, password string) (*User, error) {
	if err := requireCredentials(email, password); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "register", func(ctx context.Context, a Authenticator) (*AuthResult, error) {
		return a.Register(ctx, strings.TrimSpace(email), password)
	})
}

// LoginWithExternalProvider exchanges a provider token and profile for a session.
func (s *SessionStore) LoginWithExternalProvider(ctx context.Context, providerToken string, profile Profile) (*User, error) {
	if strings.TrimSpace(providerToken) == "" {
		return nil, invalid("provider token", "is required")
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, invalid("email", "is required")
	}
	return s.authenticate(ctx, "external login", func(ctx context.Context, a Authenticator) (*AuthResult, error) {
		return a.LoginWithGoogle(ctx, providerToken, profile)
	})
}

func (s *SessionStore) authenticate(ctx context.Context, op string, fn func(context.Context, Authenticator) (*AuthResult, error)) (*User, error) {
	if s.auth == nil {
		return nil, fmt.Errorf("%s: no authentication backend configured", op)
	}

	s.setState(Session{State: StateAuthenticating})

	res, err := fn(ctx, s.auth)
	if err == nil && (res == nil || res.Token == "") {
		err = errors.New("authentication backend returned no token")
	}
	if err != nil {
		s.removePersisted(ctx)
		s.setState(Session{State: StateUnauthenticated})
		s.logger.Warn("authentication failed", "op", op, "error", err)
		if errors.Is(err, ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := res.User
	if err := s.persist(ctx, res.Token, user); err != nil {
		s.removePersisted(ctx)
		s.setState(Session{State: StateUnauthenticated})
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.setState(Session{State: StateAuthenticated, Token: res.Token, User: &user})
	s.logger.Info("signed in", "op", op, "user_id", user.ID)

	out := user
	return &out, nil
}

// Logout ends the session. It always succeeds; storage failures are logged.
func (s *SessionStore) Logout(ctx context.Context) {
	s.setState(Session{State: StateUnauthenticated})
	s.removePersisted(ctx)
	s.logger.Info("signed out")
}

// Expire ends the session because the remote rejected its token.
func (s *SessionStore) Expire(ctx context.Context) {
	s.setState(Session{State: StateUnauthenticated})
	s.removePersisted(ctx)
	s.logger.Warn("session expired")
}

// Restore loads a persisted session. It reports whether the store is now
// authenticated; unreadable or partial data leaves it unauthenticated.
func (s *SessionStore) Restore(ctx context.Context) bool {
	token, okToken, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Warn("reading session token failed", "error", err)
		return false
	}
	rawUser, okUser, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		s.logger.Warn("reading session user failed", "error", err)
		return false
	}
	if !okToken || !okUser || token == "" {
		return false
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == 0 {
		s.logger.Warn("stored session user is invalid", "error", err)
		return false
	}

	s.setState(Session{State: StateAuthenticated, Token: token, User: &user})
	return true
}

func (s *SessionStore) persist(ctx context.Context, token string, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyUser, string(data))
}

func (s *SessionStore) removePersisted(ctx context.Context) {
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("removing session key failed", "key", key, "error", err)
		}
	}
}

func (s *SessionStore) setState(next Session) {
	s.mu.Lock()
	s.session = next
	snapshot := s.copyLocked()
	s.mu.Unlock()
	s.listeners.notify(snapshot)
}

func (s *SessionStore) copyLocked() Session {
	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func requireCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email", "is required")
	}
	if password == "" {
		return invalid("password", "is required")
	}
	return nil
}

var _ SessionGate = (*SessionStore)(nil)
