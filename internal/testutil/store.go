package testutil

import (
	"context"
	"errors"
	"sync"

	"moodtrack/internal/tracker"
)

// ErrInjected is returned by FailingStore for operations set to fail.
var ErrInjected = errors.New("injected storage failure")

// FailingStore wraps a KeyValueStore and fails selected operations on demand.
type FailingStore struct {
	tracker.KeyValueStore

	mu        sync.Mutex
	failGet   bool
	failSet   bool
	failClear bool
	failKeys  map[string]bool // restricts failGet/failSet to these keys when non-empty
	sets      int
}

// NewFailingStore wraps inner. Nothing fails until one of the Fail methods is called.
func NewFailingStore(inner tracker.KeyValueStore) *FailingStore {
	return &FailingStore{KeyValueStore: inner, failKeys: make(map[string]bool)}
}

// FailReads makes Get fail.
func (s *FailingStore) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = fail
}

// FailWrites makes Set and Remove fail.
func (s *FailingStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = fail
}

// FailClear makes Clear fail.
func (s *FailingStore) FailClear(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failClear = fail
}

// OnlyKeys limits read and write failures to the given keys.
func (s *FailingStore) OnlyKeys(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failKeys)
	for _, k := range keys {
		s.failKeys[k] = true
	}
}

// Sets returns how many Set calls reached the wrapped store.
func (s *FailingStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func (s *FailingStore) applies(key string) bool {
	return len(s.failKeys) == 0 || s.failKeys[key]
}

func (s *FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	fail := s.failGet && s.applies(key)
	s.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return s.KeyValueStore.Get(ctx, key)
}

func (s *FailingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failSet && s.applies(key)
	if !fail {
		s.sets++
	}
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.KeyValueStore.Set(ctx, key, value)
}

func (s *FailingStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	fail := s.failSet && s.applies(key)
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.KeyValueStore.Remove(ctx, key)
}

func (s *FailingStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	fail := s.failClear
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.KeyValueStore.Clear(ctx)
}
