package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"moodtrack/internal/tracker"
)

// encryptedPrefix marks values written by EncryptedStore.
const encryptedPrefix = "enc:v1:"

// DefaultEncryptedKeys are the keys whose values identify the user.
var DefaultEncryptedKeys = []string{tracker.KeyToken, tracker.KeyUser}

// EncryptedStore wraps a KeyValueStore and encrypts the values of selected
// keys. Encrypted values are stored base64-encoded behind encryptedPrefix.
// Values read without the prefix are returned unchanged, so plaintext written
// before encryption was enabled stays readable.
type EncryptedStore struct {
	inner tracker.KeyValueStore
	enc   tracker.Encryptor
	dec   tracker.DecryptionContext
	keys  []string
}

var _ tracker.KeyValueStore = (*EncryptedStore)(nil)

// NewEncryptedStore wraps inner. keys defaults to DefaultEncryptedKeys.
func NewEncryptedStore(inner tracker.KeyValueStore, enc tracker.Encryptor, dec tracker.DecryptionContext, keys ...string) *EncryptedStore {
	if len(keys) == 0 {
		keys = DefaultEncryptedKeys
	}
	return &EncryptedStore{inner: inner, enc: enc, dec: dec, keys: keys}
}

func (s *EncryptedStore) encrypted(key string) bool {
	return slices.Contains(s.keys, key)
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok || !s.encrypted(key) || !strings.HasPrefix(value, encryptedPrefix) {
		return value, ok, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", false, fmt.Errorf("decoding %s: %w", key, err)
	}
	var plain bytes.Buffer
	if err := s.dec.Decrypt(bytes.NewReader(ciphertext), &plain); err != nil {
		return "", false, fmt.Errorf("decrypting %s: %w", key, err)
	}
	return plain.String(), true, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	if !s.encrypted(key) {
		return s.inner.Set(ctx, key, value)
	}

	var ciphertext bytes.Buffer
	if err := s.enc.Encrypt(strings.NewReader(value), &ciphertext); err != nil {
		return fmt.Errorf("encrypting %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, encryptedPrefix+base64.StdEncoding.EncodeToString(ciphertext.Bytes()))
}

func (s *EncryptedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *EncryptedStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}
