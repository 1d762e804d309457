package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"moodtrack/internal/config"
	"moodtrack/internal/encryption"
	"moodtrack/internal/tracker"
)

func TestEncryptedStore_EncryptsSelectedKeysOnly(t *testing.T) {
	dir := t.TempDir()
	enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "mood.pub"),
		PrivateKeyPath: filepath.Join(dir, "mood.key"),
	})
	if err := enc.Setup(""); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	dec, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	inner := NewMemoryStore()
	s := NewEncryptedStore(inner, enc, dec)
	ctx := context.Background()

	if err := s.Set(ctx, tracker.KeyToken, "mock-jwt-token-1"); err != nil {
		t.Fatalf("Set(token) error = %v", err)
	}
	if err := s.Set(ctx, tracker.KeyMoods, "[]"); err != nil {
		t.Fatalf("Set(moods) error = %v", err)
	}

	raw, _, _ := inner.Get(ctx, tracker.KeyToken)
	if !strings.HasPrefix(raw, encryptedPrefix) || strings.Contains(raw, "mock-jwt-token-1") {
		t.Errorf("token stored as %q, want encrypted", raw)
	}
	raw, _, _ = inner.Get(ctx, tracker.KeyMoods)
	if raw != "[]" {
		t.Errorf("moods stored as %q, want plaintext", raw)
	}

	got, ok, err := s.Get(ctx, tracker.KeyToken)
	if err != nil || !ok || got != "mock-jwt-token-1" {
		t.Errorf("Get(token) = (%q, %v, %v)", got, ok, err)
	}
}

func TestEncryptedStore_ReadsLegacyPlaintext(t *testing.T) {
	inner := NewMemoryStore()
	ctx := context.Background()
	if err := inner.Set(ctx, tracker.KeyToken, "dev-token-abc"); err != nil {
		t.Fatal(err)
	}

	enc := encryption.NewTestEncryptor()
	dec, _ := enc.Unlock("")
	s := NewEncryptedStore(inner, enc, dec)

	got, ok, err := s.Get(ctx, tracker.KeyToken)
	if err != nil || !ok || got != "dev-token-abc" {
		t.Errorf("Get() = (%q, %v, %v), want plaintext passthrough", got, ok, err)
	}
}

func TestEncryptedStore_CorruptCiphertext(t *testing.T) {
	inner := NewMemoryStore()
	ctx := context.Background()
	if err := inner.Set(ctx, tracker.KeyUser, encryptedPrefix+"!!!not base64"); err != nil {
		t.Fatal(err)
	}

	enc := encryption.NewTestEncryptor()
	dec, _ := enc.Unlock("")
	s := NewEncryptedStore(inner, enc, dec)

	if _, _, err := s.Get(ctx, tracker.KeyUser); err == nil {
		t.Error("Get() on corrupt ciphertext expected error")
	}
}
