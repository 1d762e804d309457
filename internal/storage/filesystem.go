package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moodtrack/internal/tracker"
)

const documentExt = ".json"

// document is the on-disk shape of one key.
type document struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileSystemStore keeps one JSON document per key in a directory:
//
//	<root>/
//	  <escaped key>.json
//
// Writes are atomic (temp file + rename), so a reader never sees a partial document.
type FileSystemStore struct {
	root  string
	clock tracker.Clock
}

var _ tracker.KeyValueStore = (*FileSystemStore)(nil)

// NewFileSystemStore creates a store rooted at root, creating the directory if needed.
func NewFileSystemStore(root string, clock tracker.Clock) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	if clock == nil {
		clock = tracker.RealClock{}
	}
	return &FileSystemStore{root: root, clock: clock}, nil
}

func (s *FileSystemStore) path(key string) string {
	return filepath.Join(s.root, url.PathEscape(key)+documentExt)
}

func (s *FileSystemStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *FileSystemStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(document{Key: key, Value: value, UpdatedAt: s.clock.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.writeFile(s.path(key), data)
}

func (s *FileSystemStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Clear removes every document. Files that are not documents are left alone.
func (s *FileSystemStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("listing store directory: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), documentExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}

// writeFile writes data to destPath using atomic write (temp file + rename).
func (s *FileSystemStore) writeFile(destPath string, data []byte) error {
	// The temp file lives in the same directory so the rename stays atomic.
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
