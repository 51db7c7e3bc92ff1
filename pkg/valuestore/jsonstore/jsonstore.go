// Package jsonstore implements a valuestore.ValueStore backed by a single
// JSON file on disk, grounded on streamy's internal/registry.Registry.Save:
// writes go to a temporary file and are atomically renamed into place so a
// reader never observes a partially written file.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// Store persists a single JSON-encoded value at Path.
type Store struct {
	Path string
}

// New returns a Store rooted at path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Read decodes the JSON value currently stored at s.Path.
func (s *Store) Read(_ context.Context) (any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("jsonstore: read %s: %w", s.Path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("jsonstore: decode %s: %w", s.Path, err)
	}
	return v, nil
}

// Write JSON-encodes value and atomically replaces the file at s.Path.
func (s *Store) Write(_ context.Context, value any) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("jsonstore: mkdir for %s: %w", s.Path, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: encode: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonstore: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("jsonstore: rename into place: %w", err)
	}
	return nil
}

// ModifiedTime returns the file's mtime, or (zero, false) if it does not
// exist.
func (s *Store) ModifiedTime(_ context.Context) (valuestore.Timestamp, bool, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return valuestore.Timestamp{}, false, nil
		}
		return valuestore.Timestamp{}, false, fmt.Errorf("jsonstore: stat %s: %w", s.Path, err)
	}
	return valuestore.FromTime(info.ModTime()), true, nil
}

var _ valuestore.ValueStore = (*Store)(nil)
