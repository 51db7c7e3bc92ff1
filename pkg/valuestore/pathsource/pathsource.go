// Package pathsource implements a read-only valuestore.ValueStore over an
// existing file's raw bytes, the simplest "externally timestamped
// location": the caller idiom of reading an arbitrary input file and
// tracking its freshness via mtime, grounded on the os.Stat-based checks in
// streamy's copy plugin (internal/plugins/copy).
package pathsource

import (
	"context"
	"fmt"
	"os"

	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// Store exposes the raw bytes of the file at Path as a read-only value.
// Write always fails: a path source is meant to be registered via
// Registry.Source, whose placeholder is never written to by the
// scheduler.
type Store struct {
	Path string
}

// New returns a Store rooted at path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Read returns the file's raw bytes.
func (s *Store) Read(_ context.Context) (any, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("pathsource: read %s: %w", s.Path, err)
	}
	return data, nil
}

// Write always fails: path sources are read-only by construction.
func (s *Store) Write(_ context.Context, _ any) error {
	return fmt.Errorf("pathsource: %s is a read-only source and cannot be written", s.Path)
}

// ModifiedTime returns the file's mtime, or (zero, false) if it does not
// exist.
func (s *Store) ModifiedTime(_ context.Context) (valuestore.Timestamp, bool, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return valuestore.Timestamp{}, false, nil
		}
		return valuestore.Timestamp{}, false, fmt.Errorf("pathsource: stat %s: %w", s.Path, err)
	}
	return valuestore.FromTime(info.ModTime()), true, nil
}

var _ valuestore.ValueStore = (*Store)(nil)
