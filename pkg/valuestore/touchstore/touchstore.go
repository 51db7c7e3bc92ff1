// Package touchstore implements the "fresh-file convention" mentioned in
// spec.md §6: an empty marker file whose mtime is the stored timestamp. It
// is the idiom callers use to mark "this output is fresh as of now" without
// persisting the value itself — typically paired with a companion
// jsonstore for the real payload, with touchstore recording only an
// optional YAML sidecar noting the value's declared type for diagnostics.
package touchstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	uerrors "github.com/uberjob-go/uberjob/pkg/errors"
	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

type sidecar struct {
	Type string `yaml:"type" validate:"required"`
}

var sidecarValidate = validator.New()

// Store is a zero-byte marker file at Path whose mtime is its value's
// modified time. Read returns true if the marker exists, false otherwise.
// Write touches the marker (creating it if absent, updating its mtime if
// present) and records value's dynamic type in a ".meta.yaml" sidecar.
type Store struct {
	Path string
}

// New returns a Store rooted at path.
func New(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) metaPath() string {
	return s.Path + ".meta.yaml"
}

// Read reports whether the marker file exists.
func (s *Store) Read(_ context.Context) (any, error) {
	_, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return nil, fmt.Errorf("touchstore: stat %s: %w", s.Path, err)
	}
	return true, nil
}

// Write touches the marker file and records value's type in a sidecar.
func (s *Store) Write(_ context.Context, value any) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("touchstore: mkdir for %s: %w", s.Path, err)
	}

	now := time.Now()
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		f, ferr := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY, 0o644)
		if ferr != nil {
			return fmt.Errorf("touchstore: create %s: %w", s.Path, ferr)
		}
		f.Close()
	}
	if err := os.Chtimes(s.Path, now, now); err != nil {
		return fmt.Errorf("touchstore: touch %s: %w", s.Path, err)
	}

	data, err := yaml.Marshal(sidecar{Type: fmt.Sprintf("%T", value)})
	if err != nil {
		return fmt.Errorf("touchstore: encode sidecar: %w", err)
	}
	if err := os.WriteFile(s.metaPath(), data, 0o644); err != nil {
		return fmt.Errorf("touchstore: write sidecar: %w", err)
	}
	return nil
}

// ModifiedTime returns the marker file's mtime, or (zero, false) if it does
// not exist.
func (s *Store) ModifiedTime(_ context.Context) (valuestore.Timestamp, bool, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return valuestore.Timestamp{}, false, nil
		}
		return valuestore.Timestamp{}, false, fmt.Errorf("touchstore: stat %s: %w", s.Path, err)
	}
	return valuestore.FromTime(info.ModTime()), true, nil
}

// SidecarType returns the dynamic type name recorded by the most recent
// Write, read back from the ".meta.yaml" sidecar. It returns "" if no
// sidecar exists yet.
func (s *Store) SidecarType() (string, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("touchstore: read sidecar: %w", err)
	}

	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return "", uerrors.NewParseError(s.metaPath(), 0, err)
	}
	if err := sidecarValidate.Struct(sc); err != nil {
		return "", uerrors.NewValidationError("type", "sidecar is missing its recorded type", err)
	}
	return sc.Type, nil
}

var _ valuestore.ValueStore = (*Store)(nil)
