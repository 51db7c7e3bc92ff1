// Package valuestore defines the ValueStore contract the core treats as an
// opaque, externally timestamped collaborator (spec.md §6), and a
// Timestamp type comparable across implementations.
package valuestore

import (
	"context"
	"time"
)

// ValueStore is a persistent, externally timestamped location a Registry
// binds to a plan node. The core invokes these methods on worker
// goroutines and never assumes anything about their internals beyond the
// write-then-read round-trip contract described in spec.md §6.
type ValueStore interface {
	// Read returns the currently stored value.
	Read(ctx context.Context) (any, error)
	// Write persists value, replacing whatever was stored.
	Write(ctx context.Context, value any) error
	// ModifiedTime returns the store's last-modified timestamp, or
	// (Timestamp{}, false) if no value has ever been stored.
	ModifiedTime(ctx context.Context) (Timestamp, bool, error)
}

// Timestamp is the single monotonic-comparable timestamp type every
// ValueStore reports through, regardless of its underlying clock source
// (filesystem mtime, VCS commit time, ...). Stores providing wall-clock
// times are trusted as-is (spec.md §4.5).
type Timestamp struct {
	t time.Time
}

// FromTime wraps a time.Time as a Timestamp.
func FromTime(t time.Time) Timestamp { return Timestamp{t: t} }

// Time returns the underlying time.Time.
func (ts Timestamp) Time() time.Time { return ts.t }

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool { return ts.t.After(other.t) }

// LaterOf returns whichever of a, b is later; if either is absent (ok
// false) the other is returned as-is.
func LaterOf(a Timestamp, aOK bool, b Timestamp, bOK bool) (Timestamp, bool) {
	switch {
	case !aOK && !bOK:
		return Timestamp{}, false
	case !aOK:
		return b, true
	case !bOK:
		return a, true
	case a.After(b):
		return a, true
	default:
		return b, true
	}
}
