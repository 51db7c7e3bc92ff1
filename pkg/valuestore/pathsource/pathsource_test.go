package pathsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReturnsRawBytes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("3"), 0o644))

	store := New(path)
	data, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), data)
}

func TestWriteAlwaysFails(t *testing.T) {
	t.Parallel()

	store := New(filepath.Join(t.TempDir(), "a.txt"))
	err := store.Write(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestModifiedTimePresentForExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("3"), 0o644))
	store := New(path)

	_, ok, err := store.ModifiedTime(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestModifiedTimeAbsentForMissingFile(t *testing.T) {
	t.Parallel()

	store := New(filepath.Join(t.TempDir(), "missing.txt"))
	_, ok, err := store.ModifiedTime(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
