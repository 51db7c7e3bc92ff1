package touchstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/uberjob-go/uberjob/pkg/errors"
)

func TestReadReportsAbsenceBeforeWrite(t *testing.T) {
	t.Parallel()

	store := New(filepath.Join(t.TempDir(), "fresh"))
	value, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, value)
}

func TestWriteTouchesMarkerAndSidecar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New(filepath.Join(t.TempDir(), "fresh"))
	require.NoError(t, store.Write(ctx, 42))

	value, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, value)

	_, ok, err := store.ModifiedTime(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSidecarTypeReportsEmptyBeforeWrite(t *testing.T) {
	t.Parallel()

	store := New(filepath.Join(t.TempDir(), "fresh"))
	typ, err := store.SidecarType()
	require.NoError(t, err)
	assert.Equal(t, "", typ)
}

func TestSidecarTypeReturnsRecordedType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New(filepath.Join(t.TempDir(), "fresh"))
	require.NoError(t, store.Write(ctx, 42))

	typ, err := store.SidecarType()
	require.NoError(t, err)
	assert.Equal(t, "int", typ)
}

func TestSidecarTypeRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	store := New(filepath.Join(t.TempDir(), "fresh"))
	require.NoError(t, os.WriteFile(store.metaPath(), []byte("type: [unterminated"), 0o644))

	_, err := store.SidecarType()
	require.Error(t, err)
	var parseErr *uerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestSidecarTypeRejectsMissingTypeField(t *testing.T) {
	t.Parallel()

	store := New(filepath.Join(t.TempDir(), "fresh"))
	require.NoError(t, os.WriteFile(store.metaPath(), []byte("type: \"\"\n"), 0o644))

	_, err := store.SidecarType()
	require.Error(t, err)
	var validationErr *uerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
