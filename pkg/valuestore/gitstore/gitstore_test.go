package gitstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepoWithFile(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(t, err)

	return dir
}

func TestReadReturnsTrackedFileContents(t *testing.T) {
	t.Parallel()

	dir := initRepoWithFile(t, "b.txt", "hello")
	store := New(dir, "b.txt")

	data, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestModifiedTimeReflectsCommitAuthorTime(t *testing.T) {
	t.Parallel()

	dir := initRepoWithFile(t, "b.txt", "hello")
	store := New(dir, "b.txt")

	ts, ok, err := store.ModifiedTime(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), ts.Time().Unix())
}

func TestModifiedTimeAbsentForUntrackedPath(t *testing.T) {
	t.Parallel()

	dir := initRepoWithFile(t, "b.txt", "hello")
	store := New(dir, "never-committed.txt")

	_, ok, err := store.ModifiedTime(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteCommitsAndAdvancesModifiedTime(t *testing.T) {
	t.Parallel()

	dir := initRepoWithFile(t, "b.txt", "hello")
	store := New(dir, "b.txt")
	ctx := context.Background()

	before, ok, err := store.ModifiedTime(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Write(ctx, []byte("world")))

	data, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)

	after, ok, err := store.ModifiedTime(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, after.After(before), "write should advance ModifiedTime")
}

func TestWriteToUntrackedPathCreatesAndCommitsFile(t *testing.T) {
	t.Parallel()

	dir := initRepoWithFile(t, "b.txt", "hello")
	store := New(dir, "new.txt")
	ctx := context.Background()

	_, ok, err := store.ModifiedTime(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Write(ctx, []byte("fresh")))

	data, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), data)

	_, ok, err = store.ModifiedTime(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
