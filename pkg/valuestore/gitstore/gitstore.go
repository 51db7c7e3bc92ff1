// Package gitstore implements a valuestore.ValueStore backed by a file
// tracked inside a git worktree, grounded on the go-git usage in streamy's
// repo plugin (internal/plugins/repo): PlainOpen to inspect an existing
// checkout, and the commit log to derive a value's real modified time from
// version-control history rather than the filesystem's mtime, which git
// checkouts do not preserve reliably across clones. Write stages and
// commits the file itself, so every write advances that history.
package gitstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/uberjob-go/uberjob/pkg/valuestore"
)

// CommitAuthor identifies the author recorded on the commits Write makes.
// Defaults to a generic überjob identity; callers running against a real
// repository should override it before scheduling any run that writes
// through a Store.
var CommitAuthor = object.Signature{Name: "uberjob", Email: "uberjob@localhost"}

// Store exposes the raw bytes of Path, a file tracked inside the git
// repository rooted at RepoPath, as a ValueStore. ModifiedTime reports the
// commit time of the most recent commit that touched Path, not the
// filesystem mtime.
type Store struct {
	RepoPath string
	Path     string
}

// New returns a Store for the file at path, relative to the repository
// rooted at repoPath.
func New(repoPath, path string) *Store {
	return &Store{RepoPath: repoPath, Path: path}
}

func (s *Store) fullPath() string {
	return filepath.Join(s.RepoPath, s.Path)
}

// Read returns the raw bytes of the tracked file as currently checked out.
func (s *Store) Read(_ context.Context) (any, error) {
	data, err := os.ReadFile(s.fullPath())
	if err != nil {
		return nil, fmt.Errorf("gitstore: read %s: %w", s.fullPath(), err)
	}
	return data, nil
}

// Write replaces the file's contents on disk and commits the change, so
// the new commit's author time becomes the value's ModifiedTime. A write
// that leaves the tracked file byte-identical to HEAD still produces an
// empty, allowed commit, but that commit does not change Path, so
// ModifiedTime keeps reporting the earlier commit's time.
func (s *Store) Write(_ context.Context, value any) error {
	data, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("gitstore: write %s: value must be []byte, got %T", s.fullPath(), value)
	}
	if err := os.MkdirAll(filepath.Dir(s.fullPath()), 0o755); err != nil {
		return fmt.Errorf("gitstore: mkdir for %s: %w", s.fullPath(), err)
	}
	if err := os.WriteFile(s.fullPath(), data, 0o644); err != nil {
		return fmt.Errorf("gitstore: write %s: %w", s.fullPath(), err)
	}

	repo, err := git.PlainOpen(s.RepoPath)
	if err != nil {
		return fmt.Errorf("gitstore: open %s: %w", s.RepoPath, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("gitstore: worktree for %s: %w", s.RepoPath, err)
	}
	if _, err := wt.Add(s.Path); err != nil {
		return fmt.Errorf("gitstore: stage %s: %w", s.Path, err)
	}

	author := CommitAuthor
	author.When = time.Now()
	_, err = wt.Commit(fmt.Sprintf("uberjob: write %s", s.Path), &git.CommitOptions{
		Author:            &author,
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("gitstore: commit %s: %w", s.Path, err)
	}
	return nil
}

// ModifiedTime walks the commit log for the repository at RepoPath and
// returns the author time of the most recent commit reachable from HEAD
// that changed Path. If the repository cannot be opened, or no commit touches Path, it
// returns (zero, false, nil): an untracked file is treated as never stored
// rather than as an error, matching the other stores' "absent" convention.
func (s *Store) ModifiedTime(_ context.Context) (valuestore.Timestamp, bool, error) {
	repo, err := git.PlainOpen(s.RepoPath)
	if err != nil {
		return valuestore.Timestamp{}, false, nil
	}

	head, err := repo.Head()
	if err != nil {
		return valuestore.Timestamp{}, false, nil
	}

	commits, err := repo.Log(&git.LogOptions{From: head.Hash(), FileName: &s.Path})
	if err != nil {
		return valuestore.Timestamp{}, false, fmt.Errorf("gitstore: log %s: %w", s.Path, err)
	}
	defer commits.Close()

	commit, err := commits.Next()
	if err != nil {
		return valuestore.Timestamp{}, false, nil
	}

	return valuestore.FromTime(commit.Author.When), true, nil
}

var _ valuestore.ValueStore = (*Store)(nil)
