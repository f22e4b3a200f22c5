// Package vcs provides the version-control handle attached to a context.
// It wraps a go-git repository rooted at the project directory.
package vcs

import (
	"context"
	"errors"
	"sort"

	git "github.com/go-git/go-git/v5"
)

// ErrNoRepository is returned when the project root is not inside a git
// repository.
var ErrNoRepository = errors.New("project root is not a git repository")

// Host is the surface the handle needs from its owning context.
type Host interface {
	ProjectRoot() string
}

// Handle gives read access to the project's repository state.
type Handle struct {
	host Host
}

// New creates a handle bound to the given host. The repository is opened
// lazily on each call so the handle stays valid if a repository appears
// after context construction.
func New(host Host) *Handle {
	return &Handle{host: host}
}

func (h *Handle) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(h.host.ProjectRoot(), &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNoRepository
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// HeadRef returns the hash of the current HEAD commit.
func (h *Handle) HeadRef(ctx context.Context) (string, error) {
	repo, err := h.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

// DirtyFiles returns the repo-relative paths with uncommitted changes,
// sorted for deterministic output.
func (h *Handle) DirtyFiles(ctx context.Context) ([]string, error) {
	repo, err := h.open()
	if err != nil {
		return nil, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, err
	}

	var files []string
	for path, entry := range status {
		if entry.Worktree != git.Unmodified || entry.Staging != git.Unmodified {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}
