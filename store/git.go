package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitBackend keeps documents as files in a local git worktree, committing
// on every write. Gives content edits a history for free.
type GitBackend struct {
	repo *git.Repository
	root string

	name  string
	email string
}

type GitConfig struct {
	RepoPath string

	// optional commit author
	Name  string
	Email string
}

// NewGitBackend opens an existing repository at RepoPath.
func NewGitBackend(p GitConfig) (*GitBackend, error) {
	repo, err := git.PlainOpen(p.RepoPath)
	if err != nil {
		return nil, err
	}

	return &GitBackend{
		repo:  repo,
		root:  p.RepoPath,
		name:  p.Name,
		email: p.Email,
	}, nil
}

func (g *GitBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(g.root, objectKey(name)))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from worktree: %w", name, err)
	}
	return data, nil
}

func (g *GitBackend) Write(ctx context.Context, name string, data []byte) error {
	rel := objectKey(name)
	path := filepath.Join(g.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	worktree, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to retrieve worktree: %w", err)
	}
	if _, err := worktree.Add(rel); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	_, err = worktree.Commit(fmt.Sprintf("update %s", name), &git.CommitOptions{
		Author: &object.Signature{
			Name:  g.name,
			Email: g.email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit %s: %w", rel, err)
	}
	return nil
}
