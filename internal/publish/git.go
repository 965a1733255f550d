package publish

import (
	"fmt"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"pagewright/internal/logging"
)

// GitCommitter commits published files into the content repository.
type GitCommitter struct {
	repoPath string
	author   string
	email    string
}

// NewGitCommitter creates a committer for the repository containing the
// pages directory. The repository must already exist.
func NewGitCommitter(repoPath, author, email string) (*GitCommitter, error) {
	if _, err := git.PlainOpen(repoPath); err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", repoPath, err)
	}
	if author == "" {
		author = "pagewright"
	}
	if email == "" {
		email = "pagewright@localhost"
	}
	return &GitCommitter{repoPath: repoPath, author: author, email: email}, nil
}

// Commit stages the given absolute paths and commits them.
func (g *GitCommitter) Commit(paths []string, message string) error {
	repo, err := git.PlainOpen(g.repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, p := range paths {
		rel, err := filepath.Rel(g.repoPath, p)
		if err != nil {
			return fmt.Errorf("path %s is outside the repository: %w", p, err)
		}
		if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  g.author,
			Email: g.email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.Publish("committed %d files as %s", len(paths), hash.String()[:8])
	return nil
}
