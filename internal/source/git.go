// Package source keeps a local checkout of the recipe repository.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"

	"github.com/gogetdata/ggd-docs/internal/models"
)

// Repository describes the recipe repository to check out
type Repository struct {
	URL    string
	Branch string // empty follows the remote HEAD
	Dir    string // local checkout
	Depth  int    // 0 fetches full history
}

// Sync clones the repository into Dir, or pulls when a checkout already
// exists, and returns the checked out commit
func Sync(ctx context.Context, repo Repository, log logrus.FieldLogger) (string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"url": repo.URL, "path": repo.Dir})

	if repo.URL == "" || repo.Dir == "" {
		return "", models.NewError(models.ErrSource, "", errors.New("repository url and checkout dir are required"))
	}

	var (
		repository *git.Repository
		err        error
	)
	if _, statErr := os.Stat(filepath.Join(repo.Dir, ".git")); statErr != nil {
		repository, err = clone(ctx, repo, log)
	} else {
		repository, err = pull(ctx, repo, log)
	}
	if err != nil {
		return "", models.NewError(models.ErrSource, "", err)
	}

	ref, err := repository.Head()
	if err != nil {
		return "", models.NewError(models.ErrSource, "", fmt.Errorf("failed to resolve HEAD: %w", err))
	}
	return ref.Hash().String(), nil
}

func clone(ctx context.Context, repo Repository, log logrus.FieldLogger) (*git.Repository, error) {
	log.Debug("Cloning recipe repository")
	if err := clearCloneTarget(repo.Dir); err != nil {
		return nil, err
	}

	opts := &git.CloneOptions{URL: repo.URL, Depth: repo.Depth}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}

	repository, err := git.PlainCloneContext(ctx, repo.Dir, false, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository %s: %w", repo.URL, err)
	}
	log.Info("Recipe repository cloned")
	return repository, nil
}

// clearCloneTarget removes an empty directory at dir so the clone can create
// it. A non-empty directory that is not a checkout is left untouched.
func clearCloneTarget(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("failed to inspect %s: %w", dir, err)
	case len(entries) > 0:
		return fmt.Errorf("refusing to clone into %s: directory is not empty and not a git checkout", dir)
	}
	return os.Remove(dir)
}

func pull(ctx context.Context, repo Repository, log logrus.FieldLogger) (*git.Repository, error) {
	repository, err := git.PlainOpen(repo.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	opts := &git.PullOptions{RemoteName: "origin", Depth: repo.Depth}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}

	err = worktree.PullContext(ctx, opts)
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		log.Info("Recipe repository already up to date")
	case err != nil:
		return nil, fmt.Errorf("failed to pull repository %s: %w", repo.URL, err)
	default:
		log.Info("Recipe repository updated")
	}
	return repository, nil
}
