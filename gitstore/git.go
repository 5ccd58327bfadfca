// Package gitstore reads and writes wiki pages in a git repository using go-git.
package gitstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/mdbot/gitwiki/wiki"
)

type GitBackend struct {
	// mutex guards access to git commands. A read or write lock should be acquired in all exported methods,
	// and released at the end (via a deferral).
	mutex    sync.RWMutex
	dir      string
	mediaDir string
	repo     *git.Repository
}

var _ wiki.Repository = (*GitBackend)(nil)

// NewGitBackend opens the repository in dataDirectory, creating it if needed. Media files are
// served from mediaDirectory, relative to the repository.
func NewGitBackend(dataDirectory, mediaDirectory string) (*GitBackend, error) {
	gitRepo, err := openOrInit(dataDirectory)
	if err != nil {
		return nil, fmt.Errorf("unable to open working directory: %w", err)
	}

	return &GitBackend{
		dir:      dataDirectory,
		mediaDir: mediaDirectory,
		repo:     gitRepo,
	}, nil
}

func openOrInit(dataDirectory string) (*git.Repository, error) {
	gitRepo, err := git.PlainOpen(dataDirectory)
	if err == nil {
		return gitRepo, nil
	}
	gitRepo, err = git.PlainInit(dataDirectory, false)
	if err == nil {
		return gitRepo, nil
	}
	return nil, err
}

// backendError marks an error from go-git (or a cancelled context) as a backend failure.
func backendError(err error) error {
	return fmt.Errorf("%w: %w", wiki.ErrBackend, err)
}

func (g *GitBackend) resolveRevision(rv string) (*plumbing.Hash, error) {
	if rv == "" {
		rv = wiki.HeadRevision
	}
	return g.repo.ResolveRevision(plumbing.Revision(rv))
}

// commitAt resolves a revision to a commit. Revisions that don't resolve are reported as not found.
func (g *GitBackend) commitAt(revision string) (*object.Commit, error) {
	hash, err := g.resolveRevision(revision)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown revision '%s': %v", wiki.ErrNotFound, revision, err)
	}
	commit, err := g.repo.CommitObject(*hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: unknown revision '%s'", wiki.ErrNotFound, revision)
		}
		return nil, backendError(err)
	}
	return commit, nil
}

// headCommit returns the commit HEAD points to, or nil if the repository has no commits yet.
func (g *GitBackend) headCommit() (*object.Commit, error) {
	ref, err := g.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, backendError(err)
	}
	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, backendError(err)
	}
	return commit, nil
}

func resolvePath(base, name string) (string, string, error) {
	p := filepath.Clean(filepath.Join(base, filepath.FromSlash(name)))

	if strings.ContainsRune(p, '%') {
		return "", "", errors.New("paths cannot contain '%'")
	}

	rel, err := filepath.Rel(base, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", "", fmt.Errorf("attempt to escape directory")
	}

	parts := strings.Split(rel, string(filepath.Separator))
	for i := range parts {
		if strings.EqualFold(parts[i], ".git") || strings.EqualFold(parts[i], ".wiki") {
			return "", "", fmt.Errorf("attempt to access reserved directory")
		}
	}
	rel = strings.ReplaceAll(rel, string(filepath.Separator), "/")

	return p, rel, nil
}

// walkTreeFiles calls h for every regular file in the tree, recursing into sub trees. Submodules
// are skipped.
func (g *GitBackend) walkTreeFiles(ctx context.Context, tree *object.Tree, prefix string, h func(name string, entry object.TreeEntry) error) error {
	for i := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := tree.Entries[i]
		switch {
		case entry.Mode == filemode.Dir:
			if prefix == "" && entry.Name == ".wiki" {
				continue
			}
			subtree, err := tree.Tree(entry.Name)
			if err != nil {
				return err
			}
			if err := g.walkTreeFiles(ctx, subtree, path.Join(prefix, entry.Name), h); err != nil {
				return err
			}
		case entry.Mode.IsFile():
			if err := h(path.Join(prefix, entry.Name), entry); err != nil {
				return err
			}
		}
	}
	return nil
}

// existsOnDisk reports whether the path is present in the working directory, whatever git says.
func (g *GitBackend) existsOnDisk(gitPath string) bool {
	filePath, _, err := resolvePath(g.dir, gitPath)
	if err != nil {
		return false
	}
	fi, err := os.Stat(filePath)
	return err == nil && !fi.IsDir()
}
