package gitstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/mdbot/gitwiki/wiki"
)

// ReadFileAt returns the contents of a tracked file at a revision, and the full hash of the commit
// the revision resolved to.
func (g *GitBackend) ReadFileAt(ctx context.Context, gitPath, revision string) ([]byte, string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, "", backendError(err)
	}

	if revision == "" {
		revision = wiki.HeadRevision
	}

	commit, b, err := g.pathAtRevision(gitPath, revision)
	if err == nil {
		return b, commit.Hash.String(), nil
	}

	// An empty repository has no HEAD, which git reports the same way as a missing file.
	if errors.Is(err, object.ErrFileNotFound) || (revision == wiki.HeadRevision && errors.Is(err, wiki.ErrNotFound)) {
		if g.existsOnDisk(gitPath) || g.inHistory(ctx, gitPath) {
			return nil, "", fmt.Errorf("%w: path '%s' exists on disk, but not in '%s'", wiki.ErrNotInRevision, gitPath, revision)
		}
		return nil, "", fmt.Errorf("%w: %s", wiki.ErrNotFound, gitPath)
	}

	return nil, "", err
}

// pathAtRevision gets the contents of the given path at the given revision, along the with commit object.
func (g *GitBackend) pathAtRevision(gitPath, revision string) (*object.Commit, []byte, error) {
	commit, err := g.commitAt(revision)
	if err != nil {
		return nil, nil, err
	}
	file, err := commit.File(gitPath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, nil, err
		}
		return nil, nil, backendError(err)
	}
	reader, err := file.Blob.Reader()
	if err != nil {
		return nil, nil, backendError(err)
	}
	defer reader.Close()
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, backendError(err)
	}
	return commit, b, nil
}

// inHistory reports whether any commit reachable from HEAD touched the path.
func (g *GitBackend) inHistory(ctx context.Context, gitPath string) bool {
	entries, err := g.history(ctx, gitPath, "", 1)
	return err == nil && len(entries) > 0
}

// MediaPath returns the location on disk of a file in the media directory.
func (g *GitBackend) MediaPath(name string) (string, error) {
	filePath, _, err := resolvePath(filepath.Join(g.dir, filepath.FromSlash(g.mediaDir)), name)
	return filePath, err
}
