package gitstore

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// ListTrackedPaths returns every file in the head revision, sorted. Files in the .wiki directory
// are not included. An empty repository has no paths.
func (g *GitBackend) ListTrackedPaths(ctx context.Context) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	head, err := g.headCommit()
	if err != nil || head == nil {
		return nil, err
	}

	tree, err := head.Tree()
	if err != nil {
		return nil, backendError(err)
	}

	var paths []string
	if err := g.walkTreeFiles(ctx, tree, "", func(name string, _ object.TreeEntry) error {
		paths = append(paths, name)
		return nil
	}); err != nil {
		return nil, backendError(err)
	}

	sort.Strings(paths)
	return paths, nil
}
