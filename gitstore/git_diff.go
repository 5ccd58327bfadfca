package gitstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/mdbot/gitwiki/wiki"
)

// Diff returns a git style unified diff of gitPath between two revisions. The diff starts with
// the "diff --git", "index", "---" and "+++" header lines. Identical revisions give an empty diff.
func (g *GitBackend) Diff(ctx context.Context, gitPath, from, to string) (string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	fromCommit, err := g.commitAt(from)
	if err != nil {
		return "", err
	}
	toCommit, err := g.commitAt(to)
	if err != nil {
		return "", err
	}

	inFrom, err := hasFile(fromCommit, gitPath)
	if err != nil {
		return "", err
	}
	inTo, err := hasFile(toCommit, gitPath)
	if err != nil {
		return "", err
	}
	if !inFrom && !inTo {
		return "", fmt.Errorf("%w: %s is in neither '%s' nor '%s'", wiki.ErrNotFound, gitPath, from, to)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return "", backendError(err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return "", backendError(err)
	}

	changes, err := fromTree.DiffContext(ctx, toTree)
	if err != nil {
		return "", backendError(err)
	}

	for _, change := range changes {
		if change.From.Name != gitPath && change.To.Name != gitPath {
			continue
		}
		patch, err := change.PatchContext(ctx)
		if err != nil {
			return "", backendError(err)
		}
		b := &strings.Builder{}
		if err := patch.Encode(b); err != nil {
			return "", backendError(err)
		}
		return trimExtendedHeader(b.String()), nil
	}

	return "", nil
}

func hasFile(commit *object.Commit, gitPath string) (bool, error) {
	_, err := commit.File(gitPath)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, object.ErrFileNotFound):
		return false, nil
	default:
		return false, backendError(err)
	}
}

// trimExtendedHeader drops the mode, rename and similarity lines git adds between "diff --git"
// and the first hunk, leaving only the "diff --git", "index", "---" and "+++" lines.
func trimExtendedHeader(patch string) string {
	lines := strings.SplitAfter(patch, "\n")
	out := make([]string, 0, len(lines))
	inHeader := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			inHeader = true
		case strings.HasPrefix(line, "@@"):
			inHeader = false
		case inHeader && !isHeaderLine(line):
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "")
}

func isHeaderLine(line string) bool {
	for _, prefix := range []string{"index ", "--- ", "+++ "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
