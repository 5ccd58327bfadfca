package wiki

import (
	"context"
	"time"
)

// HeadRevision is the revision token meaning "the latest commit".
const HeadRevision = "HEAD"

// HistoryEntry describes a single commit that touched a page.
type HistoryEntry struct {
	Revision string    `json:"revision"`
	Author   string    `json:"author"`
	Email    string    `json:"email"`
	Time     time.Time `json:"time"`
	Message  string    `json:"message"`
}

// Repository is the version control backend pages are read from. Implementations must be safe
// for concurrent use, and should report failures wrapping ErrNotFound, ErrNotInRevision or
// ErrBackend.
type Repository interface {
	// ReadFileAt returns the content of path at the given revision, along with the full id of the
	// commit the revision resolved to.
	ReadFileAt(ctx context.Context, path, revision string) ([]byte, string, error)

	// History returns commits touching path, newest first. If after is set, history starts at the
	// commit following it. A count of zero or less returns everything.
	History(ctx context.Context, path, after string, count int) ([]HistoryEntry, error)

	// Diff returns a git-style unified diff of path between two revisions.
	Diff(ctx context.Context, path, from, to string) (string, error)

	// ListTrackedPaths returns every file tracked at the head revision.
	ListTrackedPaths(ctx context.Context) ([]string, error)
}
