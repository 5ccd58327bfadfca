package wiki

import "errors"

var (
	// ErrNotFound is returned when a page's path has never existed at any revision.
	ErrNotFound = errors.New("page not found")

	// ErrNotInRevision is returned when a page's path exists, on disk or in history, but not
	// in the requested revision. Case-insensitive filesystems produce this when the name's case
	// differs from the tracked file.
	ErrNotInRevision = errors.New("path exists, but not in revision")

	// ErrBackend wraps failures of the version control backend itself, including timeouts.
	ErrBackend = errors.New("repository backend failure")

	// ErrMalformedDiffSpec is returned for revision specs that aren't of the form "a..b".
	ErrMalformedDiffSpec = errors.New("malformed revisions spec")

	// ErrNotFetched is returned by operations that need a successful Fetch first.
	ErrNotFetched = errors.New("page has not been fetched")
)
