package wiki

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// fakeRepo is an in-memory Repository. Revisions are named directly; "HEAD" means head.
type fakeRepo struct {
	mu sync.Mutex

	head    string
	files   map[string]map[string]string
	history map[string][]HistoryEntry

	// known holds paths that exist in history or on disk, whatever the revision.
	known map[string]bool
	// short maps abbreviated revision names to the ones they stand for.
	short map[string]string
	fail  map[string]error
	calls map[string]int
	diffs [][2]string
}

func newFakeRepo(head string) *fakeRepo {
	return &fakeRepo{
		head:    head,
		files:   map[string]map[string]string{},
		history: map[string][]HistoryEntry{},
		known:   map[string]bool{},
		short:   map[string]string{},
		fail:    map[string]error{},
		calls:   map[string]int{},
	}
}

// commit records a file at a revision, and makes it the newest entry in the file's history.
func (f *fakeRepo) commit(revision, path, content string) {
	if f.files[revision] == nil {
		f.files[revision] = map[string]string{}
	}
	f.files[revision][path] = content
	f.known[path] = true
	f.history[path] = append([]HistoryEntry{{Revision: revision, Author: "tester", Message: "edit " + path}}, f.history[path]...)
}

func (f *fakeRepo) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRepo) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeRepo) ReadFileAt(_ context.Context, path, revision string) ([]byte, string, error) {
	f.record("ReadFileAt")
	if err := f.fail[path]; err != nil {
		return nil, "", err
	}
	if revision == HeadRevision || revision == "" {
		revision = f.head
	}
	if full, ok := f.short[revision]; ok {
		revision = full
	}
	snapshot, ok := f.files[revision]
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown revision '%s'", ErrNotFound, revision)
	}
	if content, ok := snapshot[path]; ok {
		return []byte(content), revision, nil
	}
	if f.known[path] {
		return nil, "", fmt.Errorf("%w: path '%s' exists on disk, but not in '%s'", ErrNotInRevision, path, revision)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (f *fakeRepo) History(_ context.Context, path, after string, count int) ([]HistoryEntry, error) {
	f.record("History")
	entries := f.history[path]
	if after != "" {
		for i, e := range entries {
			if e.Revision == after {
				entries = entries[i+1:]
				break
			}
		}
	}
	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}
	return append([]HistoryEntry(nil), entries...), nil
}

func (f *fakeRepo) Diff(_ context.Context, path, from, to string) (string, error) {
	f.record("Diff")
	f.mu.Lock()
	f.diffs = append(f.diffs, [2]string{from, to})
	f.mu.Unlock()
	return fmt.Sprintf("diff --git a/%[1]s b/%[1]s\n", path), nil
}

func (f *fakeRepo) ListTrackedPaths(_ context.Context) ([]string, error) {
	f.record("ListTrackedPaths")
	var paths []string
	for p := range f.files[f.head] {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
