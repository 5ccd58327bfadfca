package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Page is a single wiki page at a single revision. Pages are built per request by Wiki.Page and
// are not shared.
type Page struct {
	Name     string
	Title    string
	Revision string
	Content  string

	// Hashes is empty if the page has no history, holds the latest revision of the page if the
	// head was requested, and holds the latest and the requested revision otherwise.
	Hashes []string

	LastModified *HistoryEntry

	// Err records why the last Fetch failed.
	Err error

	path    string
	fetched bool
	repo    Repository
	opts    *Options
}

// SetNames renames the page without fetching anything.
func (p *Page) SetNames(name string) {
	p.Name = name
	p.Title = strings.ReplaceAll(name, "-", " ")
}

// Fetch loads the page's content and revision hashes. If the page exists but not in the
// revision, the name is retried once with an upper-case first letter; if that fails too the page
// keeps the new name but reports the original error.
func (p *Page) Fetch(ctx context.Context) error {
	err := p.fetch(ctx)
	if errors.Is(err, ErrNotInRevision) {
		if variant := upperFirst(p.Name); variant != p.Name {
			p.SetNames(variant)
			if p.fetch(ctx) == nil {
				return nil
			}
		}
	}
	p.Err = err
	return err
}

func (p *Page) fetch(ctx context.Context) error {
	p.fetched = false
	p.Err = nil
	p.Content = ""
	p.Hashes = nil
	p.LastModified = nil

	file, err := pagePath(p.opts, p.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	p.path = file

	content, resolved, err := p.repo.ReadFileAt(ctx, file, p.Revision)
	if err != nil {
		return err
	}

	latest, err := p.repo.History(ctx, file, "", 1)
	if err != nil {
		return err
	}

	p.Content = string(content)
	if len(latest) > 0 {
		p.LastModified = &latest[0]
		p.Hashes = []string{latest[0].Revision}
		if !p.IsHead() {
			p.Hashes = append(p.Hashes, resolved)
		}
	}
	p.fetched = true
	return nil
}

// IsHead reports whether the page was requested at the head revision.
func (p *Page) IsHead() bool {
	return p.Revision == "" || p.Revision == HeadRevision
}

// Stale reports whether the page is being shown at a revision other than its latest. The resolved
// id is compared, so an abbreviated or symbolic name for the latest revision isn't stale.
func (p *Page) Stale() bool {
	return len(p.Hashes) == 2 && p.Hashes[1] != p.Hashes[0]
}

// Exists reports whether the last Fetch found the page.
func (p *Page) Exists() bool {
	return p.fetched && p.Err == nil
}

// Path returns the page's file within the repository, once it has been fetched.
func (p *Page) Path() string {
	return p.path
}

// FetchHistory returns every commit that touched the page, newest first.
func (p *Page) FetchHistory(ctx context.Context) ([]HistoryEntry, error) {
	return p.FetchHistoryRange(ctx, "", 0)
}

// FetchHistoryRange returns up to count commits that touched the page, starting after the given
// revision.
func (p *Page) FetchHistoryRange(ctx context.Context, after string, count int) ([]HistoryEntry, error) {
	if err := p.requireFetched(); err != nil {
		return nil, err
	}
	history, err := p.repo.History(ctx, p.path, after, count)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []HistoryEntry{}
	}
	return history, nil
}

// FetchRevisionsDiff returns the raw unified diff of the page between the two revisions named in
// spec, which takes the form "from..to".
func (p *Page) FetchRevisionsDiff(ctx context.Context, spec string) (string, error) {
	from, to, err := ParseRevisions(spec)
	if err != nil {
		return "", err
	}
	if err := p.requireFetched(); err != nil {
		return "", err
	}
	return p.repo.Diff(ctx, p.path, from, to)
}

func (p *Page) requireFetched() error {
	if p.Err != nil {
		return p.Err
	}
	if !p.fetched {
		return ErrNotFetched
	}
	return nil
}

// ParseRevisions splits a "from..to" revisions spec.
func ParseRevisions(spec string) (string, string, error) {
	from, to, ok := strings.Cut(spec, "..")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no '..' separator", ErrMalformedDiffSpec, spec)
	}
	for _, rev := range []string{from, to} {
		if !validRevision(rev) {
			return "", "", fmt.Errorf("%w: %q is not a revision", ErrMalformedDiffSpec, rev)
		}
	}
	return from, to, nil
}

// validRevision accepts anything that could name a commit: hashes, HEAD, refs and suffixes such as
// HEAD~1. It rejects empty tokens, whitespace and anything left over from a "..." range.
func validRevision(rev string) bool {
	if rev == "" || strings.HasPrefix(rev, "-") || strings.Contains(rev, "..") {
		return false
	}
	if strings.HasPrefix(rev, ".") || strings.HasSuffix(rev, ".") {
		return false
	}
	for _, c := range rev {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("_-./~^@", c):
		default:
			return false
		}
	}
	return true
}

// IsIndex reports whether this is the wiki's home page.
func (p *Page) IsIndex() bool {
	return p.Name == p.opts.IndexPage
}

// URLForShow returns the address of the latest revision of the page.
func (p *Page) URLForShow() string {
	return p.URLFor("show")
}

// URLFor returns the address of an action on the page. Unknown actions produce the show address.
func (p *Page) URLFor(action string) string {
	name := escapeName(p.Name)
	base := p.opts.BasePath
	switch action {
	case "history":
		return base + "/wiki/" + name + "/history"
	case "compare":
		return base + "/wiki/" + name + "/compare"
	case "new":
		return base + "/pages/new/" + name
	case "edit":
		return base + "/pages/" + name + "/edit"
	case "revert":
		return base + "/pages/" + name + "/revert/" + url.PathEscape(p.Revision)
	default:
		return base + "/wiki/" + name
	}
}

// escapeName escapes each path segment of a page name, keeping the slashes of sub pages.
func escapeName(name string) string {
	parts := strings.Split(name, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}
