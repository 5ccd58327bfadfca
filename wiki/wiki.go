// Package wiki models pages stored as files in a version controlled repository: resolving page
// names, reading pages at a revision, listing them, and walking their history.
package wiki

import (
	"fmt"
	"path"
	"strings"
)

const (
	DefaultIndexPage = "Home"
	DefaultPageSize  = 10
	DefaultExtension = ".md"
)

// Options configure how page names map onto the repository and onto URLs.
type Options struct {
	// IndexPage is the name of the home page.
	IndexPage string
	// ContentRoot is the directory within the repository that holds pages.
	ContentRoot string
	// Extension is appended to page names to find their file.
	Extension string
	// PageSize is the number of pages in each slice of a PageCollection.
	PageSize int
	// BasePath is prefixed to every URL generated for a page.
	BasePath string
	// Exclude holds doublestar patterns, relative to the content root, of pages to leave out of
	// collections.
	Exclude []string
}

func (o Options) withDefaults() Options {
	if o.IndexPage == "" {
		o.IndexPage = DefaultIndexPage
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	o.ContentRoot = strings.Trim(path.Clean("/"+o.ContentRoot), "/")
	o.BasePath = strings.TrimSuffix(o.BasePath, "/")
	return o
}

// Wiki binds a repository, a name resolver and options together, and hands out request-scoped
// pages and collections. It holds no per-page state.
type Wiki struct {
	repo     Repository
	resolver *Resolver
	opts     Options
}

// New creates a wiki over the given repository. A nil resolver resolves names without aliases,
// capitalising them.
func New(repo Repository, resolver *Resolver, opts Options) *Wiki {
	if resolver == nil {
		resolver, _ = NewResolver(nil, false)
	}
	return &Wiki{
		repo:     repo,
		resolver: resolver,
		opts:     opts.withDefaults(),
	}
}

// Resolve canonicalises a page name that came from a user.
func (w *Wiki) Resolve(name string) string {
	return w.resolver.Resolve(name)
}

// Page returns an unfetched page. An empty revision means the head revision.
func (w *Wiki) Page(name, revision string) *Page {
	if revision == "" {
		revision = HeadRevision
	}
	p := &Page{
		Revision: revision,
		repo:     w.repo,
		opts:     &w.opts,
	}
	p.SetNames(name)
	return p
}

// Pages returns an unfetched collection of every page.
func (w *Wiki) Pages() *PageCollection {
	return &PageCollection{
		wiki: w,
	}
}

// IndexPage returns the configured name of the home page.
func (w *Wiki) IndexPage() string {
	return w.opts.IndexPage
}

// PagePath returns the file within the repository that backs the named page.
func (w *Wiki) PagePath(name string) (string, error) {
	return pagePath(&w.opts, name)
}

// pagePath maps a page name onto the path of its file within the repository.
func pagePath(opts *Options, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty page name")
	}
	if strings.ContainsRune(name, '%') {
		return "", fmt.Errorf("page names cannot contain '%%'")
	}

	p := strings.TrimPrefix(path.Clean(name), "/")
	if p == "." || p == "" || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("page %q escapes the content root", name)
	}
	for _, part := range strings.Split(p, "/") {
		if strings.EqualFold(part, ".git") || strings.EqualFold(part, ".wiki") {
			return "", fmt.Errorf("page %q is in a reserved directory", name)
		}
	}

	return path.Join(opts.ContentRoot, p+opts.Extension), nil
}

// pageName is the inverse of pagePath. The second return value is false for files that aren't
// pages.
func pageName(opts *Options, file string) (string, bool) {
	if !strings.HasSuffix(file, opts.Extension) {
		return "", false
	}
	if opts.ContentRoot != "" {
		if !strings.HasPrefix(file, opts.ContentRoot+"/") {
			return "", false
		}
		file = strings.TrimPrefix(file, opts.ContentRoot+"/")
	}
	name := strings.TrimSuffix(file, opts.Extension)
	if name == "" {
		return "", false
	}
	return name, true
}
