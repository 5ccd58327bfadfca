package wiki

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the number of pages a collection reads from the repository at once.
const maxConcurrentFetches = 4

// PageCollection is one slice of the list of every page in the wiki, sorted by name.
type PageCollection struct {
	Pages       []*Page
	CurrentPage int
	TotalPages  int
	Total       int

	wiki *Wiki
}

// ParsePageNumber reads a 1-based page number, treating anything that isn't a positive number
// as the first page.
func ParsePageNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Fetch lists every page, selects the requested slice and fetches each page in it. Pages that
// fail to fetch stay in the slice with their Err set; only a cancelled context fails the whole
// collection.
func (c *PageCollection) Fetch(ctx context.Context, pageNumber int) error {
	names, err := c.names(ctx)
	if err != nil {
		return err
	}

	size := c.wiki.opts.PageSize
	c.Total = len(names)
	c.TotalPages = (len(names) + size - 1) / size
	c.CurrentPage = clamp(pageNumber, 1, c.TotalPages)
	c.Pages = []*Page{}
	if c.TotalPages == 0 {
		c.CurrentPage = 0
		return nil
	}

	start := (c.CurrentPage - 1) * size
	end := start + size
	if end > len(names) {
		end = len(names)
	}

	for _, name := range names[start:end] {
		c.Pages = append(c.Pages, c.wiki.Page(name, HeadRevision))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i := range c.Pages {
		page := c.Pages[i]
		g.Go(func() error {
			_ = page.Fetch(gctx)
			return ctx.Err()
		})
	}
	return g.Wait()
}

// names returns the sorted names of every tracked page that isn't excluded.
func (c *PageCollection) names(ctx context.Context) ([]string, error) {
	paths, err := c.wiki.repo.ListTrackedPaths(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, p := range paths {
		name, ok := pageName(&c.wiki.opts, p)
		if !ok || c.excluded(name+c.wiki.opts.Extension) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *PageCollection) excluded(file string) bool {
	for _, pattern := range c.wiki.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
	}
	return false
}

// Valid returns the pages that were fetched successfully.
func (c *PageCollection) Valid() []*Page {
	var res []*Page
	for _, p := range c.Pages {
		if p.Err == nil {
			res = append(res, p)
		}
	}
	return res
}

// PageNumbers lists every page number, for building pagination links.
func (c *PageCollection) PageNumbers() []int {
	res := make([]int, c.TotalPages)
	for i := range res {
		res[i] = i + 1
	}
	return res
}

func clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}
