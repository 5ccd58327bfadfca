package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mdbot/gitwiki/wiki"
)

// PageSource hands out request scoped pages. It is satisfied by *wiki.Wiki.
type PageSource interface {
	Resolve(name string) string
	Page(name, revision string) *wiki.Page
	Pages() *wiki.PageCollection
	IndexPage() string
}

type pageResponse struct {
	Name           string             `json:"name"`
	Title          string             `json:"title"`
	Revision       string             `json:"revision"`
	Content        string             `json:"content"`
	Hashes         []string           `json:"hashes"`
	Stale          bool               `json:"stale"`
	LatestURL      string             `json:"latestUrl,omitempty"`
	HistoryURL     string             `json:"historyUrl"`
	RedirectedFrom string             `json:"redirectedFrom,omitempty"`
	LastModified   *wiki.HistoryEntry `json:"lastModified,omitempty"`
}

func ShowPageHandler(ps PageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		requested := vars["page"]
		name := ps.Resolve(requested)

		page := ps.Page(name, vars["version"])
		if err := page.Fetch(r.Context()); err != nil {
			writePageError(w, page, err)
			return
		}

		res := &pageResponse{
			Name:         page.Name,
			Title:        page.Title,
			Revision:     page.Revision,
			Content:      page.Content,
			Hashes:       page.Hashes,
			Stale:        page.Stale(),
			HistoryURL:   page.URLFor("history"),
			LastModified: page.LastModified,
		}
		if res.Stale {
			res.LatestURL = page.URLForShow()
		}
		if page.Name != requested {
			res.RedirectedFrom = requested
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// writePageError reports a page that couldn't be fetched. Missing pages get a link to create them,
// under the name that was last tried.
func writePageError(w http.ResponseWriter, page *wiki.Page, err error) {
	if errors.Is(err, wiki.ErrNotFound) || errors.Is(err, wiki.ErrNotInRevision) {
		writeJSON(w, http.StatusNotFound, &errorResponse{
			Error:     err.Error(),
			CreateURL: page.URLFor("new"),
			IsIndex:   page.IsIndex(),
		})
		return
	}

	log.Printf("Failed to fetch page %s: %v\n", page.Name, err)
	writeError(w, http.StatusInternalServerError, "unable to read page")
}

type listItem struct {
	Name         string             `json:"name"`
	Title        string             `json:"title"`
	URL          string             `json:"url"`
	Hashes       string             `json:"hashes"`
	LastModified *wiki.HistoryEntry `json:"lastModified,omitempty"`
}

type listResponse struct {
	Items       []listItem `json:"items"`
	PageNumbers []int      `json:"pageNumbers"`
	PageCurrent int        `json:"pageCurrent"`
	TotalPages  int        `json:"totalPages"`
}

func ListPagesHandler(ps PageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := ps.Pages()
		if err := pages.Fetch(r.Context(), wiki.ParsePageNumber(r.FormValue("page"))); err != nil {
			log.Printf("Failed to list pages: %v\n", err)
			writeError(w, http.StatusInternalServerError, "unable to list pages")
			return
		}

		res := &listResponse{
			Items:       []listItem{},
			PageNumbers: pages.PageNumbers(),
			PageCurrent: pages.CurrentPage,
			TotalPages:  pages.TotalPages,
		}
		for _, page := range pages.Pages {
			if page.Err != nil {
				log.Printf("Skipping page %s in listing: %v\n", page.Name, page.Err)
				continue
			}
			item := listItem{
				Name:         page.Name,
				Title:        page.Title,
				URL:          page.URLForShow(),
				LastModified: page.LastModified,
			}
			if len(page.Hashes) == 2 {
				item.Hashes = strings.Join(page.Hashes, "..")
			}
			res.Items = append(res.Items, item)
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func RedirectIndexHandler(ps PageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := ps.Page(ps.IndexPage(), "")
		http.Redirect(w, r, index.URLForShow(), http.StatusSeeOther)
	}
}
