package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mdbot/gitwiki/diffview"
	"github.com/mdbot/gitwiki/wiki"
)

type historyResponse struct {
	Name  string              `json:"name"`
	Title string              `json:"title"`
	Items []wiki.HistoryEntry `json:"items"`
	Next  string              `json:"next,omitempty"`
}

func PageHistoryHandler(ps PageSource) http.HandlerFunc {
	const historySize = 50

	return func(w http.ResponseWriter, r *http.Request) {
		page := ps.Page(ps.Resolve(mux.Vars(r)["page"]), "")
		if err := page.Fetch(r.Context()); err != nil {
			writePageError(w, page, err)
			return
		}

		count := historySize
		if n, err := strconv.Atoi(r.FormValue("count")); err == nil && n > 0 && n <= historySize {
			count = n
		}

		// Ask for one more than we show, to tell if there's a next page or not.
		history, err := page.FetchHistoryRange(r.Context(), r.FormValue("after"), count+1)
		if err != nil {
			if errors.Is(err, wiki.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			log.Printf("Failed to fetch history of %s: %v\n", page.Name, err)
			writeError(w, http.StatusInternalServerError, "unable to read history")
			return
		}

		res := &historyResponse{
			Name:  page.Name,
			Title: "History of " + page.Title,
			Items: history,
		}
		if len(history) > count {
			res.Items = history[:count]
			res.Next = history[count-1].Revision
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type compareResponse struct {
	Name  string          `json:"name"`
	Revs  []string        `json:"revs"`
	Lines []diffview.Line `json:"lines"`
}

func CompareHandler(ps PageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		revisions := vars["revisions"]
		if _, _, err := wiki.ParseRevisions(revisions); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		page := ps.Page(ps.Resolve(vars["page"]), "")
		if err := page.Fetch(r.Context()); err != nil {
			writePageError(w, page, err)
			return
		}

		diff, err := page.FetchRevisionsDiff(r.Context(), revisions)
		if err != nil {
			if errors.Is(err, wiki.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			log.Printf("Error getting diff: %+s", err)
			writeError(w, http.StatusInternalServerError, "unable to diff revisions")
			return
		}

		lines, err := diffview.Format(diff)
		if err != nil {
			log.Printf("Error formatting diff of %s %s: %v", page.Name, revisions, err)
			writeError(w, http.StatusInternalServerError, "unable to read diff")
			return
		}

		writeJSON(w, http.StatusOK, &compareResponse{
			Name:  page.Name,
			Revs:  strings.SplitN(revisions, "..", 2),
			Lines: diffview.Highlight(lines),
		})
	}
}
