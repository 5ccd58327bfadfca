package main

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mdbot/gitwiki/config"
)

// NewRouter wires the wiki's read API. Page routes are registered most specific first, so that
// "history" and "compare" aren't mistaken for revisions.
func NewRouter(ps PageSource, mp MediaProvider, settings *config.Settings) http.Handler {
	router := mux.NewRouter()
	router.Use(handlers.ProxyHeaders)
	router.Use(handlers.CompressHandler)
	router.Use(NewLoggingHandler(os.Stdout))

	router.Path("/").Methods(http.MethodGet).Handler(RedirectIndexHandler(ps))
	router.Path("/wiki").Methods(http.MethodGet).Handler(ListPagesHandler(ps))

	pages := router.PathPrefix("/wiki").Subrouter()
	pages.Use(CORSHandler(settings.Server.CORSOrigins))
	pages.Path("/{page}/history").Methods(http.MethodGet).Handler(PageHistoryHandler(ps))
	pages.Path("/{page}/compare/{revisions}").Methods(http.MethodGet).Handler(CompareHandler(ps))
	pages.Path("/{page}/{version}").Methods(http.MethodGet).Handler(ShowPageHandler(ps))
	pages.Path("/{page}").Methods(http.MethodGet, http.MethodOptions).Handler(ShowPageHandler(ps))

	router.PathPrefix("/media/").Methods(http.MethodGet).Handler(MediaHandler(mp))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return JSONErrorHandler(router)
}
