package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdbot/gitwiki/config"
	"github.com/mdbot/gitwiki/gitstore"
	"github.com/mdbot/gitwiki/wiki"
)

type testWiki struct {
	dir     string
	backend *gitstore.GitBackend
	router  http.Handler
}

func newTestWiki(t *testing.T, settings *config.Settings) *testWiki {
	t.Helper()
	if settings == nil {
		settings = config.Default()
	}
	dir := t.TempDir()
	backend, err := gitstore.NewGitBackend(dir, settings.Media.Dir)
	if err != nil {
		t.Fatal(err)
	}
	resolver, err := settings.Resolver()
	if err != nil {
		t.Fatal(err)
	}
	w := wiki.New(backend, resolver, settings.WikiOptions())
	return &testWiki{
		dir:     dir,
		backend: backend,
		router:  NewRouter(w, backend, settings),
	}
}

func (tw *testWiki) put(t *testing.T, gitPath, content string) string {
	t.Helper()
	if err := tw.backend.PutPage(gitPath, []byte(content), "tester", "edit "+gitPath); err != nil {
		t.Fatal(err)
	}
	h, err := tw.backend.History(t.Context(), gitPath, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	return h[0].Revision
}

func (tw *testWiki) get(t *testing.T, target string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	tw.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if v != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("GET %s: invalid JSON %q: %v", target, rec.Body.String(), err)
		}
	}
	return rec
}

func TestShowPageHandler(t *testing.T) {
	tw := newTestWiki(t, nil)
	first := tw.put(t, "My-Page.md", "first")
	second := tw.put(t, "My-Page.md", "second")

	var res pageResponse
	rec := tw.get(t, "/wiki/my-page", &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if res.Name != "My-Page" || res.Content != "second" || res.Stale {
		t.Errorf("response = %+v", res)
	}
	if res.RedirectedFrom != "my-page" {
		t.Errorf("RedirectedFrom = %q, want my-page", res.RedirectedFrom)
	}
	if len(res.Hashes) != 1 || res.Hashes[0] != second {
		t.Errorf("Hashes = %v, want [%s]", res.Hashes, second)
	}

	res = pageResponse{}
	rec = tw.get(t, "/wiki/My-Page/"+first, &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if res.Content != "first" || !res.Stale || res.LatestURL != "/wiki/My-Page" {
		t.Errorf("old revision response = %+v", res)
	}

	res = pageResponse{}
	rec = tw.get(t, "/wiki/My-Page/"+second[:7], &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if res.Content != "second" || res.Stale || res.LatestURL != "" {
		t.Errorf("abbreviated latest revision response = %+v", res)
	}
}

func TestShowPageHandler_notFound(t *testing.T) {
	tw := newTestWiki(t, nil)
	tw.put(t, "Home.md", "home")

	var res errorResponse
	rec := tw.get(t, "/wiki/nowhere", &res)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if res.CreateURL != "/pages/new/Nowhere" {
		t.Errorf("CreateURL = %q", res.CreateURL)
	}
}

func TestShowPageHandler_missingIndex(t *testing.T) {
	tw := newTestWiki(t, nil)

	var res errorResponse
	rec := tw.get(t, "/wiki/Home", &res)
	if rec.Code != http.StatusNotFound || !res.IsIndex {
		t.Errorf("status = %d, response = %+v, want a 404 flagged as the index", rec.Code, res)
	}
}

func TestShowPageHandler_alias(t *testing.T) {
	settings := config.Default()
	settings.Aliases = map[string]string{"start": "Home"}
	tw := newTestWiki(t, settings)
	tw.put(t, "Home.md", "home")

	var res pageResponse
	if rec := tw.get(t, "/wiki/start", &res); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if res.Name != "Home" || res.RedirectedFrom != "start" {
		t.Errorf("response = %+v", res)
	}
}

func TestRedirectIndexHandler(t *testing.T) {
	tw := newTestWiki(t, nil)
	rec := tw.get(t, "/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/wiki/Home" {
		t.Errorf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestListPagesHandler(t *testing.T) {
	settings := config.Default()
	settings.Pages.PerPage = 2
	tw := newTestWiki(t, settings)
	for _, p := range []string{"Alpha.md", "Beta.md", "Gamma.md"} {
		tw.put(t, p, p)
	}

	var res listResponse
	if rec := tw.get(t, "/wiki?page=2", &res); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if res.PageCurrent != 2 || res.TotalPages != 2 || len(res.Items) != 1 || res.Items[0].Name != "Gamma" {
		t.Errorf("response = %+v", res)
	}

	res = listResponse{}
	tw.get(t, "/wiki?page=banana", &res)
	if res.PageCurrent != 1 || len(res.Items) != 2 {
		t.Errorf("response = %+v, want the first page", res)
	}
}

func TestListPagesHandler_empty(t *testing.T) {
	tw := newTestWiki(t, nil)

	var res listResponse
	if rec := tw.get(t, "/wiki", &res); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if res.TotalPages != 0 || res.PageCurrent != 0 || res.Items == nil || len(res.Items) != 0 {
		t.Errorf("response = %+v", res)
	}
}

func TestPageHistoryHandler(t *testing.T) {
	tw := newTestWiki(t, nil)
	var revisions []string
	for _, content := range []string{"1", "2", "3"} {
		revisions = append(revisions, tw.put(t, "Home.md", content))
	}

	var res historyResponse
	if rec := tw.get(t, "/wiki/Home/history?count=2", &res); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(res.Items) != 2 || res.Items[0].Revision != revisions[2] || res.Next != revisions[1] {
		t.Errorf("response = %+v", res)
	}

	next := res.Next
	res = historyResponse{}
	tw.get(t, "/wiki/Home/history?count=2&after="+next, &res)
	if len(res.Items) != 1 || res.Items[0].Revision != revisions[0] || res.Next != "" {
		t.Errorf("second page = %+v", res)
	}

	if rec := tw.get(t, "/wiki/Missing/history", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing page history status = %d, want 404", rec.Code)
	}
}

func TestCompareHandler(t *testing.T) {
	tw := newTestWiki(t, nil)
	first := tw.put(t, "Home.md", "one\ntwo\n")
	second := tw.put(t, "Home.md", "one\nthree\n")

	var res struct {
		Revs  []string `json:"revs"`
		Lines []struct {
			Text  string `json:"text"`
			Left  string `json:"left"`
			Right string `json:"right"`
			Class string `json:"class"`
		} `json:"lines"`
	}
	rec := tw.get(t, "/wiki/Home/compare/"+first+".."+second, &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(res.Revs) != 2 || res.Revs[0] != first || res.Revs[1] != second {
		t.Errorf("Revs = %v", res.Revs)
	}
	var got []string
	for _, l := range res.Lines {
		got = append(got, strings.Join([]string{l.Text, l.Left, l.Right, l.Class}, "|"))
	}
	want := []string{
		"@@ -1,2 +1,2 @@|...|...|hunk",
		" one|1|1|context",
		"-two|2||deletion",
		"+three| |2|addition",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("lines =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompareHandler_errors(t *testing.T) {
	tw := newTestWiki(t, nil)
	first := tw.put(t, "Home.md", "one\n")

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"no separator", "/wiki/Home/compare/" + first, http.StatusBadRequest},
		{"empty side", "/wiki/Home/compare/" + first + "..", http.StatusBadRequest},
		{"missing page", "/wiki/Missing/compare/HEAD..HEAD", http.StatusNotFound},
		{"unknown revision", "/wiki/Home/compare/" + first + "..cafebabe", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := tw.get(t, tt.target, nil); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestMediaHandler(t *testing.T) {
	tw := newTestWiki(t, nil)
	if err := os.MkdirAll(filepath.Join(tw.dir, "media"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tw.dir, "media", "note.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := tw.get(t, "/media/note.txt", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body)
	}
	if rec := tw.get(t, "/media/absent.txt", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing media status = %d, want 404", rec.Code)
	}
}

func TestCORSHandler(t *testing.T) {
	settings := config.Default()
	settings.Server.CORSOrigins = []string{"https://example.com"}
	tw := newTestWiki(t, settings)
	tw.put(t, "Home.md", "home")

	req := httptest.NewRequest(http.MethodGet, "/wiki/Home", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	tw.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestJSONErrorHandler(t *testing.T) {
	tw := newTestWiki(t, nil)

	rec := httptest.NewRecorder()
	tw.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wiki/Home", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.Error != "method not allowed" {
		t.Errorf("body = %q, want a JSON error", rec.Body)
	}

	if rec := tw.get(t, "/no/such/route", &res); rec.Code != http.StatusNotFound || res.Error != "not found" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body)
	}
}
