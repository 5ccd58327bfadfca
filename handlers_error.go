package main

import (
	"net/http"
	"strings"
)

// errorInterceptWriter swallows error responses that weren't written as JSON, so they can be
// replaced with one that is.
type errorInterceptWriter struct {
	realWriter http.ResponseWriter
	status     int
}

func (w *errorInterceptWriter) Header() http.Header {
	return w.realWriter.Header()
}

func (w *errorInterceptWriter) WriteHeader(status int) {
	w.status = status
	if !w.intercepted() {
		w.realWriter.WriteHeader(status)
		return
	}
	w.realWriter.Header().Del("Content-Encoding")
	w.realWriter.Header().Del("Content-Length")
}

func (w *errorInterceptWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if !w.intercepted() {
		return w.realWriter.Write(p)
	}
	return len(p), nil
}

func (w *errorInterceptWriter) intercepted() bool {
	return w.status >= http.StatusBadRequest &&
		!strings.HasPrefix(w.realWriter.Header().Get("Content-Type"), "application/json")
}

// JSONErrorHandler rewrites plain text error responses, such as those from http.ServeFile or the
// router's method checks, into the API's JSON error format.
func JSONErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fakeWriter := &errorInterceptWriter{realWriter: w}

		next.ServeHTTP(fakeWriter, r)

		if fakeWriter.intercepted() {
			writeError(w, fakeWriter.status, strings.ToLower(http.StatusText(fakeWriter.status)))
		}
	})
}
