package main

import (
	"net/http"
	"os"
	"strings"
)

// MediaProvider locates media files on disk.
type MediaProvider interface {
	MediaPath(name string) (string, error)
}

func MediaHandler(provider MediaProvider) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		name := strings.TrimPrefix(request.URL.Path, "/media/")
		filePath, err := provider.MediaPath(name)
		if err != nil {
			writeError(writer, http.StatusNotFound, "not found")
			return
		}

		fi, err := os.Stat(filePath)
		if err != nil || fi.IsDir() {
			writeError(writer, http.StatusNotFound, "not found")
			return
		}

		writer.Header().Add("X-Content-Type-Options", "nosniff")
		http.ServeFile(writer, request, filePath)
	}
}
