package api

import (
	"net/http"
	"os"
)

// spaFileSystem implements http.FileSystem and falls back to index.html
// for paths that do not exist, so client-side routes deep-link cleanly.
type spaFileSystem struct {
	root http.FileSystem
}

// Open opens the named file, or index.html when it does not exist.
func (s *spaFileSystem) Open(name string) (http.File, error) {
	f, err := s.root.Open(name)
	if os.IsNotExist(err) {
		return s.root.Open("index.html")
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
