// Package sourcemap resolves a dependency's declared source location to its
// local checked-out directory.
package sourcemap

import (
	"os"
	"path/filepath"
)

// Map resolves remote source locations. The second result is false when the
// location has no local checkout.
type Map interface {
	Resolve(location string) (string, bool)
}

// Static is a fixed location-to-path mapping.
type Static map[string]string

func (s Static) Resolve(location string) (string, bool) {
	path, ok := s[location]
	return path, ok
}

// Dir resolves locations against a checkouts directory where each
// dependency lives at <Root>/<location>, the location interpreted as a
// slash-separated relative path (e.g. "github.com/madler/zlib").
type Dir struct {
	Root string
}

func (d Dir) Resolve(location string) (string, bool) {
	path := filepath.Join(d.Root, filepath.FromSlash(location))
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return path, true
}
