package proxy

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter selects which client paths are recorded. Excluded paths are
// still bridged; their traffic just never reaches the session.
type PathFilter struct {
	Include []string // record only matching paths (empty = all)
	Exclude []string // never record matching paths
}

// Validate reports the first malformed pattern.
func (f PathFilter) Validate() error {
	for _, p := range append(append([]string(nil), f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid path pattern %q", p)
		}
	}
	return nil
}

// Records reports whether traffic for path should be captured.
// An exclude match wins over an include match.
func (f PathFilter) Records(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, p := range f.Exclude {
		if matchPath(p, path) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, p := range f.Include {
		if matchPath(p, path) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}
