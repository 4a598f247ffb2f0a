package archive

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which bundle files are left out of an archive.
type Filter struct {
	patterns []string
}

// NewFilter compiles the exclusion patterns, which use doublestar syntax.
func NewFilter(patterns []string) (*Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclusion pattern %q", p)
		}
	}
	return &Filter{patterns: append([]string(nil), patterns...)}, nil
}

// Excluded reports whether rel, a forward-slash path relative to the bundle
// root, matches any pattern. Each pattern is tried against the whole path,
// against the path with a "**/" prefix, and against the base name.
func (f *Filter) Excluded(rel string) bool {
	base := path.Base(rel)
	for _, p := range f.patterns {
		rooted := p
		if !strings.HasPrefix(p, "**/") {
			rooted = "**/" + p
		}
		if match(p, rel) || match(rooted, rel) || match(p, base) {
			return true
		}
	}
	return false
}

// Included is the negation of Excluded.
func (f *Filter) Included(rel string) bool {
	return !f.Excluded(rel)
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
