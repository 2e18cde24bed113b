package collector

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter drops every path matched by one of patterns, keeping order.
// Patterns are doublestar globs; a pattern without a slash also matches the
// base name at any depth, so "yarn.lock" excludes "web/yarn.lock".
func Filter(paths, patterns []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !Excluded(p, patterns) {
			out = append(out, p)
		}
	}
	return out
}

// Excluded reports whether p matches any of patterns. Invalid patterns never
// match; config.Load rejects them up front.
func Excluded(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, path.Base(p)); ok {
				return true
			}
		}
	}
	return false
}
