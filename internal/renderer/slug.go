package renderer

import (
	"regexp"
	"strings"
)

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Slug derives the in-document anchor for a heading name. Characters other than
// ASCII letters, digits, whitespace and hyphens are dropped, and each whitespace
// run, tabs and newlines included, becomes one hyphen.
// Distinct names can share a slug ("A/B" and "AB"); such collisions are left as is.
func Slug(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(name), "")
	s = strings.TrimSpace(s)

	return slugWhitespace.ReplaceAllString(s, "-")
}
