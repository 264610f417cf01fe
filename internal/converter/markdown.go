// Package converter turns article HTML into markdown.
//
// The conversion is a fixed sequence of regex passes over the text rather than a
// tree walk. Article bodies come from a rich-text editor with a small tag
// vocabulary, and the pass order is what keeps nested tags from corrupting each
// other: every pass only sees what the previous passes left behind.
package converter

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// headingPatterns is indexed by heading level; index 0 is unused.
var headingPatterns = func() [7]*regexp.Regexp {
	var patterns [7]*regexp.Regexp
	for level := 1; level <= 6; level++ {
		patterns[level] = regexp.MustCompile(fmt.Sprintf(`(?s)<h%d[^>]*>(.*?)</h%d>`, level, level))
	}

	return patterns
}()

var (
	imgWithAlt  = regexp.MustCompile(`<img[^>]*alt="([^"]*)"[^>]*/?>`)
	imgAny      = regexp.MustCompile(`<img[^>]*/?>`)
	boldTag     = regexp.MustCompile(`(?s)<strong>(.*?)</strong>|<b>(.*?)</b>`)
	italicTag   = regexp.MustCompile(`(?s)<em>(.*?)</em>|<i>(.*?)</i>`)
	anchorTag   = regexp.MustCompile(`(?s)<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	listItemTag = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	lineBreak   = regexp.MustCompile(`<br\s*/?>`)
	paragraph   = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	divTag      = regexp.MustCompile(`(?s)<div[^>]*>(.*?)</div>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	blankRun    = regexp.MustCompile(`\n{3,}`)
)

// ToMarkdown converts an HTML fragment to markdown. It never fails: markup it
// does not recognise is stripped or passed through as text.
func ToMarkdown(h string) string {
	if h == "" {
		return ""
	}

	h = imgWithAlt.ReplaceAllString(h, "[${1}]")
	h = imgAny.ReplaceAllString(h, "")

	// h6 first so that a shorter level never claims a longer tag name.
	for level := 6; level >= 1; level-- {
		marks := strings.Repeat("#", level)
		h = replaceGroups(headingPatterns[level], h, func(groups []string) string {
			return marks + " " + strings.TrimSpace(groups[1])
		})
	}

	h = replaceGroups(boldTag, h, func(groups []string) string {
		return "**" + firstNonEmptyGroup(groups) + "**"
	})
	h = replaceGroups(italicTag, h, func(groups []string) string {
		return "*" + firstNonEmptyGroup(groups) + "*"
	})

	h = anchorTag.ReplaceAllString(h, "[${2}](${1})")
	h = listItemTag.ReplaceAllString(h, "- ${1}")
	h = lineBreak.ReplaceAllString(h, "\n")
	h = paragraph.ReplaceAllString(h, "${1}\n\n")
	h = divTag.ReplaceAllString(h, "${1}\n")
	h = anyTag.ReplaceAllString(h, "")

	h = html.UnescapeString(h)
	h = blankRun.ReplaceAllString(h, "\n\n")

	return strings.TrimSpace(h)
}

// replaceGroups is ReplaceAllStringFunc with access to capture groups.
// Unmatched groups are passed as empty strings.
func replaceGroups(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	last := 0

	for _, m := range matches {
		sb.WriteString(s[last:m[0]])

		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}

		sb.WriteString(fn(groups))

		last = m[1]
	}

	sb.WriteString(s[last:])

	return sb.String()
}

// firstNonEmptyGroup returns the content of whichever alternative matched.
func firstNonEmptyGroup(groups []string) string {
	for _, g := range groups[1:] {
		if g != "" {
			return g
		}
	}

	return ""
}
