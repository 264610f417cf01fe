// Package renderer serializes a content tree into the consolidated markdown document.
package renderer

import (
	"fmt"
	"strings"
	"time"

	"kbsync/internal/converter"
	"kbsync/internal/models"
)

// Defaults used when Options fields are empty.
const (
	DefaultTitle       = "Knowledge Base"
	DefaultTimeLayout  = "2006-01-02 15:04"
	DefaultRefreshNote = "This is a static snapshot. Changes in the Help Center will NOT auto-update here. " +
		"Re-run `kbsync sync` to refresh."

	noContent = "*(No content)*"
	rule      = "---"
	draftTag  = " [DRAFT]"
)

// Options controls the fixed parts of the document.
type Options struct {
	Title       string
	RefreshNote string
	TimeLayout  string
}

// Renderer turns content trees into markdown documents.
type Renderer struct {
	opts    Options
	convert func(string) string
}

// New creates a renderer, filling empty options with defaults.
func New(opts Options) *Renderer {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	if opts.RefreshNote == "" {
		opts.RefreshNote = DefaultRefreshNote
	}

	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}

	return &Renderer{
		opts:    opts,
		convert: converter.ToMarkdown,
	}
}

// Render writes the preamble, the table of contents and the body for tree.
// total is reported as-is in the preamble.
func (r *Renderer) Render(tree *models.ContentTree, total int, sourceLabel string, ts time.Time) string {
	var lines []string

	lines = append(lines,
		"# "+r.opts.Title,
		"",
		"> Source: "+sourceLabel,
		"> Last synced: "+ts.Format(r.opts.TimeLayout),
		fmt.Sprintf("> Total articles: %d", total),
		"> Note: "+r.opts.RefreshNote,
		"",
	)

	lines = append(lines, r.tableOfContents(tree)...)

	for _, cat := range tree.Categories {
		if !cat.HasArticles() {
			continue
		}

		lines = append(lines, r.category(cat)...)
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) tableOfContents(tree *models.ContentTree) []string {
	lines := []string{"## Table of Contents", ""}

	num := 0

	for _, cat := range tree.Categories {
		if !cat.HasArticles() {
			continue
		}

		num++
		lines = append(lines, fmt.Sprintf("%d. [%s](#%s)", num, cat.Name, Slug(cat.Name)))

		for _, sec := range cat.NonEmptySections() {
			lines = append(lines, fmt.Sprintf("   - [%s](#%s) (%d articles)", sec.Name, Slug(sec.Name), len(sec.Articles)))
		}
	}

	return append(lines, "", rule, "")
}

func (r *Renderer) category(cat *models.CategoryNode) []string {
	lines := []string{"## " + cat.Name, ""}

	for _, sec := range cat.NonEmptySections() {
		lines = append(lines, "### "+sec.Name, "")

		for _, a := range sec.Articles {
			lines = append(lines, r.article(a)...)
		}
	}

	return append(lines, "")
}

func (r *Renderer) article(a models.Article) []string {
	heading := "#### " + a.Title
	if a.Draft {
		heading += draftTag
	}

	body := r.convert(a.Body)
	if body == "" {
		body = noContent
	}

	return []string{
		heading,
		fmt.Sprintf("*Article ID: %s | Updated: %s*", a.ID, a.UpdatedDate()),
		fmt.Sprintf("*URL: %s*", a.HTMLURL),
		"",
		body,
		"",
		rule,
		"",
	}
}
