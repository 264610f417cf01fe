// Package validator checks consolidated documents for broken anchors and count drift.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"kbsync/internal/renderer"
)

// Validation errors.
var (
	ErrBrokenAnchor    = errors.New("anchor does not match any heading")
	ErrCountMismatch   = errors.New("declared article total does not match document")
	ErrMissingTotal    = errors.New("total articles line not found")
	ErrInvalidDocument = errors.New("document failed validation")
)

var totalLine = regexp.MustCompile(`(?m)^> Total articles: (\d+)\s*$`)

const (
	tocHeading        = "Table of Contents"
	articleMetaPrefix = "*Article ID: "
	articleLevel      = 4
)

// ValidationError is a single problem found in a document.
type ValidationError struct {
	Err    error
	Target string
	Line   int
}

// Error implements error.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Target)
	}

	return fmt.Sprintf("%v: %s", e.Err, e.Target)
}

// Unwrap returns the sentinel error.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationStats contains document statistics.
type ValidationStats struct {
	Headings         int
	AnchorLinks      int
	BrokenAnchors    int
	DeclaredArticles int
	CountedArticles  int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// Err returns nil for a valid result, otherwise ErrInvalidDocument joined with every problem.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	errs := []error{ErrInvalidDocument}
	for _, e := range r.Errors {
		errs = append(errs, e)
	}

	return errors.Join(errs...)
}

// DocumentValidator parses documents with goldmark and checks their internal links.
type DocumentValidator struct {
	md goldmark.Markdown
}

// New creates a document validator.
func New() *DocumentValidator {
	return &DocumentValidator{md: goldmark.New()}
}

type anchorLink struct {
	target string
	line   int
}

// Validate checks that every table of contents link resolves to a heading and
// that the declared article total matches the number of article entries.
// Links inside article bodies are not checked.
func (v *DocumentValidator) Validate(doc string) *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	src := []byte(doc)
	root := v.md.Parser().Parse(text.NewReader(src))

	headings := make(map[string]int)

	var (
		links          []anchorLink
		inTOC, sawTOC  bool
		countedEntries int
	)

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			name := rawText(node, src)
			headings[renderer.Slug(name)]++
			result.Stats.Headings++

			inTOC = !sawTOC && node.Level == 2 && name == tocHeading
			sawTOC = sawTOC || inTOC

			if node.Level == articleLevel && isArticleMeta(node.NextSibling(), src) {
				countedEntries++
			}
		case *ast.ThematicBreak:
			inTOC = false
		case *ast.Link:
			dest := string(node.Destination)
			if inTOC && strings.HasPrefix(dest, "#") {
				links = append(links, anchorLink{target: dest[1:], line: lineOf(node, src)})
			}
		}

		return ast.WalkContinue, nil
	})

	if !sawTOC {
		result.Warnings = append(result.Warnings, "no \"## "+tocHeading+"\" heading found")
	}

	result.Stats.AnchorLinks = len(links)

	for _, l := range links {
		count, ok := headings[l.target]
		if !ok {
			result.Stats.BrokenAnchors++
			result.Errors = append(result.Errors, ValidationError{Err: ErrBrokenAnchor, Target: "#" + l.target, Line: l.line})

			continue
		}

		if count > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("anchor #%s matches %d headings", l.target, count))
		}
	}

	result.Stats.CountedArticles = countedEntries
	v.checkTotal(doc, result)

	result.IsValid = len(result.Errors) == 0

	return result
}

func (v *DocumentValidator) checkTotal(doc string, result *ValidationResult) {
	match := totalLine.FindStringSubmatch(doc)
	if match == nil {
		result.Errors = append(result.Errors, ValidationError{Err: ErrMissingTotal, Target: "> Total articles"})
		return
	}

	declared, err := strconv.Atoi(match[1])
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{Err: ErrMissingTotal, Target: match[0]})
		return
	}

	result.Stats.DeclaredArticles = declared

	if declared != result.Stats.CountedArticles {
		result.Errors = append(result.Errors, ValidationError{
			Err:    ErrCountMismatch,
			Target: fmt.Sprintf("declared %d, found %d", declared, result.Stats.CountedArticles),
		})
	}
}

// rawText returns a block's source text as written, inline HTML included.
func rawText(n ast.Node, src []byte) string {
	var sb strings.Builder

	lines := n.Lines()
	if lines == nil {
		return ""
	}

	for i := range lines.Len() {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}

	return strings.TrimSpace(sb.String())
}

// isArticleMeta reports whether n is the metadata paragraph that follows an article heading.
func isArticleMeta(n ast.Node, src []byte) bool {
	p, ok := n.(*ast.Paragraph)
	if !ok {
		return false
	}

	return strings.HasPrefix(rawText(p, src), articleMetaPrefix)
}

// lineOf returns the 1-based source line of an inline node's enclosing block.
func lineOf(n ast.Node, src []byte) int {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() != ast.TypeBlock {
			continue
		}

		lines := p.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}

		return strings.Count(string(src[:lines.At(0).Start]), "\n") + 1
	}

	return 0
}
