// Package pipeline runs one sync: fetch, aggregate, render, validate and write.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kbsync/internal/aggregator"
	"kbsync/internal/logger"
	"kbsync/internal/models"
	"kbsync/internal/renderer"
	"kbsync/internal/sink"
	"kbsync/internal/validator"
)

// ErrValidationFailed is returned when the rendered document does not validate
// and the run is not configured to continue.
var ErrValidationFailed = errors.New("rendered document failed validation")

// Source supplies the decoded Help Center listings.
type Source interface {
	FetchAll(ctx context.Context) (*models.RecordSet, error)
}

// Sink receives the finished document.
type Sink interface {
	Write(ctx context.Context, doc sink.Document) error
}

// Options configures a pipeline.
type Options struct {
	// Now defaults to time.Now.
	Now                        func() time.Time
	SourceLabel                string
	Document                   renderer.Options
	Validate                   bool
	ContinueOnValidationErrors bool
}

// CategorySummary reports one rendered category.
type CategorySummary struct {
	Name      string
	Sections  int
	Articles  int
	Synthetic bool
}

// Result describes a completed run.
type Result struct {
	SyncedAt      time.Time
	Validation    *validator.ValidationResult
	Categories    []CategorySummary
	Stats         aggregator.Stats
	TotalArticles int
	Bytes         int
	Duration      time.Duration
}

// Pipeline wires a source and a sink around the aggregation and rendering core.
type Pipeline struct {
	source    Source
	sink      Sink
	renderer  *renderer.Renderer
	validator *validator.DocumentValidator
	log       *logger.Logger
	opts      Options
}

// New creates a pipeline.
func New(source Source, dst Sink, opts Options, log *logger.Logger) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Pipeline{
		source:    source,
		sink:      dst,
		renderer:  renderer.New(opts.Document),
		validator: validator.New(),
		log:       log,
		opts:      opts,
	}
}

// Run executes the stages in order. Only the source and the sink can fail; the
// returned Result is non-nil whenever rendering happened.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	p.log.Info("phase 1: fetching records")

	records, err := p.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	p.log.Info("phase 2: aggregating",
		"categories", len(records.Categories),
		"sections", len(records.Sections),
		"articles", len(records.Articles),
	)

	tree, stats := aggregator.BuildWithStats(records.Categories, records.Sections, records.Articles)
	if stats.PlaceholderCategories > 0 || stats.OrphanArticles > 0 {
		p.log.Warn("synthesized buckets for dangling references",
			"placeholder_categories", stats.PlaceholderCategories,
			"orphan_articles", stats.OrphanArticles,
		)
	}

	result := &Result{
		SyncedAt:      p.opts.Now(),
		Categories:    summarize(tree),
		Stats:         stats,
		TotalArticles: len(records.Articles),
	}

	p.log.Info("phase 3: rendering")

	doc := p.renderer.Render(tree, result.TotalArticles, p.opts.SourceLabel, result.SyncedAt)
	result.Bytes = len(doc)

	validated := false

	if p.opts.Validate {
		result.Validation = p.validator.Validate(doc)
		validated = result.Validation.IsValid

		for _, w := range result.Validation.Warnings {
			p.log.Warn("validation warning", "detail", w)
		}

		if !validated {
			level := slog.LevelError
			if p.opts.ContinueOnValidationErrors {
				level = slog.LevelWarn
			}

			for _, e := range result.Validation.Errors {
				p.log.Log(ctx, level, "validation error", "error", e.Error())
			}

			if !p.opts.ContinueOnValidationErrors {
				result.Duration = time.Since(start)
				return result, fmt.Errorf("%w: %w", ErrValidationFailed, result.Validation.Err())
			}
		}
	}

	p.log.Info("phase 4: writing", "bytes", result.Bytes)

	err = p.sink.Write(ctx, sink.Document{
		SyncedAt:  result.SyncedAt,
		Text:      doc,
		Articles:  result.TotalArticles,
		Validated: validated,
	})
	if err != nil {
		return result, fmt.Errorf("failed to write document: %w", err)
	}

	result.Duration = time.Since(start)

	return result, nil
}

// summarize lists the categories that made it into the document.
func summarize(tree *models.ContentTree) []CategorySummary {
	var out []CategorySummary

	for _, c := range tree.Categories {
		if !c.HasArticles() {
			continue
		}

		out = append(out, CategorySummary{
			Name:      c.Name,
			Sections:  len(c.NonEmptySections()),
			Articles:  c.ArticleCount(),
			Synthetic: c.Synthetic,
		})
	}

	return out
}
