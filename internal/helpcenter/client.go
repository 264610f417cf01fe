// Package helpcenter reads categories, sections and articles from the Help Center API.
package helpcenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"kbsync/internal/config"
	"kbsync/internal/logger"
	"kbsync/internal/models"
)

// Listing errors.
var (
	ErrMalformedResponse = errors.New("malformed listing response")
	ErrPaginationLoop    = errors.New("next_page points to an already fetched page")
)

// Listing names, which are also the JSON keys of each response.
const (
	ListingCategories = "categories"
	ListingSections   = "sections"
	ListingArticles   = "articles"
)

// Client fetches Help Center listings, following next_page links.
type Client struct {
	transport *transport
	log       *logger.Logger
	baseURL   string
	perPage   int
}

// NewClient creates a client for the Help Center described by cfg.
// bufferSizeKb bounds the size of a single response.
func NewClient(cfg config.SourceConfig, bufferSizeKb int, log *logger.Logger) *Client {
	return &Client{
		transport: newTransport(cfg, bufferSizeKb, log),
		log:       log,
		baseURL:   cfg.APIBaseURL(),
		perPage:   cfg.PerPage,
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.transport.client.CloseIdleConnections()
}

// Categories returns every category in listing order.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	return listAll[models.Category](ctx, c, ListingCategories)
}

// Sections returns every section in listing order.
func (c *Client) Sections(ctx context.Context) ([]models.Section, error) {
	return listAll[models.Section](ctx, c, ListingSections)
}

// Articles returns every article in listing order.
func (c *Client) Articles(ctx context.Context) ([]models.Article, error) {
	return listAll[models.Article](ctx, c, ListingArticles)
}

// FetchAll retrieves the three listings concurrently. Pages within a listing are
// fetched in order. The first failure cancels the other listings.
func (c *Client) FetchAll(ctx context.Context) (*models.RecordSet, error) {
	set := &models.RecordSet{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		set.Categories, err = c.Categories(gctx)

		return err
	})
	g.Go(func() error {
		var err error
		set.Sections, err = c.Sections(gctx)

		return err
	})
	g.Go(func() error {
		var err error
		set.Articles, err = c.Articles(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Info("fetched help center",
		"categories", len(set.Categories),
		"sections", len(set.Sections),
		"articles", len(set.Articles),
	)

	return set, nil
}

func listAll[T any](ctx context.Context, c *Client, listing string) ([]T, error) {
	next := fmt.Sprintf("%s/%s.json?per_page=%d", c.baseURL, listing, c.perPage)
	seen := make(map[string]bool)

	var all []T

	for page := 1; next != ""; page++ {
		if seen[next] {
			return nil, fmt.Errorf("%w: %s", ErrPaginationLoop, next)
		}

		seen[next] = true

		body, err := c.transport.get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", listing, page, err)
		}

		items, nextPage, err := decodePage[T](body, listing)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s page %d: %w", listing, page, err)
		}

		c.log.Debug("fetched page", "listing", listing, "page", page, "records", len(items))

		all = append(all, items...)
		next = nextPage
	}

	return all, nil
}

// decodePage extracts the records under key and the next_page link from one response.
func decodePage[T any](body []byte, key string) ([]T, string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	itemsRaw, ok := raw[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: missing %q", ErrMalformedResponse, key)
	}

	var items []T
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var next *string

	if nextRaw, ok := raw["next_page"]; ok {
		if err := json.Unmarshal(nextRaw, &next); err != nil {
			return nil, "", fmt.Errorf("%w: next_page: %w", ErrMalformedResponse, err)
		}
	}

	if next == nil {
		return items, "", nil
	}

	return items, *next, nil
}
