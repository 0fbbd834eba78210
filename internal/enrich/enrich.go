package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/fetch"
	"github.com/tkinsella/dublin-events/internal/logger"
)

// posterBaseURL prefixes the relative poster paths the metadata API returns.
const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Metadata is one successful lookup result.
type Metadata struct {
	ImageURL string
	Synopsis string
}

// Client queries the media metadata search API by title.
type Client struct {
	baseURL string
	apiKey  string
	getter  *fetch.Getter
}

// NewClient creates a Client against the configured metadata API.
func NewClient(cfg config.Media, getter *fetch.Getter) *Client {
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), apiKey: cfg.APIKey, getter: getter}
}

type searchResponse struct {
	Results []struct {
		Overview   string `json:"overview"`
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// Lookup searches the API for a title. A (nil, nil) return means the API
// answered but had no match; that negative result is cacheable.
func (c *Client) Lookup(ctx context.Context, title string) (*Metadata, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", title)
	endpoint := c.baseURL + "/3/search/multi?" + q.Encode()

	body, err := c.getter.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding metadata response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	// First result wins; the API orders by relevance.
	first := resp.Results[0]
	meta := &Metadata{Synopsis: strings.TrimSpace(first.Overview)}
	if first.PosterPath != "" {
		meta.ImageURL = posterBaseURL + first.PosterPath
	}
	if meta.ImageURL == "" && meta.Synopsis == "" {
		return nil, nil
	}
	return meta, nil
}

// Summary reports what one enrichment run did.
type Summary struct {
	Candidates int // rows missing an image or description
	Enriched   int // rows that received at least one media field
	Skipped    int // rows left alone (no match, or lookup failure)
}

// Job selects catalog rows with missing media and fills them from the API.
type Job struct {
	store  catalog.Store
	client *Client
}

// NewJob creates an enrichment Job.
func NewJob(store catalog.Store, client *Client) *Job {
	return &Job{store: store, client: client}
}

// Run enriches every row currently missing media. Each distinct title is
// looked up once per run; the cache also holds negative and failed lookups
// so a flaky API costs one attempt per title, not one per row. Only store
// failures abort the run.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	events, err := j.store.MissingMedia(ctx)
	if err != nil {
		return sum, fmt.Errorf("selecting enrichment candidates: %w", err)
	}
	sum.Candidates = len(events)

	cache := map[string]*Metadata{}
	for _, e := range events {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}

		key := strings.ToLower(strings.TrimSpace(e.Title))
		meta, seen := cache[key]
		if !seen {
			meta, err = j.client.Lookup(ctx, e.Title)
			if err != nil {
				logger.Warn("metadata lookup failed", logger.Fields{"title": e.Title, "error": err.Error()})
				logger.IncrCounter("enrich.lookup_failed")
				meta = nil
			}
			cache[key] = meta
		}

		if meta == nil {
			sum.Skipped++
			continue
		}

		if err := j.store.UpdateMedia(ctx, e.ID, meta.ImageURL, meta.Synopsis); err != nil {
			return sum, fmt.Errorf("updating media for %s: %w", e.ID, err)
		}
		sum.Enriched++
	}

	logger.Info("enrichment complete", logger.Fields{
		"candidates": sum.Candidates,
		"enriched":   sum.Enriched,
		"skipped":    sum.Skipped,
	})
	return sum, nil
}
