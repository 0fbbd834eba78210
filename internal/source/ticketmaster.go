package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

// Ticketmaster pulls Dublin listings from the Discovery API: one
// authenticated call returning a bounded, already-paginated result set. No
// crawling, no detail extraction; candidates carry finished events.
type Ticketmaster struct {
	cfg    config.Ticketmaster
	getter *fetch.Getter
	now    func() time.Time
}

// NewTicketmaster creates the Ticketmaster adapter.
func NewTicketmaster(cfg config.Ticketmaster, getter *fetch.Getter) *Ticketmaster {
	return &Ticketmaster{cfg: cfg, getter: getter, now: time.Now}
}

func (s *Ticketmaster) Name() string { return "ticketmaster" }

func (s *Ticketmaster) Aggregator() bool { return true }

func (s *Ticketmaster) Rules() extract.Rules {
	// The API's artwork beats anything scraped from a venue page, so this
	// source may replace an existing image on merge.
	return extract.Rules{Source: s.Name(), BaseURL: s.cfg.BaseURL, Overwrite: []string{"image_url"}}
}

// The Discovery API shape: events nested under _embedded, each with its own
// nested venue, image, and classification arrays.
type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	Images []struct {
		URL   string `json:"url"`
		Width int    `json:"width"`
	} `json:"images"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
	} `json:"classifications"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
		} `json:"venues"`
	} `json:"_embedded"`
}

func (s *Ticketmaster) Fetch(ctx context.Context) ([]Candidate, error) {
	q := url.Values{}
	q.Set("apikey", s.cfg.APIKey)
	q.Set("city", s.cfg.City)
	q.Set("size", strconv.Itoa(s.cfg.PageSize))
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/discovery/v2/events.json?" + q.Encode()

	body, err := s.getter.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp tmResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding ticketmaster response: %w", err)
	}

	now := s.now()
	cands := make([]Candidate, 0, len(resp.Embedded.Events))
	for _, te := range resp.Embedded.Events {
		start, ok := te.start(now)
		if !ok {
			continue // no resolvable date: drop before persistence
		}

		e := event.Event{
			ID:          te.URL, // natural external URL, stable across runs
			Title:       strings.TrimSpace(te.Name),
			StartDate:   start,
			Venue:       te.venue(),
			ImageURL:    te.bestImage(),
			ExternalURL: te.URL,
			Category:    te.category(),
			Source:      s.Name(),
		}
		if e.ID == "" {
			e.ID = event.HashID(s.Name(), e.Title, e.StartDate)
		}
		cands = append(cands, Candidate{URL: te.URL, Title: e.Title, Events: []event.Event{e}})
	}
	return DedupeCandidates(cands), nil
}

func (te tmEvent) start(now time.Time) (time.Time, bool) {
	if t, ok := event.ParseDate(te.Dates.Start.DateTime, now); ok {
		return t, true
	}
	if te.Dates.Start.LocalDate != "" && te.Dates.Start.LocalTime != "" {
		if t, ok := event.ParseDate(te.Dates.Start.LocalDate+"T"+te.Dates.Start.LocalTime, now); ok {
			return t, true
		}
	}
	return event.ParseDate(te.Dates.Start.LocalDate, now)
}

func (te tmEvent) venue() string {
	if len(te.Embedded.Venues) > 0 {
		return strings.TrimSpace(te.Embedded.Venues[0].Name)
	}
	return ""
}

// bestImage picks the widest image variant.
func (te tmEvent) bestImage() string {
	best := ""
	width := -1
	for _, img := range te.Images {
		if img.Width > width {
			best = img.URL
			width = img.Width
		}
	}
	return best
}

func (te tmEvent) category() event.Category {
	if len(te.Classifications) == 0 {
		return event.CategoryOther
	}
	switch strings.ToLower(te.Classifications[0].Segment.Name) {
	case "music":
		return event.CategoryConcert
	case "film":
		return event.CategoryFilm
	case "arts & theatre", "theatre":
		return event.CategoryTheatre
	default:
		return event.CategoryOther
	}
}
