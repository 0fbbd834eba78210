package source

import (
	"context"
	"fmt"

	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

// Candidate is a not-yet-enriched reference to a possible event: a detail
// URL plus whatever metadata was visible on the listing page. Structured
// sources that need no detail extraction attach fully-built Events instead.
type Candidate struct {
	URL       string
	Title     string
	VenueText string
	ImageURL  string
	DateText  string

	Events []event.Event
}

// Seed converts the candidate's listing-page metadata for the extractor.
func (c Candidate) Seed() extract.Seed {
	return extract.Seed{
		URL:       c.URL,
		Title:     c.Title,
		VenueText: c.VenueText,
		ImageURL:  c.ImageURL,
		DateText:  c.DateText,
	}
}

// Source is one external site or API. Fetch returns candidates in discovery
// order, already deduplicated by URL within the run. A Fetch error is fatal
// for this source's run only.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Candidate, error)
	// Rules configures detail extraction for this source's candidates.
	Rules() extract.Rules
	// Aggregator marks sources that relist other venues' events; their
	// candidates are subject to cross-source suppression.
	Aggregator() bool
}

// DedupeCandidates drops candidates whose URL was already seen, preserving
// discovery order. Downstream components assume one candidate per physical
// page per run.
func DedupeCandidates(cands []Candidate) []Candidate {
	seen := make(map[string]bool, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.URL != "" && seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}

// All builds every configured adapter.
func All(cfg *config.Config, getter *fetch.Getter, browser fetch.Browser) []Source {
	scroll := fetch.ScrollOptions{
		MaxIterations: cfg.Browser.MaxIterations,
		Wait:          cfg.Browser.Wait,
	}
	return []Source{
		NewTicketmaster(cfg.Sources.Ticketmaster, getter),
		NewWhelans(cfg.Sources.Whelans, getter),
		NewVicarStreet(cfg.Sources.VicarStreet, browser, scroll),
		NewAbbeyTheatre(cfg.Sources.AbbeyTheatre, getter),
		NewLighthouse(cfg.Sources.Lighthouse, browser, scroll),
		NewEntertainmentIE(cfg.Sources.EntertainmentIE, getter),
	}
}

// ByName returns the single named adapter.
func ByName(name string, cfg *config.Config, getter *fetch.Getter, browser fetch.Browser) (Source, error) {
	for _, s := range All(cfg, getter, browser) {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown source: %s", name)
}
