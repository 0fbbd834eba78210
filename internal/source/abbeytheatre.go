package source

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

// AbbeyTheatre crawls the theatre's server-rendered what's-on listing. The
// interesting part lives on the detail pages: JSON-LD blocks whose subEvent
// entries carry one timestamp per performance, which the extractor expands
// into one catalog row each.
type AbbeyTheatre struct {
	cfg    config.Site
	getter *fetch.Getter
}

// NewAbbeyTheatre creates the Abbey Theatre adapter.
func NewAbbeyTheatre(cfg config.Site, getter *fetch.Getter) *AbbeyTheatre {
	return &AbbeyTheatre{cfg: cfg, getter: getter}
}

func (s *AbbeyTheatre) Name() string { return "abbeytheatre" }

func (s *AbbeyTheatre) Aggregator() bool { return false }

func (s *AbbeyTheatre) Rules() extract.Rules {
	return extract.Rules{
		Source:   s.Name(),
		BaseURL:  s.cfg.BaseURL,
		Category: event.CategoryTheatre,
		Venue:    "Abbey Theatre",
	}
}

func (s *AbbeyTheatre) Fetch(ctx context.Context) ([]Candidate, error) {
	doc, err := s.getter.Document(ctx, strings.TrimRight(s.cfg.BaseURL, "/")+"/whats-on/")
	if err != nil {
		return nil, err
	}
	return DedupeCandidates(s.parseListing(doc)), nil
}

func (s *AbbeyTheatre) parseListing(doc *goquery.Document) []Candidate {
	var cands []Candidate
	doc.Find(`a[href*="/whats-on/"]`).Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := extract.Absolutize(s.cfg.BaseURL, href)
		// Skip the listing page itself and section anchors.
		if abs == "" || strings.HasSuffix(strings.TrimRight(abs, "/"), "/whats-on") {
			return
		}
		cands = append(cands, Candidate{
			URL:   abs,
			Title: strings.TrimSpace(sel.Text()),
		})
	})
	return cands
}
