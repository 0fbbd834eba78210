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

// Whelans crawls the venue's server-rendered listing pages. The site keeps
// its full programme on a single what's-on page, so there is no pagination
// to follow.
type Whelans struct {
	cfg    config.Site
	getter *fetch.Getter
}

// NewWhelans creates the Whelan's adapter.
func NewWhelans(cfg config.Site, getter *fetch.Getter) *Whelans {
	return &Whelans{cfg: cfg, getter: getter}
}

func (s *Whelans) Name() string { return "whelans" }

func (s *Whelans) Aggregator() bool { return false }

func (s *Whelans) Rules() extract.Rules {
	return extract.Rules{
		Source:         s.Name(),
		BaseURL:        s.cfg.BaseURL,
		Category:       event.CategoryConcert,
		Venue:          "Whelan's",
		ImageSelector:  ".event-header img",
		TicketSelector: "a.ticket-link",
	}
}

func (s *Whelans) Fetch(ctx context.Context) ([]Candidate, error) {
	doc, err := s.getter.Document(ctx, strings.TrimRight(s.cfg.BaseURL, "/")+"/whats-on/")
	if err != nil {
		return nil, err
	}
	return DedupeCandidates(s.parseListing(doc)), nil
}

func (s *Whelans) parseListing(doc *goquery.Document) []Candidate {
	var cands []Candidate
	doc.Find(".event-listing .event").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Find("a").First().Attr("href")
		if !ok || href == "" {
			return
		}
		c := Candidate{
			URL:      extract.Absolutize(s.cfg.BaseURL, href),
			Title:    strings.TrimSpace(sel.Find(".event-title").Text()),
			DateText: strings.TrimSpace(sel.Find(".event-date").Text()),
		}
		if src, ok := sel.Find("img").First().Attr("src"); ok {
			c.ImageURL = extract.Absolutize(s.cfg.BaseURL, src)
		}
		cands = append(cands, c)
	})
	return cands
}
