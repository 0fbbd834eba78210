package source

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
	"github.com/tkinsella/dublin-events/internal/logger"
)

// maxAggregatorPages caps pagination discovery so a runaway "next" chain
// can't turn one run into a crawl of the whole site.
const maxAggregatorPages = 5

// EntertainmentIE crawls the aggregator's Dublin listing. It relists events
// that dedicated venue adapters already cover, so its candidates go through
// cross-source suppression downstream.
type EntertainmentIE struct {
	cfg    config.Site
	getter *fetch.Getter
}

// NewEntertainmentIE creates the aggregator adapter.
func NewEntertainmentIE(cfg config.Site, getter *fetch.Getter) *EntertainmentIE {
	return &EntertainmentIE{cfg: cfg, getter: getter}
}

func (s *EntertainmentIE) Name() string { return "entertainmentie" }

func (s *EntertainmentIE) Aggregator() bool { return true }

func (s *EntertainmentIE) Rules() extract.Rules {
	return extract.Rules{
		Source:        s.Name(),
		BaseURL:       s.cfg.BaseURL,
		VenueSelector: ".event-venue",
		DateSelector:  ".event-date",
		ImageSelector: ".event-hero img",
	}
}

func (s *EntertainmentIE) Fetch(ctx context.Context) ([]Candidate, error) {
	indexURL := strings.TrimRight(s.cfg.BaseURL, "/") + "/whats-on/dublin/"
	doc, err := s.getter.Document(ctx, indexURL)
	if err != nil {
		return nil, err // index failure is fatal for this run
	}

	cands := s.parsePage(doc)

	// Follow discovered pagination links, bounded. A page that fails to
	// fetch costs us its candidates, not the run.
	for _, pageURL := range s.paginationLinks(doc) {
		pageDoc, err := s.getter.Document(ctx, pageURL)
		if err != nil {
			logger.Warn("aggregator page skipped", logger.Fields{"url": pageURL, "error": err.Error()})
			continue
		}
		cands = append(cands, s.parsePage(pageDoc)...)
	}

	return DedupeCandidates(cands), nil
}

func (s *EntertainmentIE) parsePage(doc *goquery.Document) []Candidate {
	var cands []Candidate
	doc.Find(".event-card").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Find("a").First().Attr("href")
		if !ok || href == "" {
			return
		}
		c := Candidate{
			URL:       extract.Absolutize(s.cfg.BaseURL, href),
			Title:     strings.TrimSpace(sel.Find(".event-card__title").Text()),
			VenueText: strings.TrimSpace(sel.Find(".event-card__venue").Text()),
			DateText:  strings.TrimSpace(sel.Find(".event-card__date").Text()),
		}
		if src, ok := sel.Find("img").First().Attr("src"); ok {
			c.ImageURL = extract.Absolutize(s.cfg.BaseURL, src)
		}
		cands = append(cands, c)
	})
	return cands
}

func (s *EntertainmentIE) paginationLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find(`a[href*="page="]`).Each(func(i int, sel *goquery.Selection) {
		if len(links) >= maxAggregatorPages {
			return
		}
		href, _ := sel.Attr("href")
		abs := extract.Absolutize(s.cfg.BaseURL, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}
