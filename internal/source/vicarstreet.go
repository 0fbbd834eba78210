package source

import (
	"context"
	"strings"

	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

// VicarStreet drives a scripted browser session: the venue's listing only
// populates through client-side rendering and a "load more" control, so the
// adapter scrolls and clicks within the configured budget and collects the
// detail links each pass reveals.
type VicarStreet struct {
	cfg     config.Site
	browser fetch.Browser
	scroll  fetch.ScrollOptions
}

// NewVicarStreet creates the Vicar Street adapter.
func NewVicarStreet(cfg config.Site, browser fetch.Browser, scroll fetch.ScrollOptions) *VicarStreet {
	scroll.LoadMoreSelector = "button.load-more"
	return &VicarStreet{cfg: cfg, browser: browser, scroll: scroll}
}

func (s *VicarStreet) Name() string { return "vicarstreet" }

func (s *VicarStreet) Aggregator() bool { return false }

func (s *VicarStreet) Rules() extract.Rules {
	return extract.Rules{
		Source:        s.Name(),
		BaseURL:       s.cfg.BaseURL,
		Category:      event.CategoryConcert,
		Venue:         "Vicar Street",
		DateSelector:  ".event-info .date",
		ImageSelector: ".event-banner img",
	}
}

func (s *VicarStreet) Fetch(ctx context.Context) ([]Candidate, error) {
	listURL := strings.TrimRight(s.cfg.BaseURL, "/") + "/events"
	links, err := s.browser.CollectLinks(ctx, listURL, `a[href*="/event/"]`, s.scroll)
	if err != nil {
		return nil, err // session failure is fatal for this run
	}

	cands := make([]Candidate, 0, len(links))
	for _, link := range links {
		cands = append(cands, Candidate{URL: extract.Absolutize(s.cfg.BaseURL, link)})
	}
	return DedupeCandidates(cands), nil
}
