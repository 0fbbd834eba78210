package source

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/extract"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

const lighthouseVenue = "Light House Cinema"

// Lighthouse reads the cinema's schedule grid. The page needs a browser
// session (cookie consent plus client-side rendering) and presents day
// headers like "TUESDAY DECEMBER 9TH" followed by one row per film with its
// showtimes. Every (film, showtime) pair becomes its own candidate event.
type Lighthouse struct {
	cfg     config.Site
	browser fetch.Browser
	scroll  fetch.ScrollOptions
	now     func() time.Time
}

// NewLighthouse creates the Light House Cinema adapter.
func NewLighthouse(cfg config.Site, browser fetch.Browser, scroll fetch.ScrollOptions) *Lighthouse {
	return &Lighthouse{cfg: cfg, browser: browser, scroll: scroll, now: time.Now}
}

func (s *Lighthouse) Name() string { return "lighthouse" }

func (s *Lighthouse) Aggregator() bool { return false }

func (s *Lighthouse) Rules() extract.Rules {
	return extract.Rules{
		Source:   s.Name(),
		BaseURL:  s.cfg.BaseURL,
		Category: event.CategoryFilm,
		Venue:    lighthouseVenue,
	}
}

func (s *Lighthouse) Fetch(ctx context.Context) ([]Candidate, error) {
	scheduleURL := strings.TrimRight(s.cfg.BaseURL, "/") + "/cinema-times"
	html, err := s.browser.PageHTML(ctx, scheduleURL, s.scroll)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return DedupeCandidates(s.parseSchedule(doc)), nil
}

// parseSchedule walks the grid in document order: a day header sets the
// current day, each following film row expands into one event per distinct
// showtime under that day.
func (s *Lighthouse) parseSchedule(doc *goquery.Document) []Candidate {
	now := s.now()
	var cands []Candidate
	var day time.Time
	haveDay := false

	doc.Find(".schedule").Children().Each(func(i int, sel *goquery.Selection) {
		if sel.Is("h2, h3") {
			if d, ok := event.ParseDayHeader(sel.Text(), now); ok {
				day = d
				haveDay = true
			}
			return
		}
		if !haveDay || !sel.Is(".film") {
			return
		}

		title := strings.TrimSpace(sel.Find(".film-title").Text())
		if title == "" {
			return
		}
		href, _ := sel.Find("a").First().Attr("href")
		pageURL := extract.Absolutize(s.cfg.BaseURL, href)

		var starts []time.Time
		sel.Find(".showtime").Each(func(j int, st *goquery.Selection) {
			if t, ok := event.CombineDayTime(day, st.Text()); ok {
				starts = append(starts, t)
			}
		})

		var events []event.Event
		for _, start := range event.DedupeTimes(starts) {
			events = append(events, event.Event{
				ID:          event.HashID(s.Name(), title, start),
				Title:       title,
				StartDate:   start,
				Venue:       lighthouseVenue,
				ExternalURL: pageURL,
				Category:    event.CategoryFilm,
				Source:      s.Name(),
			})
		}
		if len(events) == 0 {
			return
		}
		cands = append(cands, Candidate{
			// The grid has no per-showing page; key the candidate by film
			// page plus day so URL dedup keeps distinct days apart.
			URL:    pageURL + "#" + day.Format("2006-01-02") + "-" + slug(title),
			Title:  title,
			Events: events,
		})
	})
	return cands
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}
