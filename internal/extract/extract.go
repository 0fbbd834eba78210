package extract

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

// Rules configures field extraction for one source. Selectors are optional;
// an empty selector just skips that layer of the fallback chain.
type Rules struct {
	Source   string
	BaseURL  string
	Category event.Category

	// Overwrite names the store columns this source is authorized to
	// replace on merge, beyond filling nulls.
	Overwrite []string

	Venue          string // fixed venue text when the site is the venue itself
	VenueSelector  string // otherwise, where venue text lives on the detail page
	DateSelector   string
	ImageSelector  string
	DescSelector   string
	TicketSelector string
}

// Seed is the metadata a source adapter saw on its listing page. Every
// field may be empty except URL.
type Seed struct {
	URL       string
	Title     string
	VenueText string
	ImageURL  string
	DateText  string
}

// Link texts that mark the outbound booking link. Case-insensitive exact
// match on the visible text.
var ticketLinkTexts = map[string]bool{
	"website": true,
	"booking": true,
	"tickets": true,
}

// Head metadata that can carry a machine-readable start date when a page has
// no JSON-LD block.
var metaDateSelectors = []string{
	`meta[property="event:start_time"]`,
	`meta[property="og:start_time"]`,
	`meta[itemprop="startDate"]`,
}

// Extractor fetches detail pages and applies the per-field fallback chains.
type Extractor struct {
	getter *fetch.Getter
	now    func() time.Time
}

// New creates an Extractor using the given paced getter.
func New(getter *fetch.Getter) *Extractor {
	return &Extractor{getter: getter, now: time.Now}
}

// Details fetches the candidate's page and extracts full event fields. A
// listing carrying several performance times expands into one event per
// distinct timestamp. Single-field failures yield empty fields; only a
// missing date makes the result empty (the caller drops the item).
func (x *Extractor) Details(ctx context.Context, rules Rules, seed Seed) ([]event.Event, error) {
	doc, err := x.getter.Document(ctx, seed.URL)
	if err != nil {
		return nil, err
	}
	return x.FromDocument(doc, rules, seed), nil
}

// FromDocument extracts fields from an already-parsed detail page.
func (x *Extractor) FromDocument(doc *goquery.Document, rules Rules, seed Seed) []event.Event {
	now := x.now()

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(seed.Title)
	}

	ld := parseJSONLD(doc)

	starts := x.resolveDates(doc, rules, seed, ld, now)
	if len(starts) == 0 {
		return nil
	}

	venueText := rules.Venue
	if venueText == "" && rules.VenueSelector != "" {
		venueText = strings.TrimSpace(doc.Find(rules.VenueSelector).First().Text())
	}
	if venueText == "" {
		venueText = strings.TrimSpace(seed.VenueText)
	}
	if venueText == "" && ld != nil {
		venueText = ld.VenueName
	}

	image := x.resolveImage(doc, rules, seed, ld)
	desc := x.resolveDescription(doc, rules, ld)
	ticket := x.resolveTicketLink(doc, rules, seed)

	events := make([]event.Event, 0, len(starts))
	for _, start := range event.DedupeTimes(starts) {
		events = append(events, event.Event{
			Title:       title,
			StartDate:   start,
			Venue:       venueText, // raw text; canonicalized downstream
			Description: desc,
			ImageURL:    image,
			ExternalURL: ticket,
			Category:    rules.Category,
			Source:      rules.Source,
		})
	}
	return events
}

// resolveDates applies the date chain: structured metadata first (JSON-LD
// including subEvent expansion, then head meta tags), then a site-specific
// selector, then a pattern search over the visible body text.
func (x *Extractor) resolveDates(doc *goquery.Document, rules Rules, seed Seed, ld *jsonLD, now time.Time) []time.Time {
	if ld != nil {
		var starts []time.Time
		for _, raw := range ld.StartDates() {
			if t, ok := event.ParseDate(raw, now); ok {
				starts = append(starts, t)
			}
		}
		if len(starts) > 0 {
			return starts
		}
	}

	for _, sel := range metaDateSelectors {
		if raw, ok := doc.Find(sel).First().Attr("content"); ok && raw != "" {
			if t, ok := event.ParseDate(raw, now); ok {
				return []time.Time{t}
			}
		}
	}

	if rules.DateSelector != "" {
		text := strings.TrimSpace(doc.Find(rules.DateSelector).First().Text())
		if t, ok := event.ParseDate(text, now); ok {
			return []time.Time{t}
		}
	}

	if seed.DateText != "" {
		if t, ok := event.ParseDate(seed.DateText, now); ok {
			return []time.Time{t}
		}
	}

	if t, ok := event.ParseDate(doc.Find("body").Text(), now); ok {
		return []time.Time{t}
	}
	return nil
}

func (x *Extractor) resolveImage(doc *goquery.Document, rules Rules, seed Seed, ld *jsonLD) string {
	if rules.ImageSelector != "" {
		if src, ok := doc.Find(rules.ImageSelector).First().Attr("src"); ok && src != "" {
			return Absolutize(rules.BaseURL, src)
		}
	}
	if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && og != "" {
		return Absolutize(rules.BaseURL, og)
	}
	if ld != nil && ld.Image() != "" {
		return Absolutize(rules.BaseURL, ld.Image())
	}
	return Absolutize(rules.BaseURL, seed.ImageURL)
}

func (x *Extractor) resolveDescription(doc *goquery.Document, rules Rules, ld *jsonLD) string {
	if ld != nil && ld.Description != "" {
		return strings.TrimSpace(ld.Description)
	}
	if og, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok && og != "" {
		return strings.TrimSpace(og)
	}
	if rules.DescSelector != "" {
		return strings.TrimSpace(doc.Find(rules.DescSelector).First().Text())
	}
	return ""
}

// resolveTicketLink prefers a link whose visible text names booking, then a
// structural selector, then the detail page itself.
func (x *Extractor) resolveTicketLink(doc *goquery.Document, rules Rules, seed Seed) string {
	var byText string
	doc.Find("a").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if ticketLinkTexts[text] {
			if href, ok := sel.Attr("href"); ok && href != "" {
				byText = href
				return false
			}
		}
		return true
	})
	if byText != "" {
		return Absolutize(rules.BaseURL, byText)
	}

	if rules.TicketSelector != "" {
		if href, ok := doc.Find(rules.TicketSelector).First().Attr("href"); ok && href != "" {
			return Absolutize(rules.BaseURL, href)
		}
	}

	return seed.URL
}

// Absolutize resolves a root-relative href against the source's base URL.
// Idempotent: already-absolute URLs come back unchanged, so running it
// twice never double-prefixes.
func Absolutize(base, href string) string {
	switch {
	case href == "":
		return ""
	case strings.Contains(href, "://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(base, "/") + href
	default:
		return href
	}
}
