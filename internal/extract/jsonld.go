package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLD is the subset of schema.org Event markup the extractor trusts.
// Third-party markup is unreliable, so decoding is deliberately lax: any
// field that fails to decode is simply absent.
type jsonLD struct {
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	StartDate   string          `json:"startDate"`
	Description string          `json:"description"`
	RawImage    json.RawMessage `json:"image"`
	SubEvents   []subEvent      `json:"subEvent"`
	Location    *ldLocation     `json:"location"`
	Offers      json.RawMessage `json:"offers"`

	VenueName string `json:"-"`
}

type subEvent struct {
	StartDate string `json:"startDate"`
}

type ldLocation struct {
	Name string `json:"name"`
}

// parseJSONLD returns the first Event-typed JSON-LD block on the page, or
// nil when none parses.
func parseJSONLD(doc *goquery.Document) *jsonLD {
	var found *jsonLD
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		// Some sites wrap the event in a top-level array.
		var blocks []jsonLD
		var single jsonLD
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			blocks = []jsonLD{single}
		} else if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
			return true
		}

		for i := range blocks {
			if !strings.Contains(strings.ToLower(blocks[i].Type), "event") {
				continue
			}
			if blocks[i].Location != nil {
				blocks[i].VenueName = strings.TrimSpace(blocks[i].Location.Name)
			}
			found = &blocks[i]
			return false
		}
		return true
	})
	return found
}

// StartDates returns every performance time the block declares: the event's
// own startDate plus any subEvent entries.
func (ld *jsonLD) StartDates() []string {
	var out []string
	if ld.StartDate != "" {
		out = append(out, ld.StartDate)
	}
	for _, sub := range ld.SubEvents {
		if sub.StartDate != "" {
			out = append(out, sub.StartDate)
		}
	}
	return out
}

// Image tolerates both the string and array-of-strings shapes of the image
// property.
func (ld *jsonLD) Image() string {
	if len(ld.RawImage) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(ld.RawImage, &s); err == nil {
		return s
	}
	var arr []string
	if err := json.Unmarshal(ld.RawImage, &arr); err == nil && len(arr) > 0 {
		return arr[0]
	}
	return ""
}
