// Package dedup decides whether a new candidate is the same real-world
// event as an existing catalog row. The cross-source matching is an
// explicit, named heuristic: both false positives (distinct same-day shows
// with overlapping short titles) and false negatives (the same show named
// differently by two sources) are known and accepted.
package dedup

import (
	"context"
	"strings"

	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/event"
)

// Engine runs the duplicate checks against the catalog store.
type Engine struct {
	store catalog.Store
}

// New creates an Engine.
func New(store catalog.Store) *Engine {
	return &Engine{store: store}
}

// Exists reports whether the same source already produced this occurrence:
// an identical (title, venue, start_date, source) row. This is how a re-run
// of an adapter avoids creating duplicates.
func (d *Engine) Exists(ctx context.Context, e *event.Event) (bool, error) {
	existing, err := d.store.FindByNaturalKey(ctx, e.Title, e.Venue, e.StartDate, e.Source)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// Suppressed reports whether an aggregator candidate duplicates a same-day
// row that another source already owns. Venues with their own dedicated
// adapter outrank a generic aggregator, so the aggregator's copy is dropped.
func (d *Engine) Suppressed(ctx context.Context, e *event.Event) (bool, error) {
	rows, err := d.store.EventsOnDay(ctx, e.Day())
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Source == e.Source {
			continue // own records never suppress an adapter's candidate
		}
		if TitlesOverlap(e.Title, row.Title) {
			return true, nil
		}
	}
	return false, nil
}

// NormalizeTitle reduces a title to its lowercase alphanumeric characters,
// so punctuation and spacing differences between sources don't matter.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TitlesOverlap reports whether one normalized title contains the other.
// "The Matinee Show" and "Matinee Show" overlap; empty titles never do.
func TitlesOverlap(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
