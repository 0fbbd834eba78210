package event

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Category classifies an event into the small closed set the catalog uses.
type Category string

const (
	CategoryConcert    Category = "concert"
	CategoryFilm       Category = "film"
	CategoryTheatre    Category = "theatre"
	CategoryExhibition Category = "exhibition"
	CategoryFestival   Category = "festival"
	CategoryOther      Category = "other"
)

// Event is one canonical catalog record, independent of which source
// produced it.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"start_date"`
	Venue       string    `json:"venue"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	Category    Category  `json:"category"`
	Source      string    `json:"source"`
}

// HashID creates a deterministic ID from the fields that identify one
// real-world occurrence. Stable across re-runs of the same source.
func HashID(source, title string, start time.Time) string {
	h := sha1.New()
	h.Write([]byte(source + "|" + title + "|" + start.UTC().Format(time.RFC3339)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Day returns the calendar day of the event as YYYY-MM-DD.
func (e *Event) Day() string {
	return e.StartDate.UTC().Format("2006-01-02")
}

// HasDate reports whether a usable start date was resolved. Events without
// one are dropped before persistence.
func (e *Event) HasDate() bool {
	return !e.StartDate.IsZero()
}
