package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkinsella/dublin-events/internal/catalog"
	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/event"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

type fakeResult struct {
	Overview   string `json:"overview"`
	PosterPath string `json:"poster_path"`
}

// newMetadataServer serves canned search results keyed by query string and
// counts lookups per query.
func newMetadataServer(t *testing.T, results map[string][]fakeResult, hits map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		hits[query]++
		if query == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"results": results[query]})
	}))
}

func newTestJob(t *testing.T, serverURL string) (*Job, catalog.Store) {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client := NewClient(config.Media{BaseURL: serverURL, APIKey: "k"}, fetch.NewGetter(nil, 0, 0))
	return NewJob(store, client), store
}

func seedEvent(t *testing.T, store catalog.Store, title, image, desc string, day int) event.Event {
	t.Helper()
	e := event.Event{
		Title:       title,
		StartDate:   time.Date(2025, time.December, day, 19, 30, 0, 0, time.UTC),
		Venue:       "Light House Cinema",
		Category:    event.CategoryFilm,
		Source:      "lighthouse",
		ImageURL:    image,
		Description: desc,
	}
	created, err := store.UpsertEvent(context.Background(), &e, nil)
	require.NoError(t, err)
	require.True(t, created)
	return e
}

func TestJobFillsMissingMedia(t *testing.T) {
	hits := map[string]int{}
	server := newMetadataServer(t, map[string][]fakeResult{
		"Oppenheimer": {{Overview: "A biopic.", PosterPath: "/opp.jpg"}},
	}, hits)
	defer server.Close()

	job, store := newTestJob(t, server.URL)
	bare := seedEvent(t, store, "Oppenheimer", "", "", 18)
	seedEvent(t, store, "Already Done", "https://img.example/x.jpg", "Has everything.", 19)

	sum, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Candidates)
	assert.Equal(t, 1, sum.Enriched)
	assert.Equal(t, 0, sum.Skipped)

	got, err := store.FindByNaturalKey(context.Background(), bare.Title, bare.Venue, bare.StartDate, bare.Source)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, posterBaseURL+"/opp.jpg", got.ImageURL)
	assert.Equal(t, "A biopic.", got.Description)
}

func TestJobLooksUpEachTitleOnce(t *testing.T) {
	hits := map[string]int{}
	server := newMetadataServer(t, map[string][]fakeResult{
		"Oppenheimer": {{Overview: "A biopic.", PosterPath: "/opp.jpg"}},
	}, hits)
	defer server.Close()

	job, store := newTestJob(t, server.URL)
	seedEvent(t, store, "Oppenheimer", "", "", 18)
	seedEvent(t, store, "Oppenheimer", "", "", 19)

	sum, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Enriched)
	assert.Equal(t, 1, hits["Oppenheimer"], "two rows with the same title need one lookup")
}

func TestJobCachesNegativeResults(t *testing.T) {
	hits := map[string]int{}
	server := newMetadataServer(t, map[string][]fakeResult{}, hits)
	defer server.Close()

	job, store := newTestJob(t, server.URL)
	seedEvent(t, store, "Obscure Gig", "", "", 18)
	seedEvent(t, store, "Obscure Gig", "", "", 19)

	sum, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Enriched)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 1, hits["Obscure Gig"], "a no-match answer is cached for the rest of the run")
}

func TestJobSkipsFailedLookupAndContinues(t *testing.T) {
	hits := map[string]int{}
	server := newMetadataServer(t, map[string][]fakeResult{
		"Oppenheimer": {{Overview: "A biopic.", PosterPath: "/opp.jpg"}},
	}, hits)
	defer server.Close()

	job, store := newTestJob(t, server.URL)
	seedEvent(t, store, "broken", "", "", 18)
	fine := seedEvent(t, store, "Oppenheimer", "", "", 19)

	sum, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Enriched)
	assert.Equal(t, 1, sum.Skipped)

	got, err := store.FindByNaturalKey(context.Background(), fine.Title, fine.Venue, fine.StartDate, fine.Source)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A biopic.", got.Description)
}

func TestJobNeverOverwritesExistingMedia(t *testing.T) {
	hits := map[string]int{}
	server := newMetadataServer(t, map[string][]fakeResult{
		"Oppenheimer": {{Overview: "API synopsis.", PosterPath: "/opp.jpg"}},
	}, hits)
	defer server.Close()

	job, store := newTestJob(t, server.URL)
	partial := seedEvent(t, store, "Oppenheimer", "https://venue.example/poster.jpg", "", 18)

	sum, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Enriched)

	got, err := store.FindByNaturalKey(context.Background(), partial.Title, partial.Venue, partial.StartDate, partial.Source)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://venue.example/poster.jpg", got.ImageURL, "existing artwork stays")
	assert.Equal(t, "API synopsis.", got.Description, "missing synopsis is filled")
}
