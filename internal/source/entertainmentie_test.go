package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

func eieCard(href, title, venue, date string) string {
	return fmt.Sprintf(`<div class="event-card">
		<a href="%s"></a>
		<span class="event-card__title">%s</span>
		<span class="event-card__venue">%s</span>
		<span class="event-card__date">%s</span>
	</div>`, href, title, venue, date)
}

func TestEntertainmentIEFetchFollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/whats-on/dublin/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, "<html><body>"+
				eieCard("/event/c", "Event C", "Vicar Street", "20 Dec 2025")+
				"</body></html>")
			return
		}
		fmt.Fprint(w, "<html><body>"+
			eieCard("/event/a", "Event A", "Whelan's", "18 Dec 2025")+
			eieCard("/event/b", "Event B", "Olympia Theatre", "19 Dec 2025")+
			`<a href="/whats-on/dublin/?page=2">2</a>`+
			`<a href="/whats-on/dublin/?page=3">3</a>`+
			"</body></html>")
	})
	src := NewEntertainmentIE(config.Site{BaseURL: server.URL}, fetch.NewGetter(nil, 0, 0))

	cands, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Index page plus both discovered pages; page=3 serves the same index
	// markup, so its cards collapse in URL dedup.
	if len(cands) != 3 {
		t.Fatalf("got %d candidates, want 3: %+v", len(cands), cands)
	}
	if cands[0].Title != "Event A" || cands[0].VenueText != "Whelan's" {
		t.Errorf("first candidate = %+v", cands[0])
	}
	if cands[0].DateText != "18 Dec 2025" {
		t.Errorf("DateText = %q", cands[0].DateText)
	}
	if cands[2].Title != "Event C" {
		t.Errorf("paginated candidate missing: %+v", cands[2])
	}
	if !src.Aggregator() {
		t.Error("entertainment.ie relists other venues' events")
	}
}

func TestEntertainmentIESkipsFailedPage(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/whats-on/dublin/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "<html><body>"+
			eieCard("/event/a", "Event A", "Whelan's", "18 Dec 2025")+
			`<a href="/whats-on/dublin/?page=2">2</a>`+
			"</body></html>")
	})

	src := NewEntertainmentIE(config.Site{BaseURL: server.URL}, fetch.NewGetter(nil, 0, 0))

	cands, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("a failed pagination page must not fail the run: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
}
