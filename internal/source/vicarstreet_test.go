package source

import (
	"context"
	"errors"
	"testing"

	"github.com/tkinsella/dublin-events/internal/config"
	"github.com/tkinsella/dublin-events/internal/fetch"
)

// fakeBrowser implements fetch.Browser without a Chrome process.
type fakeBrowser struct {
	links    []string
	html     string
	err      error
	selector string
	pageURL  string
	opts     fetch.ScrollOptions
}

func (b *fakeBrowser) CollectLinks(ctx context.Context, pageURL, selector string, opts fetch.ScrollOptions) ([]string, error) {
	b.pageURL = pageURL
	b.selector = selector
	b.opts = opts
	return b.links, b.err
}

func (b *fakeBrowser) PageHTML(ctx context.Context, pageURL string, opts fetch.ScrollOptions) (string, error) {
	b.pageURL = pageURL
	b.opts = opts
	return b.html, b.err
}

func TestVicarStreetFetch(t *testing.T) {
	browser := &fakeBrowser{links: []string{
		"https://www.vicarstreet.com/event/damien-dempsey",
		"/event/lankum",
		"https://www.vicarstreet.com/event/damien-dempsey", // revealed again on a later pass
	}}
	src := NewVicarStreet(config.Site{BaseURL: "https://www.vicarstreet.com"}, browser, fetch.ScrollOptions{})

	cands, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if browser.pageURL != "https://www.vicarstreet.com/events" {
		t.Errorf("pageURL = %q", browser.pageURL)
	}
	if browser.selector != `a[href*="/event/"]` {
		t.Errorf("selector = %q", browser.selector)
	}
	if browser.opts.LoadMoreSelector != "button.load-more" {
		t.Errorf("LoadMoreSelector = %q", browser.opts.LoadMoreSelector)
	}

	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	if cands[1].URL != "https://www.vicarstreet.com/event/lankum" {
		t.Errorf("relative link not absolutized: %q", cands[1].URL)
	}
}

func TestVicarStreetSessionFailureIsFatal(t *testing.T) {
	browser := &fakeBrowser{err: errors.New("chrome went away")}
	src := NewVicarStreet(config.Site{BaseURL: "https://www.vicarstreet.com"}, browser, fetch.ScrollOptions{})

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected the session error to surface")
	}
}
