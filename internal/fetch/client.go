package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	UserAgent = "dublin-events/1.0 (github.com/tkinsella/dublin-events)"
	Timeout   = 30 * time.Second
)

// NewHTTPClient builds the transport all adapters share.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Getter performs paced GET requests with bounded retry. The pacing is a
// politeness control between detail-page fetches, not a correctness one.
type Getter struct {
	client  *http.Client
	limiter *rate.Limiter
	retries uint64
}

// NewGetter creates a Getter. perSecond caps the request rate (0 disables
// pacing); retries is the number of re-attempts after the first failure.
func NewGetter(client *http.Client, perSecond float64, retries uint64) *Getter {
	if client == nil {
		client = NewHTTPClient(Timeout)
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &Getter{client: client, limiter: limiter, retries: retries}
}

// Get fetches a URL and returns the response body. Non-2xx statuses are
// errors so callers can skip the item.
func (g *Getter) Get(ctx context.Context, url string) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.retries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}

// Document fetches a URL and parses it as HTML.
func (g *Getter) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := g.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}
