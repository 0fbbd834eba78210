package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ScrollOptions bounds one scripted browser session. The iteration cap is
// the circuit breaker against infinite feeds; the wait bounds how long the
// session blocks after each action.
type ScrollOptions struct {
	MaxIterations    int
	Wait             time.Duration
	LoadMoreSelector string // optional "load more" control, clicked each pass
}

func (o ScrollOptions) withDefaults() ScrollOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 5
	}
	if o.Wait <= 0 {
		o.Wait = 2 * time.Second
	}
	return o
}

// Browser is a scripted browser session. Adapters depend on this interface
// so tests can substitute a stub instead of a real Chrome process.
type Browser interface {
	// CollectLinks loads a page and repeatedly scrolls/clicks within the
	// option bounds, returning the deduplicated hrefs matching selector.
	CollectLinks(ctx context.Context, pageURL, selector string, opts ScrollOptions) ([]string, error)
	// PageHTML loads a page, lets it render within the option bounds, and
	// returns the final document markup.
	PageHTML(ctx context.Context, pageURL string, opts ScrollOptions) (string, error)
}

// ChromeSession drives a headless Chrome via chromedp. One session per
// adapter run.
type ChromeSession struct{}

// NewChromeSession creates a ChromeSession.
func NewChromeSession() *ChromeSession {
	return &ChromeSession{}
}

// Button-text match on the usual cookie-consent labels. Absence of a
// dialog is not an error.
const consentJS = `(() => {
	const labels = ["accept", "agree", "allow"];
	for (const el of document.querySelectorAll("button, a")) {
		const text = (el.textContent || "").trim().toLowerCase();
		if (labels.some(l => text.includes(l))) { el.click(); return true; }
	}
	return false;
})()`

const scrollJS = `window.scrollTo(0, document.body.scrollHeight)`

func collectJS(selector string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(a => a.href)`, selector)
}

func clickJS(selector string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (el) { el.click(); return true; }
		return false;
	})()`, selector)
}

func (s *ChromeSession) CollectLinks(ctx context.Context, pageURL, selector string, opts ScrollOptions) ([]string, error) {
	opts = opts.withDefaults()

	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if err := s.open(cctx, pageURL, opts.Wait); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	for i := 0; i < opts.MaxIterations; i++ {
		var hrefs []string
		if err := chromedp.Run(cctx, chromedp.Evaluate(collectJS(selector), &hrefs)); err != nil {
			return nil, fmt.Errorf("collecting links on %s: %w", pageURL, err)
		}

		added := 0
		for _, href := range hrefs {
			if href == "" || seen[href] {
				continue
			}
			seen[href] = true
			links = append(links, href)
			added++
		}
		// No new links revealed since the last pass: the feed is exhausted.
		if added == 0 && i > 0 {
			break
		}

		actions := []chromedp.Action{chromedp.Evaluate(scrollJS, nil)}
		if opts.LoadMoreSelector != "" {
			var clicked bool
			actions = append(actions, chromedp.Evaluate(clickJS(opts.LoadMoreSelector), &clicked))
		}
		actions = append(actions, chromedp.Sleep(opts.Wait))
		if err := chromedp.Run(cctx, actions...); err != nil {
			return nil, fmt.Errorf("scrolling %s: %w", pageURL, err)
		}
	}

	return links, nil
}

func (s *ChromeSession) PageHTML(ctx context.Context, pageURL string, opts ScrollOptions) (string, error) {
	opts = opts.withDefaults()

	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if err := s.open(cctx, pageURL, opts.Wait); err != nil {
		return "", err
	}

	prevLen := -1
	for i := 0; i < opts.MaxIterations; i++ {
		var length int
		if err := chromedp.Run(cctx, chromedp.Evaluate(`document.body.innerHTML.length`, &length)); err != nil {
			return "", fmt.Errorf("rendering %s: %w", pageURL, err)
		}
		if length == prevLen {
			break
		}
		prevLen = length

		if err := chromedp.Run(cctx,
			chromedp.Evaluate(scrollJS, nil),
			chromedp.Sleep(opts.Wait),
		); err != nil {
			return "", fmt.Errorf("scrolling %s: %w", pageURL, err)
		}
	}

	var html string
	if err := chromedp.Run(cctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("reading markup of %s: %w", pageURL, err)
	}
	return html, nil
}

// open navigates to the page and dismisses a cookie-consent dialog when one
// is present.
func (s *ChromeSession) open(cctx context.Context, pageURL string, wait time.Duration) error {
	if err := chromedp.Run(cctx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(wait),
	); err != nil {
		return fmt.Errorf("loading %s: %w", pageURL, err)
	}

	var dismissed bool
	if err := chromedp.Run(cctx, chromedp.Evaluate(consentJS, &dismissed)); err == nil && dismissed {
		// Give the page a beat to settle after the overlay goes away.
		_ = chromedp.Run(cctx, chromedp.Sleep(wait/2))
	}
	return nil
}
