package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/olegrjumin/privacyparrot/internal/page"
)

// Browser snapshots pages after scripts ran, so the cookie string is the
// one page scripts see through document.cookie.
type Browser struct {
	pool    *BrowserPool
	timeout time.Duration
}

// NewBrowser creates a renderer on top of a browser pool
func NewBrowser(pool *BrowserPool, timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Browser{pool: pool, timeout: timeout}
}

func (b *Browser) Name() string {
	return "browser"
}

// Snapshot renders the page in a fresh tab and captures DOM, cookies and final location
func (b *Browser) Snapshot(ctx context.Context, pageURL string) (*page.Snapshot, error) {
	if err := ValidateURL(pageURL); err != nil {
		return nil, &SourceError{Op: "render", URL: pageURL, Kind: KindInvalidURL, Err: err}
	}

	instance, err := b.pool.Acquire(ctx)
	if err != nil {
		return nil, newError("render", pageURL, err)
	}
	defer b.pool.Release(instance)

	tabCtx, closeTab := chromedp.NewContext(instance.Context())
	defer closeTab()

	timeoutCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()

	// the tab outlives the caller's context, so honour its cancellation here
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html, cookies, location string
	err = chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Evaluate(`document.cookie`, &cookies),
		chromedp.Location(&location),
	)
	if err != nil {
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, &SourceError{Op: "render", URL: pageURL, Kind: KindTimeout, Err: timeoutCtx.Err()}
		}
		if ctx.Err() != nil {
			return nil, newError("render", pageURL, ctx.Err())
		}
		b.pool.MarkUnhealthy(instance)
		return nil, &SourceError{
			Op:   "render",
			URL:  pageURL,
			Kind: KindBrowser,
			Err:  fmt.Errorf("browser rendering failed: %w", err),
		}
	}

	if ValidateURL(location) != nil {
		location = pageURL
	}
	snap, err := page.FromHTML(location, html, cookies)
	if err != nil {
		return nil, &SourceError{Op: "render", URL: pageURL, Kind: KindContent, Err: err}
	}
	return snap, nil
}
