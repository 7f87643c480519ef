package source

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/olegrjumin/privacyparrot/internal/httpclient"
	"github.com/olegrjumin/privacyparrot/internal/page"
)

// htmlTypes are the content types a snapshot can be built from
var htmlTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
}

// Fetcher snapshots pages over plain HTTP. Scripts do not run, so cookies
// come from Set-Cookie headers only.
type Fetcher struct {
	client  *httpclient.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher; a zero timeout leaves the caller's deadline in charge
func NewFetcher(client *httpclient.Client, timeout time.Duration) *Fetcher {
	return &Fetcher{client: client, timeout: timeout}
}

func (f *Fetcher) Name() string {
	return "http"
}

// Snapshot fetches the page and parses the final document of the redirect chain
func (f *Fetcher) Snapshot(ctx context.Context, pageURL string) (*page.Snapshot, error) {
	if err := ValidateURL(pageURL); err != nil {
		return nil, &SourceError{Op: "fetch", URL: pageURL, Kind: KindInvalidURL, Err: err}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := f.client.Get(ctx, pageURL)
	if err != nil {
		return nil, newError("fetch", pageURL, err)
	}

	if resp.StatusCode >= 400 {
		return nil, &SourceError{
			Op:   "fetch",
			URL:  pageURL,
			Kind: KindHTTP,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !htmlTypes[mediaType] {
			return nil, &SourceError{
				Op:   "fetch",
				URL:  pageURL,
				Kind: KindContent,
				Err:  fmt.Errorf("content type %q is not HTML", ct),
			}
		}
	}

	snap, err := page.Parse(resp.FinalURL, bytes.NewReader(resp.Body), CookieString(resp.Cookies))
	if err != nil {
		return nil, &SourceError{Op: "fetch", URL: pageURL, Kind: KindContent, Err: err}
	}
	return snap, nil
}
