// Package source produces page snapshots for analysis: from HTML the caller
// already holds, from a plain HTTP fetch, or from a headless browser render.
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/olegrjumin/privacyparrot/internal/page"
)

// Source obtains a snapshot of the page at a URL
type Source interface {
	Name() string
	Snapshot(ctx context.Context, pageURL string) (*page.Snapshot, error)
}

// Static returns the snapshot of supplied HTML
func Static(pageURL, html, cookies string) (*page.Snapshot, error) {
	snap, err := page.FromHTML(pageURL, html, cookies)
	if err != nil {
		return nil, &SourceError{Op: "parse", URL: pageURL, Kind: KindInvalidURL, Err: err}
	}
	return snap, nil
}

// ValidateURL accepts absolute http(s) URLs only
func ValidateURL(pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("%w: %v", page.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not supported", page.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", page.ErrInvalidURL)
	}
	return nil
}

// CookieString renders cookies the way document.cookie exposes them: HttpOnly
// and expired cookies are hidden, a later cookie replaces an earlier one of
// the same name, and a deletion removes it.
func CookieString(cookies []*http.Cookie) string {
	now := time.Now()
	values := make(map[string]string)
	order := make([]string, 0, len(cookies))

	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(values, c.Name)
			continue
		}
		if c.HttpOnly {
			continue
		}
		if _, seen := values[c.Name]; !seen {
			order = append(order, c.Name)
		}
		values[c.Name] = c.Value
	}

	pairs := make([]string, 0, len(values))
	for _, name := range order {
		value, ok := values[name]
		if !ok {
			continue
		}
		pairs = append(pairs, name+"="+value)
		// a name re-added after deletion appears once
		delete(values, name)
	}
	return strings.Join(pairs, "; ")
}
