package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/olegrjumin/privacyparrot/internal/httpclient"
)

// Error kinds
const (
	KindInvalidURL = "invalid_url"
	KindTimeout    = "timeout"
	KindDNS        = "dns_error"
	KindTLS        = "tls_error"
	KindNetwork    = "network_error"
	KindHTTP       = "http_error"
	KindContent    = "unsupported_content"
	KindBrowser    = "browser_error"
)

// ErrBrowserUnavailable indicates every pooled browser is busy
var ErrBrowserUnavailable = errors.New("browser pool exhausted")

// SourceError describes a failure to obtain a page snapshot
type SourceError struct {
	Op   string // "fetch" or "render"
	URL  string
	Kind string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether asking again may succeed. Bad input and
// non-HTML content will not change on retry.
func (e *SourceError) Retryable() bool {
	switch e.Kind {
	case KindInvalidURL, KindContent:
		return false
	}
	return true
}

func newError(op, url string, err error) *SourceError {
	kind, msg := ClassifyError(err)
	return &SourceError{Op: op, URL: url, Kind: kind, Err: fmt.Errorf("%s: %w", msg, err)}
}

// ClassifyError determines the error kind from a Go error
// Returns the kind constant and a human-readable message
func ClassifyError(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, "request timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, "request timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS, "DNS lookup failed"
	}

	if errors.Is(err, httpclient.ErrTooManyRedirects) {
		return KindHTTP, "too many redirects"
	}
	if errors.Is(err, ErrBrowserUnavailable) {
		return KindBrowser, "no browser available"
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "certificate") || strings.Contains(errMsg, "x509"):
		return KindTLS, "certificate error"
	case strings.Contains(errMsg, "tls") || strings.Contains(errMsg, "TLS"):
		return KindTLS, "TLS handshake failed"
	case strings.Contains(errMsg, "no such host"):
		return KindDNS, "host not found"
	case strings.Contains(errMsg, "connection refused"):
		return KindNetwork, "connection refused"
	case strings.Contains(errMsg, "connection reset"):
		return KindNetwork, "connection reset"
	case strings.Contains(errMsg, "network is unreachable"):
		return KindNetwork, "network unreachable"
	}

	return KindNetwork, "request failed"
}
