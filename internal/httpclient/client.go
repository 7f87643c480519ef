package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptrace"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultUserAgent is sent when no User-Agent is configured
const DefaultUserAgent = "privacy-parrot/1.0"

// Defaults applied when Options leave a field unset
const (
	DefaultMaxRedirects = 5
	DefaultMaxBodyBytes = 5 << 20
)

// ErrTooManyRedirects is returned when a redirect chain exceeds MaxRedirects
var ErrTooManyRedirects = errors.New("too many redirects")

// Options configures a Client
type Options struct {
	MaxRedirects int   // Redirect hops followed before giving up
	MaxBodyBytes int64 // Bytes of body kept; the rest is discarded
	UserAgent    string
	Transport    http.RoundTripper // Defaults to NewTransport()
}

// Client fetches pages with tracing enabled and a fresh cookie jar per request
type Client struct {
	transport    http.RoundTripper
	maxRedirects int
	maxBodyBytes int64
	userAgent    string
}

// TimingInfo holds performance timing information for a request
type TimingInfo struct {
	DNSStart     time.Time
	DNSDone      time.Time
	ConnectStart time.Time
	ConnectDone  time.Time
	TLSStart     time.Time
	TLSDone      time.Time
	GotFirstByte time.Time
	RequestStart time.Time
	RequestDone  time.Time
}

// Total returns the time from request start to the body being read
func (t *TimingInfo) Total() time.Duration {
	if t.RequestDone.IsZero() {
		return 0
	}
	return t.RequestDone.Sub(t.RequestStart)
}

// Response holds the final HTTP response of a redirect chain
type Response struct {
	StatusCode int
	Proto      string // e.g., "HTTP/2.0"
	Header     http.Header
	TLS        *tls.ConnectionState
	FinalURL   string         // URL after redirects
	Redirects  []string       // URLs of every hop before FinalURL
	Cookies    []*http.Cookie // Set-Cookie of every hop, in arrival order
	Body       []byte
	Truncated  bool // Body hit MaxBodyBytes
	Timings    *TimingInfo
}

// NewClient creates a new HTTP client with the configured transport
func NewClient(opts Options) *Client {
	c := &Client{
		transport:    opts.Transport,
		maxRedirects: opts.MaxRedirects,
		maxBodyBytes: opts.MaxBodyBytes,
		userAgent:    opts.UserAgent,
	}
	if c.transport == nil {
		c.transport = NewTransport()
	}
	if c.maxRedirects <= 0 {
		c.maxRedirects = DefaultMaxRedirects
	}
	if c.maxBodyBytes <= 0 {
		c.maxBodyBytes = DefaultMaxBodyBytes
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c
}

// Get fetches a URL, following redirects and recording every cookie the
// chain sets. The jar lives for this call only, so nothing leaks between pages.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	timings := &TimingInfo{
		RequestStart: time.Now(),
	}

	trace := &httptrace.ClientTrace{
		DNSStart: func(_ httptrace.DNSStartInfo) {
			timings.DNSStart = time.Now()
		},
		DNSDone: func(_ httptrace.DNSDoneInfo) {
			timings.DNSDone = time.Now()
		},
		ConnectStart: func(_, _ string) {
			timings.ConnectStart = time.Now()
		},
		ConnectDone: func(_, _ string, _ error) {
			timings.ConnectDone = time.Now()
		},
		TLSHandshakeStart: func() {
			timings.TLSStart = time.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, _ error) {
			timings.TLSDone = time.Now()
		},
		GotFirstResponseByte: func() {
			timings.GotFirstByte = time.Now()
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	var (
		cookies   []*http.Cookie
		redirects []string
	)
	client := &http.Client{
		Transport: c.transport,
		Jar:       jar,
		CheckRedirect: func(next *http.Request, via []*http.Request) error {
			if len(via) > c.maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, c.maxRedirects)
			}
			redirects = append(redirects, via[len(via)-1].URL.String())
			if next.Response != nil {
				cookies = append(cookies, next.Response.Cookies()...)
			}
			next.Header.Set("User-Agent", c.userAgent)
			return nil
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	truncated := int64(len(body)) > c.maxBodyBytes
	if truncated {
		body = body[:c.maxBodyBytes]
	}

	timings.RequestDone = time.Now()

	return &Response{
		StatusCode: resp.StatusCode,
		Proto:      resp.Proto,
		Header:     resp.Header,
		TLS:        resp.TLS,
		FinalURL:   resp.Request.URL.String(),
		Redirects:  redirects,
		Cookies:    append(cookies, resp.Cookies()...),
		Body:       body,
		Truncated:  truncated,
		Timings:    timings,
	}, nil
}
