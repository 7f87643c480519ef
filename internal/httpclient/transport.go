package httpclient

import (
	"net/http"
	"time"
)

// NewTransport creates the shared transport for page fetches
// The transport is reused across requests for connection pooling
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout: 10 * time.Second,

		// Pages are fetched in full, so allow slower first bytes than a HEAD probe
		ResponseHeaderTimeout: 15 * time.Second,

		ForceAttemptHTTP2: true,
	}
}
