package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/source"
)

// Failure kinds reported to clients
const (
	KindInvalidRequest = "invalid_request"
	KindRestricted     = "restricted_page"
	KindAnalysis       = "analysis_error"
	KindUnavailable    = "source_unavailable"
	KindTimeout        = "timeout"
	KindInternal       = "internal_error"
)

// ErrorInfo classifies a failure for transport layers
type ErrorInfo struct {
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	Status    int    `json:"-"` // HTTP status code
}

// Classify maps an error returned by the service to its kind and HTTP status
func Classify(err error) ErrorInfo {
	var (
		srcErr      *source.SourceError
		analysisErr *analysis.AnalysisError
	)

	switch {
	case errors.Is(err, ErrMissingURL):
		return ErrorInfo{Kind: KindInvalidRequest, Status: http.StatusBadRequest}
	case errors.Is(err, analysis.ErrRestrictedPage):
		return ErrorInfo{Kind: KindRestricted, Status: http.StatusForbidden}
	case errors.As(err, &srcErr):
		if !srcErr.Retryable() {
			return ErrorInfo{Kind: srcErr.Kind, Status: http.StatusUnprocessableEntity}
		}
		return ErrorInfo{Kind: srcErr.Kind, Retryable: true, Status: http.StatusBadGateway}
	case errors.As(err, &analysisErr):
		return ErrorInfo{Kind: KindAnalysis, Status: http.StatusInternalServerError}
	case errors.Is(err, ErrNoSource):
		return ErrorInfo{Kind: KindUnavailable, Status: http.StatusServiceUnavailable}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorInfo{Kind: KindTimeout, Retryable: true, Status: http.StatusGatewayTimeout}
	}
	return ErrorInfo{Kind: KindInternal, Status: http.StatusInternalServerError}
}
