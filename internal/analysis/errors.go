package analysis

import (
	"errors"
	"strings"
)

// ErrRestrictedPage is returned for pages the engine must not analyze
var ErrRestrictedPage = errors.New("restricted page")

// ErrNoPage is the cause reported when Analyze is given a nil page
var ErrNoPage = errors.New("no page to analyze")

// DefaultRestrictedPrefixes are the URL prefixes of browser system pages
var DefaultRestrictedPrefixes = []string{
	"chrome:",
	"chrome-extension:",
	"devtools:",
	"https://chrome.google.com/webstore/",
}

// AnalysisError reports a failure while reading the page.
// No partial result accompanies it.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string {
	return "Error analyzing page: " + e.Cause.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// CheckRestricted returns ErrRestrictedPage when the URL starts with any of
// the prefixes. Matching ignores case.
func CheckRestricted(pageURL string, prefixes []string) error {
	lower := strings.ToLower(strings.TrimSpace(pageURL))
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return ErrRestrictedPage
		}
	}
	return nil
}
