// Package analysis is the heuristic privacy-risk engine. It runs a fixed set
// of detectors over one page, scores the findings, classifies the score and
// writes a plain-language summary with protection tips.
//
// The engine is synchronous and has no side effects: analyzing the same page
// twice yields identical results.
package analysis

import (
	"fmt"
	"strconv"

	"github.com/olegrjumin/privacyparrot/internal/catalog"
)

// Technical detail keys
const (
	DetailURL             = "URL"
	DetailHTTPS           = "HTTPS"
	DetailFormFields      = "Form Fields"
	DetailFormSubmissions = "Form Submissions"
	DetailExternalScripts = "External Scripts"
	DetailIFrames         = "iFrames"
	DetailFingerprinting  = "Fingerprinting Risk"
	DetailSharing         = "Third-party Sharing"
)

// Engine analyzes pages
type Engine struct {
	catalog    *catalog.Catalog
	detectors  *Detectors
	restricted []string
}

// Option configures an Engine
type Option func(*Engine)

// WithRestrictedPrefixes replaces the URL prefixes refused by Analyze
func WithRestrictedPrefixes(prefixes []string) Option {
	return func(e *Engine) {
		e.restricted = prefixes
	}
}

// NewEngine creates an engine over the given catalog
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:    c,
		detectors:  NewDetectors(c),
		restricted: DefaultRestrictedPrefixes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detectors returns the engine's detector set
func (e *Engine) Detectors() *Detectors {
	return e.detectors
}

// CheckRestricted reports whether the engine refuses the URL
func (e *Engine) CheckRestricted(pageURL string) error {
	return CheckRestricted(pageURL, e.restricted)
}

// Analyze runs the full pipeline over one page.
// Restricted pages return ErrRestrictedPage before any detector runs. Any
// failure while reading the page returns an *AnalysisError and no result.
func (e *Engine) Analyze(p Page) (result *Result, err error) {
	if p == nil {
		return nil, &AnalysisError{Cause: ErrNoPage}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			if cause, ok := r.(error); ok {
				err = &AnalysisError{Cause: cause}
				return
			}
			err = &AnalysisError{Cause: fmt.Errorf("%v", r)}
		}
	}()

	if err := e.CheckRestricted(p.URL()); err != nil {
		return nil, err
	}

	f := Findings{
		DataPoints:     e.detectors.DetectFields(p),
		Cookies:        e.detectors.DetectCookies(p),
		Trackers:       e.detectors.DetectTrackers(p),
		Policy:         e.detectors.DetectPolicy(p),
		Fingerprinting: e.detectors.DetectFingerprinting(p),
		DataSharing:    e.detectors.DetectDataSharing(p),
	}

	score := Score(f)
	level := ClassifyScore(score)
	purpose := InferPurpose(p, e.catalog.Purpose)
	usage := InferUsage(f)

	return &Result{
		RiskLevel:        level,
		Score:            score,
		DataPoints:       f.DataPoints,
		Cookies:          f.Cookies,
		Trackers:         f.Trackers,
		PolicyInfo:       f.Policy,
		Fingerprinting:   f.Fingerprinting,
		DataSharing:      f.DataSharing,
		BottomLine:       BottomLine(purpose, usage, f),
		ProtectionTips:   ProtectionTips(level, f),
		TechnicalDetails: technicalDetails(p, f),
	}, nil
}

func technicalDetails(p Page, f Findings) map[string]string {
	https := "No"
	if p.Scheme() == "https" {
		https = "Yes"
	}

	return map[string]string{
		DetailURL:             p.Hostname(),
		DetailHTTPS:           https,
		DetailFormFields:      strconv.Itoa(p.Count("input")),
		DetailFormSubmissions: strconv.Itoa(p.Count("form")),
		DetailExternalScripts: strconv.Itoa(p.Count("script[src]")),
		DetailIFrames:         strconv.Itoa(p.Count("iframe")),
		DetailFingerprinting:  string(f.Fingerprinting.RiskLevel),
		DetailSharing:         string(f.DataSharing.SharingLevel),
	}
}
