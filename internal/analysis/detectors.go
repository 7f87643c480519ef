package analysis

import (
	"strings"

	"github.com/olegrjumin/privacyparrot/internal/catalog"
)

// Detectors runs the individual signal detectors against a page.
// Each method is independent and reads only the page and the catalog.
type Detectors struct {
	catalog *catalog.Catalog
}

// NewDetectors creates a detector set backed by the given catalog
func NewDetectors(c *catalog.Catalog) *Detectors {
	return &Detectors{catalog: c}
}

// DetectFields counts elements matching each data-type selector group.
// Categories with no match are omitted; catalog order is kept.
func (d *Detectors) DetectFields(p Page) []DataPoint {
	points := make([]DataPoint, 0)
	for _, dt := range d.catalog.DataTypes {
		count := p.Count(dt.Selector())
		if count > 0 {
			points = append(points, DataPoint{
				Name:        dt.Name,
				Count:       count,
				Sensitivity: dt.Sensitivity,
			})
		}
	}
	return points
}

// DetectCookies splits the raw cookie string and counts names that look
// like tracking cookies. An empty string is one (empty) entry.
func (d *Detectors) DetectCookies(p Page) CookieSummary {
	cookies := strings.Split(p.Cookies(), ";")

	tracking := 0
	for _, cookie := range cookies {
		name, _, _ := strings.Cut(cookie, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if containsAny(name, d.catalog.TrackingCookieKeywords) {
			tracking++
		}
	}

	return CookieSummary{
		Total:    len(cookies),
		Tracking: tracking,
	}
}

// DetectTrackers matches script and iframe sources against the tracker table
func (d *Detectors) DetectTrackers(p Page) []Tracker {
	sources := make([]string, 0)
	for _, script := range p.Scripts() {
		if script.Src != "" {
			sources = append(sources, script.Src)
		}
	}
	sources = append(sources, p.FrameSources()...)

	trackers := make([]Tracker, 0)
	seen := make(map[string]bool)
	for _, src := range sources {
		src = strings.ToLower(src)
		for _, t := range d.catalog.Trackers {
			if seen[t.Name] || !strings.Contains(src, t.Domain) {
				continue
			}
			seen[t.Name] = true
			trackers = append(trackers, Tracker{
				URL:  t.Domain,
				Name: t.Name,
				Type: t.Type,
			})
		}
	}
	return trackers
}

// DetectPolicy looks for policy links, regulation mentions and consent banners
func (d *Detectors) DetectPolicy(p Page) PolicyInfo {
	terms := d.catalog.Policy
	info := PolicyInfo{}

	for _, a := range p.Anchors() {
		if containsAny(strings.ToLower(a.Text), terms.LinkTerms) ||
			containsAny(strings.ToLower(a.Href), terms.LinkTerms) {
			info.HasPrivacyPolicy = true
			break
		}
	}

	text := strings.ToLower(p.Text())
	info.ReferencesGDPR = containsAny(text, terms.GDPRTerms)
	info.ReferencesCCPA = containsAny(text, terms.CCPATerms)

	for _, block := range p.BlockTexts(terms.ConsentContainers) {
		block = strings.ToLower(block)
		if containsAny(block, terms.ConsentSubjectTerms) && containsAny(block, terms.ConsentActionTerms) {
			info.HasCookieConsent = true
			break
		}
	}

	return info
}

// DetectFingerprinting scans inline script code for fingerprinting markers
// and external script sources for fingerprinting vendors
func (d *Detectors) DetectFingerprinting(p Page) FingerprintingInfo {
	inline := make([]string, 0)
	external := make([]string, 0)
	for _, script := range p.Scripts() {
		if script.Src == "" {
			inline = append(inline, script.Inline)
		} else {
			external = append(external, script.Src)
		}
	}
	code := strings.Join(inline, " ")

	techniques := make([]string, 0)
	for _, pattern := range d.catalog.Fingerprinting.Patterns {
		if strings.Contains(code, pattern) {
			techniques = append(techniques, pattern)
		}
	}

	sources := make([]string, 0)
	for _, vendor := range d.catalog.Fingerprinting.Vendors {
		for _, src := range external {
			if strings.Contains(src, vendor) {
				sources = append(sources, vendor)
				break
			}
		}
	}

	return FingerprintingInfo{
		Detected:   len(techniques) > 0 || len(sources) > 0,
		Techniques: techniques,
		Sources:    sources,
		RiskLevel:  fingerprintingLevel(len(techniques), len(sources)),
	}
}

func fingerprintingLevel(techniques, sources int) Level {
	if techniques > 5 || sources > 0 {
		return LevelHigh
	}
	if techniques > 2 {
		return LevelMedium
	}
	return LevelLow
}

// containsAny reports whether s contains any of the terms
func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
