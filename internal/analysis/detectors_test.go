package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/privacyparrot/internal/catalog"
	"github.com/olegrjumin/privacyparrot/internal/page"
)

func newPage(t testing.TB, pageURL, body, cookies string) *page.Snapshot {
	t.Helper()
	p, err := page.FromHTML(pageURL, body, cookies)
	require.NoError(t, err)
	return p
}

func newDetectors() *Detectors {
	return NewDetectors(catalog.MustDefault())
}

func TestDetectFields(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected []DataPoint
	}{
		{
			name:     "no fields",
			html:     `<p>Hello</p>`,
			expected: []DataPoint{},
		},
		{
			name: "single password",
			html: `<form><input type="password"></form>`,
			expected: []DataPoint{
				{Name: "Password", Count: 1, Sensitivity: 5},
			},
		},
		{
			name: "category order follows the table",
			html: `
				<input name="geolocation">
				<input type="email" id="signup-email">
				<input placeholder="Mobile number">
				<input placeholder="EMAIL ADDRESS">`,
			expected: []DataPoint{
				{Name: "Email", Count: 2, Sensitivity: 3},
				{Name: "Phone Number", Count: 1, Sensitivity: 4},
				{Name: "Address", Count: 1, Sensitivity: 4},
				{Name: "Location", Count: 1, Sensitivity: 4},
			},
		},
		{
			name: "checkout form",
			html: `
				<input name="card_number">
				<input name="billing_zip">
				<input type="checkbox" name="consent_marketing">`,
			expected: []DataPoint{
				{Name: "Address", Count: 1, Sensitivity: 4},
				{Name: "Credit Card", Count: 1, Sensitivity: 5},
				{Name: "Consent", Count: 1, Sensitivity: 2},
			},
		},
	}

	d := newDetectors()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPage(t, "https://example.com", tc.html, "")
			assert.Equal(t, tc.expected, d.DetectFields(p))
		})
	}
}

func TestDetectCookies(t *testing.T) {
	testCases := []struct {
		name     string
		cookies  string
		expected CookieSummary
	}{
		{"empty string counts as one entry", "", CookieSummary{Total: 1, Tracking: 0}},
		{"mixed", "uid=1; session=2; foo=bar", CookieSummary{Total: 3, Tracking: 2}},
		{"case and whitespace", "  _GA_Visitor=abc ;Theme=dark", CookieSummary{Total: 2, Tracking: 1}},
		{"substring keywords", "adroll=1; pixel_x=2; trackme=3; analytics_opt=4", CookieSummary{Total: 4, Tracking: 4}},
		{"value is ignored", "theme=session_dark", CookieSummary{Total: 1, Tracking: 0}},
		{"no equals sign", "userid", CookieSummary{Total: 1, Tracking: 1}},
	}

	d := newDetectors()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPage(t, "https://example.com", "", tc.cookies)
			assert.Equal(t, tc.expected, d.DetectCookies(p))
		})
	}
}

func TestDetectTrackers(t *testing.T) {
	html := `
		<script src="https://www.Google-Analytics.com/analytics.js"></script>
		<script src="https://www.google-analytics.com/gtag.js"></script>
		<script src="https://ad.doubleclick.net/x.js"></script>
		<script>var inline = "hotjar.com";</script>
		<iframe src="https://platform.twitter.com/widgets"></iframe>
		<iframe></iframe>`

	p := newPage(t, "https://example.com", html, "")
	trackers := newDetectors().DetectTrackers(p)

	assert.Equal(t, []Tracker{
		{URL: "google-analytics.com", Name: "Google Analytics", Type: "Analytics"},
		{URL: "doubleclick.net", Name: "DoubleClick", Type: "Advertising"},
		{URL: "twitter.com", Name: "Twitter", Type: "Social Media"},
	}, trackers)
}

func TestDetectTrackers_NoDuplicateNames(t *testing.T) {
	html := `
		<script src="https://connect.facebook.net/a.js"></script>
		<script src="https://connect.facebook.net/b.js"></script>
		<iframe src="https://www.facebook.net/plugins"></iframe>`

	p := newPage(t, "https://example.com", html, "")
	trackers := newDetectors().DetectTrackers(p)

	require.Len(t, trackers, 1)
	assert.Equal(t, "Facebook Pixel", trackers[0].Name)
}

func TestDetectPolicy(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected PolicyInfo
	}{
		{
			name:     "nothing",
			html:     `<a href="/about">About us</a>`,
			expected: PolicyInfo{},
		},
		{
			name:     "policy link by text",
			html:     `<a href="/legal">Privacy Notice</a>`,
			expected: PolicyInfo{HasPrivacyPolicy: true},
		},
		{
			name:     "policy link by href",
			html:     `<a href="/TERMS-of-service">Legal</a>`,
			expected: PolicyInfo{HasPrivacyPolicy: true},
		},
		{
			name:     "regulations",
			html:     `<p>We follow the General Data Protection Regulation and the CCPA.</p>`,
			expected: PolicyInfo{ReferencesGDPR: true, ReferencesCCPA: true},
		},
		{
			name:     "regulation mentioned only in script",
			html:     `<script>var law = "gdpr";</script><p>Hi</p>`,
			expected: PolicyInfo{},
		},
		{
			name:     "consent banner",
			html:     `<aside>We use cookies. <button>Accept all</button></aside>`,
			expected: PolicyInfo{HasCookieConsent: true},
		},
		{
			name:     "cookie text without an action",
			html:     `<div>We use cookies.</div>`,
			expected: PolicyInfo{},
		},
	}

	d := newDetectors()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPage(t, "https://example.com", tc.html, "")
			assert.Equal(t, tc.expected, d.DetectPolicy(p))
		})
	}
}

func TestDetectFingerprinting(t *testing.T) {
	testCases := []struct {
		name       string
		html       string
		detected   bool
		techniques []string
		sources    []string
		level      Level
	}{
		{
			name:       "clean page",
			html:       `<script>console.log("hi")</script>`,
			detected:   false,
			techniques: []string{},
			sources:    []string{},
			level:      LevelLow,
		},
		{
			name:       "two techniques stay low",
			html:       `<script>ctx.measureText("x"); new FontFace("a", "b");</script>`,
			detected:   true,
			techniques: []string{"measureText", "FontFace"},
			sources:    []string{},
			level:      LevelLow,
		},
		{
			name:       "three techniques across scripts",
			html:       `<script>gl.getParameter(1)</script><script>new AudioContext(); navigator.plugins</script>`,
			detected:   true,
			techniques: []string{"getParameter", "AudioContext", "navigator.plugins"},
			sources:    []string{},
			level:      LevelMedium,
		},
		{
			name: "six techniques",
			html: `<script>
				canvas.toDataURL(); ctx.getImageData(0, 0, 1, 1); ctx.measureText("a");
				new AudioContext(); navigator.userAgent; navigator.plugins;
			</script>`,
			detected:   true,
			techniques: []string{"canvas.toDataURL", "getImageData", "measureText", "AudioContext", "navigator.userAgent", "navigator.plugins"},
			sources:    []string{},
			level:      LevelHigh,
		},
		{
			name:       "vendor script",
			html:       `<script src="https://cdn.mixpanel.com/lib.js"></script>`,
			detected:   true,
			techniques: []string{},
			sources:    []string{"mixpanel.com"},
			level:      LevelHigh,
		},
		{
			name:       "markers in external scripts are ignored",
			html:       `<script src="/js/canvas.toDataURL.js"></script>`,
			detected:   false,
			techniques: []string{},
			sources:    []string{},
			level:      LevelLow,
		},
	}

	d := newDetectors()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPage(t, "https://example.com", tc.html, "")
			info := d.DetectFingerprinting(p)

			assert.Equal(t, tc.detected, info.Detected)
			assert.Equal(t, tc.techniques, info.Techniques)
			assert.Equal(t, tc.sources, info.Sources)
			assert.Equal(t, tc.level, info.RiskLevel)
		})
	}
}

func TestFingerprintingLevel(t *testing.T) {
	assert.Equal(t, LevelLow, fingerprintingLevel(0, 0))
	assert.Equal(t, LevelLow, fingerprintingLevel(2, 0))
	assert.Equal(t, LevelMedium, fingerprintingLevel(3, 0))
	assert.Equal(t, LevelMedium, fingerprintingLevel(5, 0))
	assert.Equal(t, LevelHigh, fingerprintingLevel(6, 0))
	assert.Equal(t, LevelHigh, fingerprintingLevel(0, 1))
}
