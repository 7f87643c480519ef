package analysis

import (
	"fmt"
	"strings"

	"github.com/olegrjumin/privacyparrot/internal/catalog"
)

// MaxProtectionTips caps the tip list
const MaxProtectionTips = 3

// highSensitivity is the sensitivity at which collected data counts as high
const highSensitivity = 4

// PurposeRule maps a page cue to the purpose clause of the bottom line
type PurposeRule struct {
	Name   string
	Clause string
	Match  func(p Page, cues catalog.PurposeCues) bool
}

// UsageRule maps findings to the data-usage clause of the bottom line
type UsageRule struct {
	Name   string
	Clause string
	Match  func(f Findings) bool
}

// PurposeRules are evaluated top to bottom; the first match wins.
// The last rule always matches.
var PurposeRules = []PurposeRule{
	{
		Name:   "commerce",
		Clause: "store wants your data to process orders",
		Match: func(p Page, cues catalog.PurposeCues) bool {
			return containsAny(strings.ToLower(p.Text()), cues.CommercePhrases) ||
				p.Count(cues.SubmitSelector) > cues.SubmitThreshold
		},
	},
	{
		Name:   "content",
		Clause: "site collects data for targeting content",
		Match: func(p Page, cues catalog.PurposeCues) bool {
			for _, selector := range cues.ArticleSelectors {
				if p.Count(selector) > 0 {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "social",
		Clause: "platform collects data to build your profile",
		Match: func(p Page, cues catalog.PurposeCues) bool {
			return containsAny(strings.ToLower(p.Text()), cues.SocialPhrases)
		},
	},
	{
		Name:   "generic",
		Clause: "site collects your data",
		Match:  func(Page, catalog.PurposeCues) bool { return true },
	},
}

// UsageRules are evaluated top to bottom; the first match wins.
// The last rule always matches.
var UsageRules = []UsageRule{
	{
		Name:   "advertising-sensitive",
		Clause: "and shares it with advertising networks",
		Match: func(f Findings) bool {
			return hasAdvertisingTracker(f.Trackers) && hasHighSensitivityData(f.DataPoints)
		},
	},
	{
		Name:   "advertising",
		Clause: "for marketing purposes",
		Match:  func(f Findings) bool { return hasAdvertisingTracker(f.Trackers) },
	},
	{
		Name:   "sensitive",
		Clause: "for its services and may share it with partners",
		Match:  func(f Findings) bool { return hasHighSensitivityData(f.DataPoints) },
	},
	{
		Name:   "service",
		Clause: "to provide its service",
		Match:  func(Findings) bool { return true },
	},
}

// InferPurpose returns the clause of the first matching purpose rule
func InferPurpose(p Page, cues catalog.PurposeCues) string {
	for _, rule := range PurposeRules {
		if rule.Match(p, cues) {
			return rule.Clause
		}
	}
	return ""
}

// InferUsage returns the clause of the first matching usage rule
func InferUsage(f Findings) string {
	for _, rule := range UsageRules {
		if rule.Match(f) {
			return rule.Clause
		}
	}
	return ""
}

// BottomLine builds the one-paragraph summary
func BottomLine(purpose, usage string, f Findings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This %s %s.", purpose, usage)

	if f.Fingerprinting.Detected && f.Fingerprinting.RiskLevel == LevelHigh {
		b.WriteString(" It uses advanced fingerprinting to track you across websites.")
	}

	switch f.DataSharing.SharingLevel {
	case LevelHigh:
		fmt.Fprintf(&b, " It likely shares your data with %d third-party data brokers.", len(f.DataSharing.DataCompanies))
	case LevelMedium:
		b.WriteString(" It appears to share data with third parties.")
	}

	return b.String()
}

// ProtectionTips returns up to three tips. Candidates are generated in a
// fixed order and the list is truncated, so earlier tips always win.
func ProtectionTips(level Level, f Findings) []string {
	tips := []string{
		"Consider using a privacy-focused browser extension like uBlock Origin or Privacy Badger",
	}

	if level == LevelHigh {
		tips = append(tips,
			"Use a temporary or disposable email service for non-critical accounts",
			"Be cautious about sharing sensitive information on this site",
		)
	}

	if hasDataPoint(f.DataPoints, "Email") {
		tips = append(tips, "Consider using an email alias service for signup")
	}
	if hasDataPoint(f.DataPoints, "Credit Card") {
		tips = append(tips, "Check if your bank offers virtual card numbers for online payments")
	}
	if hasDataPoint(f.DataPoints, "Location") {
		tips = append(tips, "Disable precise location sharing in your browser settings")
	}

	if f.Cookies.Tracking > 3 || len(f.Trackers) > 3 {
		tips = append(tips, "Consider using privacy mode or clearing cookies after visiting this site")
	}

	if f.Fingerprinting.Detected {
		tips = append(tips, "Use a browser with fingerprinting protection like Firefox or Brave")
		if f.Fingerprinting.RiskLevel == LevelHigh {
			tips = append(tips, "Consider using the Canvas Blocker extension to prevent browser fingerprinting")
		}
	}

	switch f.DataSharing.SharingLevel {
	case LevelHigh:
		tips = append(tips,
			"Consider opting out of data sharing through the privacy settings",
			`Check if the site offers a "Do Not Sell My Data" option (required by CCPA)`,
		)
	case LevelMedium:
		tips = append(tips, "Review the privacy policy to understand how your data is shared")
	}

	if len(tips) > MaxProtectionTips {
		tips = tips[:MaxProtectionTips]
	}
	return tips
}

func hasAdvertisingTracker(trackers []Tracker) bool {
	for _, t := range trackers {
		if t.Type == catalog.TrackerAdvertising {
			return true
		}
	}
	return false
}

func hasHighSensitivityData(points []DataPoint) bool {
	for _, dp := range points {
		if dp.Sensitivity >= highSensitivity {
			return true
		}
	}
	return false
}

func hasDataPoint(points []DataPoint, name string) bool {
	for _, dp := range points {
		if dp.Name == name {
			return true
		}
	}
	return false
}
