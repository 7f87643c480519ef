package analysis

// Score weights
const (
	trackingCookieWeight = 1.5
	trackerWeight        = 2.0

	fingerprintingHighPoints   = 10
	fingerprintingMediumPoints = 5
	sharingHighPoints          = 8
	sharingMediumPoints        = 4

	privacyPolicyCredit = 2
	regulationCredit    = 3
	cookieConsentCredit = 2
)

// Classification thresholds
const (
	MediumThreshold = 5.0
	HighThreshold   = 15.0
)

// Score combines all findings into a single risk score.
// Collected data, tracking and sharing add points; policy signals subtract.
func Score(f Findings) float64 {
	score := 0.0

	for _, dp := range f.DataPoints {
		score += float64(dp.Sensitivity)
	}

	score += float64(f.Cookies.Tracking) * trackingCookieWeight
	score += float64(len(f.Trackers)) * trackerWeight

	switch f.Fingerprinting.RiskLevel {
	case LevelHigh:
		score += fingerprintingHighPoints
	case LevelMedium:
		score += fingerprintingMediumPoints
	}

	switch f.DataSharing.SharingLevel {
	case LevelHigh:
		score += sharingHighPoints
	case LevelMedium:
		score += sharingMediumPoints
	}

	if f.Policy.HasPrivacyPolicy {
		score -= privacyPolicyCredit
	}
	if f.Policy.ReferencesGDPR || f.Policy.ReferencesCCPA {
		score -= regulationCredit
	}
	if f.Policy.HasCookieConsent {
		score -= cookieConsentCredit
	}

	return score
}

// ClassifyScore maps a score to a risk level
func ClassifyScore(score float64) Level {
	if score < MediumThreshold {
		return LevelLow
	}
	if score < HighThreshold {
		return LevelMedium
	}
	return LevelHigh
}
