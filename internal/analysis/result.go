package analysis

// Level is a three-tier risk classification
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Levels lists every valid level from least to most severe
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// Valid reports whether l is one of the three known levels
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// DataPoint is one personal-data field category found on the page
type DataPoint struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`       // Matching elements
	Sensitivity int    `json:"sensitivity"` // 1..5
}

// CookieSummary counts the cookies visible to the page
type CookieSummary struct {
	Total    int `json:"total"`
	Tracking int `json:"tracking"` // Names matching a tracking keyword
}

// Tracker is a known third-party tracking source
type Tracker struct {
	URL  string `json:"url"` // Matched tracker domain
	Name string `json:"name"`
	Type string `json:"type"` // "Analytics" | "Tag Manager" | "Social Media" | "Advertising"
}

// PolicyInfo holds privacy-policy and consent signals
type PolicyInfo struct {
	HasPrivacyPolicy bool `json:"hasPrivacyPolicy"`
	ReferencesGDPR   bool `json:"referencesGDPR"`
	ReferencesCCPA   bool `json:"referencesCCPA"`
	HasCookieConsent bool `json:"hasCookieConsent"`
}

// FingerprintingInfo holds browser fingerprinting findings
type FingerprintingInfo struct {
	Detected   bool     `json:"detected"`
	Techniques []string `json:"techniques"` // Code markers found in inline scripts
	Sources    []string `json:"sources"`    // Vendor domains found in external scripts
	RiskLevel  Level    `json:"riskLevel"`
}

// DataCompany is a detected third-party company enriched with region and owner
type DataCompany struct {
	Domain string  `json:"domain"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Region string  `json:"region"`
	Owner  *string `json:"owner"` // nil when no corporate parent is known
}

// RelationshipSameParent tags edges between companies with a common owner
const RelationshipSameParent = "Same parent company"

// OwnershipEdge links two detected companies
type OwnershipEdge struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Relationship string `json:"relationship"`
}

// DataSharingInfo holds third-party sharing findings
type DataSharingInfo struct {
	ThirdPartyDomains int             `json:"thirdPartyDomains"`
	DataCompanies     []DataCompany   `json:"dataCompanies"`
	ConnectedEntities []OwnershipEdge `json:"connectedEntities"`
	MentionsInPolicy  bool            `json:"mentionsInPolicy"`
	SharingLevel      Level           `json:"sharingLevel"`
}

// Findings groups the output of every detector for one page
type Findings struct {
	DataPoints     []DataPoint
	Cookies        CookieSummary
	Trackers       []Tracker
	Policy         PolicyInfo
	Fingerprinting FingerprintingInfo
	DataSharing    DataSharingInfo
}

// Result is the engine's single output for one page
type Result struct {
	RiskLevel        Level              `json:"riskLevel"`
	Score            float64            `json:"score"` // Score the risk level was classified from
	DataPoints       []DataPoint        `json:"dataPoints"`
	Cookies          CookieSummary      `json:"cookies"`
	Trackers         []Tracker          `json:"trackers"`
	PolicyInfo       PolicyInfo         `json:"policyInfo"`
	Fingerprinting   FingerprintingInfo `json:"fingerprinting"`
	DataSharing      DataSharingInfo    `json:"dataSharing"`
	BottomLine       string             `json:"bottomLine"`
	ProtectionTips   []string           `json:"protectionTips"` // At most three
	TechnicalDetails map[string]string  `json:"technicalDetails"`
}

// Findings returns the detector findings the result was built from
func (r *Result) Findings() Findings {
	return Findings{
		DataPoints:     r.DataPoints,
		Cookies:        r.Cookies,
		Trackers:       r.Trackers,
		Policy:         r.PolicyInfo,
		Fingerprinting: r.Fingerprinting,
		DataSharing:    r.DataSharing,
	}
}
