// Package catalog holds the reference tables the analysis engine matches
// pages against: field selectors, tracker and company domains, regions,
// corporate ownership and keyword lists.
//
// A Catalog is loaded once, validated, and then shared read-only between
// detectors. Nothing in this package mutates a Catalog after Parse returns.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Tracker types produced by the tracker table
const (
	TrackerAnalytics   = "Analytics"
	TrackerTagManager  = "Tag Manager"
	TrackerSocialMedia = "Social Media"
	TrackerAdvertising = "Advertising"
)

// Catalog is the full set of reference tables
type Catalog struct {
	DataTypes              []DataType       `yaml:"data_types" validate:"required,min=1,dive"`
	TrackingCookieKeywords []string         `yaml:"tracking_cookie_keywords" validate:"required,dive,required"`
	Trackers               []Tracker        `yaml:"trackers" validate:"required,dive"`
	Policy                 PolicyTerms      `yaml:"policy"`
	Fingerprinting         Fingerprinting   `yaml:"fingerprinting"`
	Companies              []Company        `yaml:"companies" validate:"required,dive"`
	Regions                []Region         `yaml:"regions" validate:"dive"`
	Ownership              []OwnershipGroup `yaml:"ownership" validate:"dive"`
	Sharing                Sharing          `yaml:"sharing"`
	Purpose                PurposeCues      `yaml:"purpose"`
}

// DataType is one personal-data field category
type DataType struct {
	Name        string   `yaml:"name" validate:"required"`
	Sensitivity int      `yaml:"sensitivity" validate:"min=1,max=5"`
	Selectors   []string `yaml:"selectors" validate:"required,min=1,dive,required"`
}

// Selector joins the category's selectors into one CSS selector group
func (d DataType) Selector() string {
	return strings.Join(d.Selectors, ", ")
}

// Tracker maps a script/iframe domain to a known tracker
type Tracker struct {
	Domain string `yaml:"domain" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
	Type   string `yaml:"type" validate:"required,oneof=Analytics 'Tag Manager' 'Social Media' Advertising"`
}

// PolicyTerms drives privacy-policy and consent-banner detection
type PolicyTerms struct {
	LinkTerms           []string `yaml:"link_terms" validate:"required"`
	GDPRTerms           []string `yaml:"gdpr_terms" validate:"required"`
	CCPATerms           []string `yaml:"ccpa_terms" validate:"required"`
	ConsentContainers   string   `yaml:"consent_containers" validate:"required"`
	ConsentSubjectTerms []string `yaml:"consent_subject_terms" validate:"required"`
	ConsentActionTerms  []string `yaml:"consent_action_terms" validate:"required"`
}

// Fingerprinting lists code markers and vendor script domains
type Fingerprinting struct {
	Patterns []string `yaml:"patterns" validate:"required,dive,required"`
	Vendors  []string `yaml:"vendors" validate:"dive,required"`
}

// Company is a known data-sharing or aggregation company
type Company struct {
	Domain string `yaml:"domain" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
	Type   string `yaml:"type" validate:"required"`
}

// Region records where a company keeps its data
type Region struct {
	Domain string `yaml:"domain" validate:"required"`
	Region string `yaml:"region" validate:"required"`
}

// OwnershipGroup links subsidiary domains to a corporate parent
type OwnershipGroup struct {
	Parent       string   `yaml:"parent" validate:"required"`
	Subsidiaries []string `yaml:"subsidiaries" validate:"required,min=1,dive,required"`
}

// Sharing drives third-party data-sharing detection
type Sharing struct {
	Keywords         []string `yaml:"keywords" validate:"required"`
	SourceSelectors  string   `yaml:"source_selectors" validate:"required"`
	PrivacyURLTerm   string   `yaml:"privacy_url_term" validate:"required"`
	PrivacyTitleTerm string   `yaml:"privacy_title_term" validate:"required"`
	ContentSelectors []string `yaml:"content_selectors"`
}

// PurposeCues feed the page-purpose heuristics
type PurposeCues struct {
	CommercePhrases  []string `yaml:"commerce_phrases"`
	SubmitSelector   string   `yaml:"submit_selector" validate:"required"`
	SubmitThreshold  int      `yaml:"submit_threshold" validate:"min=0"`
	ArticleSelectors []string `yaml:"article_selectors"`
	SocialPhrases    []string `yaml:"social_phrases"`
}

// UnknownRegion is returned when no region entry matches
const UnknownRegion = "Unknown"

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed on first use
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultTables)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot continue without tables
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &c, nil
}

// RegionFor returns the data-residency region of a company domain
func (c *Catalog) RegionFor(domain string) string {
	for _, r := range c.Regions {
		if strings.Contains(domain, r.Domain) {
			return r.Region
		}
	}
	return UnknownRegion
}

// OwnerFor returns the corporate parent of a domain; the first group
// holding a matching subsidiary wins
func (c *Catalog) OwnerFor(domain string) (string, bool) {
	for _, group := range c.Ownership {
		for _, sub := range group.Subsidiaries {
			if strings.Contains(domain, sub) {
				return group.Parent, true
			}
		}
	}
	return "", false
}

// DataType looks up a field category by name
func (c *Catalog) DataType(name string) (DataType, bool) {
	for _, d := range c.DataTypes {
		if d.Name == name {
			return d, true
		}
	}
	return DataType{}, false
}
