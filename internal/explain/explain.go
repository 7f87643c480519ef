// Package explain holds the display text for analysis findings: what a data
// type or tracker is, how it is used and how to protect against it.
//
// Lookups fall back through explicit tiers. A data type is looked up by exact
// name, then generic text. A tracker is looked up by exact name, then by its
// type, then generic text. Every lookup reports the tier that answered.
package explain

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Tier names the level of a fallback chain that produced a lookup result
type Tier string

const (
	TierExact   Tier = "exact"
	TierType    Tier = "type"
	TierGeneric Tier = "generic"
)

// DataTypeTiers lists the tiers of a data-type lookup in the order tried
var DataTypeTiers = []Tier{TierExact, TierGeneric}

// TrackerTiers lists the tiers of a tracker lookup in the order tried
var TrackerTiers = []Tier{TierExact, TierType, TierGeneric}

// Bundle is the explanation shown for one finding
type Bundle struct {
	Explanation string   `yaml:"explanation" json:"explanation" validate:"required"`
	Impact      []string `yaml:"impact" json:"impact" validate:"required,min=1"`
	Protection  string   `yaml:"protection" json:"protection" validate:"required"`
}

// Entry is a named bundle
type Entry struct {
	Name   string `yaml:"name" validate:"required"`
	Bundle `yaml:",inline"`
}

// Lookup is a bundle together with the tier that produced it
type Lookup struct {
	Bundle
	Tier Tier `json:"tier"`
}

// LevelBundle is an explanation of a sub-risk at a given level
type LevelBundle struct {
	Bundle
	RiskLevel string `json:"riskLevel"`
}

// Resource links a learn-more topic to a URL
type Resource struct {
	Topic string `yaml:"topic" validate:"required"`
	URL   string `yaml:"url" validate:"required,url"`
}

// Tooltips are the short hover texts
type Tooltips struct {
	TrackerTypes   map[string]string `yaml:"tracker_types"`
	TrackerDefault string            `yaml:"tracker_default" validate:"required"`
	Cookies        string            `yaml:"cookies" validate:"required"`
}

// content mirrors content.yaml
type content struct {
	DataTypes           []Entry           `yaml:"data_types" validate:"required,dive"`
	DataTypeDefault     Bundle            `yaml:"data_type_default"`
	Trackers            []Entry           `yaml:"trackers" validate:"dive"`
	TrackerTypes        []Entry           `yaml:"tracker_types" validate:"dive"`
	TrackerDefault      Bundle            `yaml:"tracker_default"`
	Fingerprinting      Bundle            `yaml:"fingerprinting"`
	DataSharing         Bundle            `yaml:"data_sharing"`
	Tooltips            Tooltips          `yaml:"tooltips"`
	SensitivityLabels   []string          `yaml:"sensitivity_labels" validate:"len=5,dive,required"`
	RiskEmoji           map[string]string `yaml:"risk_emoji"`
	RiskEmojiDefault    string            `yaml:"risk_emoji_default" validate:"required"`
	LearnMore           []Resource        `yaml:"learn_more" validate:"dive"`
	LearnMoreDefault    string            `yaml:"learn_more_default" validate:"required,url"`
	CompanyColors       map[string]string `yaml:"company_colors"`
	CompanyColorDefault string            `yaml:"company_color_default" validate:"required"`
	RegionFlags         map[string]string `yaml:"region_flags"`
	RegionFlagDefault   string            `yaml:"region_flag_default" validate:"required"`
}

// Store answers explanation lookups. It is read-only after Parse.
type Store struct {
	c            content
	dataTypes    map[string]Bundle
	trackers     map[string]Bundle
	trackerTypes map[string]Bundle
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded content
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = Parse(defaultContent)
	})
	return defaultStore, defaultErr
}

// MustDefault is Default for callers that cannot continue without content
func MustDefault() *Store {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes and validates explanation content
func Parse(data []byte) (*Store, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse explanations: %w", err)
	}

	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid explanations: %w", err)
	}

	return &Store{
		c:            c,
		dataTypes:    index(c.DataTypes),
		trackers:     index(c.Trackers),
		trackerTypes: index(c.TrackerTypes),
	}, nil
}

func index(entries []Entry) map[string]Bundle {
	m := make(map[string]Bundle, len(entries))
	for _, e := range entries {
		m[e.Name] = e.Bundle
	}
	return m
}

// DataType explains a data-type name
func (s *Store) DataType(name string) Lookup {
	if b, ok := s.dataTypes[name]; ok {
		return Lookup{Bundle: b, Tier: TierExact}
	}
	return Lookup{Bundle: s.c.DataTypeDefault, Tier: TierGeneric}
}

// Tracker explains a tracker by name, falling back to its type
func (s *Store) Tracker(name, trackerType string) Lookup {
	if b, ok := s.trackers[name]; ok {
		return Lookup{Bundle: b, Tier: TierExact}
	}
	if b, ok := s.trackerTypes[trackerType]; ok {
		return Lookup{Bundle: b, Tier: TierType}
	}
	return Lookup{Bundle: s.c.TrackerDefault, Tier: TierGeneric}
}

// DataTypeNames returns the names with an exact data-type explanation
func (s *Store) DataTypeNames() []string {
	return names(s.c.DataTypes)
}

// TrackerNames returns the names with an exact tracker explanation
func (s *Store) TrackerNames() []string {
	return names(s.c.Trackers)
}

// TrackerTypeNames returns the tracker types with a type-level explanation
func (s *Store) TrackerTypeNames() []string {
	return names(s.c.TrackerTypes)
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

// Fingerprinting explains browser fingerprinting at a risk level
func (s *Store) Fingerprinting(level string) LevelBundle {
	return LevelBundle{Bundle: s.c.Fingerprinting, RiskLevel: level}
}

// DataSharing explains third-party sharing at a risk level. The first impact
// line names the broker count when there is one.
func (s *Store) DataSharing(level string, brokerCount int) LevelBundle {
	first := "Connected to third-party domains"
	if brokerCount > 0 {
		plural := ""
		if brokerCount > 1 {
			plural = "s"
		}
		first = fmt.Sprintf("Connected to %d known data broker%s", brokerCount, plural)
	}

	b := s.c.DataSharing
	b.Impact = append([]string{first}, b.Impact...)
	return LevelBundle{Bundle: b, RiskLevel: level}
}

// SensitivityLabel names a sensitivity from 1 (Minimal) to 5 (Very High)
func (s *Store) SensitivityLabel(sensitivity int) (string, bool) {
	if sensitivity < 1 || sensitivity > len(s.c.SensitivityLabels) {
		return "", false
	}
	return s.c.SensitivityLabels[sensitivity-1], true
}

// TrackerTooltip returns the hover text for a tracker type
func (s *Store) TrackerTooltip(trackerType string) string {
	if t, ok := s.c.Tooltips.TrackerTypes[trackerType]; ok {
		return t
	}
	return s.c.Tooltips.TrackerDefault
}

// CookieTooltip returns the hover text for the cookie summary
func (s *Store) CookieTooltip() string {
	return s.c.Tooltips.Cookies
}

// RiskEmoji returns the emoji shown next to a risk level
func (s *Store) RiskEmoji(level string) string {
	if e, ok := s.c.RiskEmoji[level]; ok {
		return e
	}
	return s.c.RiskEmojiDefault
}

// LearnMore returns a resource URL for a topic. The topic may be the full
// link text ("Learn more about cookies and privacy").
func (s *Store) LearnMore(topic string) string {
	topic = strings.Replace(topic, "Learn more about ", "", 1)
	topic = strings.Replace(topic, " privacy", "", 1)
	topic = strings.ToLower(strings.TrimSpace(topic))

	for _, r := range s.c.LearnMore {
		if strings.Contains(topic, strings.ToLower(r.Topic)) {
			return r.URL
		}
	}
	return s.c.LearnMoreDefault
}

// CompanyColor returns the display colour for a company type
func (s *Store) CompanyColor(companyType string) string {
	if c, ok := s.c.CompanyColors[companyType]; ok {
		return c
	}
	return s.c.CompanyColorDefault
}

// RegionFlag returns the flag shown for a data-residency region
func (s *Store) RegionFlag(region string) string {
	if f, ok := s.c.RegionFlags[region]; ok {
		return f
	}
	return s.c.RegionFlagDefault
}
