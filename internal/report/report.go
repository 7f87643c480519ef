// Package report checks analysis results against their published JSON
// contract and renders them as plain text for terminals.
package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/explain"
)

//go:embed result.schema.json
var resultSchema []byte

// Schema returns the JSON Schema of an analysis result
func Schema() []byte {
	return resultSchema
}

// ValidationError lists every field that breaks the contract
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("result does not match schema:")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Validate checks a result against the result schema
func Validate(result *analysis.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks an encoded result against the result schema
func ValidateJSON(data []byte) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(resultSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to run schema validation: %w", err)
	}
	if res.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(res.Errors())),
	}
	for _, desc := range res.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// Summary writes a human-readable rendering of a result
func Summary(w io.Writer, result *analysis.Result, store *explain.Store) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s Privacy risk: %s (score %.1f)\n\n",
		store.RiskEmoji(string(result.RiskLevel)), strings.ToUpper(string(result.RiskLevel)), result.Score)
	fmt.Fprintf(&sb, "%s\n", result.BottomLine)

	if len(result.DataPoints) > 0 {
		sb.WriteString("\nData collected:\n")
		for _, dp := range result.DataPoints {
			label, ok := store.SensitivityLabel(dp.Sensitivity)
			if !ok {
				label = fmt.Sprintf("%d", dp.Sensitivity)
			}
			fmt.Fprintf(&sb, "  - %s (%s, sensitivity: %s)\n", dp.Name, plural(dp.Count, "field"), label)
		}
	}

	fmt.Fprintf(&sb, "\nCookies: %d total, %d tracking (%s)\n",
		result.Cookies.Total, result.Cookies.Tracking, store.CookieTooltip())

	if len(result.Trackers) > 0 {
		sb.WriteString("\nTrackers:\n")
		for _, t := range result.Trackers {
			fmt.Fprintf(&sb, "  - %s [%s] %s\n", t.Name, t.Type, store.TrackerTooltip(t.Type))
		}
	}

	fp := result.Fingerprinting
	fmt.Fprintf(&sb, "\nFingerprinting: %s", fp.RiskLevel)
	if fp.Detected {
		fmt.Fprintf(&sb, " (%s)", strings.Join(append(append([]string{}, fp.Techniques...), fp.Sources...), ", "))
	}
	sb.WriteString("\n")

	ds := result.DataSharing
	fmt.Fprintf(&sb, "\nData sharing: %s, %s, %s\n",
		ds.SharingLevel, plural(ds.ThirdPartyDomains, "third-party domain"), plural(len(ds.DataCompanies), "known company", "known companies"))
	for _, c := range ds.DataCompanies {
		region := c.Region
		if region == "" {
			region = "Unknown"
		}
		fmt.Fprintf(&sb, "  - %s (%s, %s %s)", c.Name, c.Type, store.RegionFlag(region), region)
		if c.Owner != nil {
			fmt.Fprintf(&sb, " owned by %s", *c.Owner)
		}
		sb.WriteString("\n")
	}

	p := result.PolicyInfo
	fmt.Fprintf(&sb, "\nPolicy: privacy policy %s, GDPR %s, CCPA %s, cookie consent %s\n",
		yesNo(p.HasPrivacyPolicy), yesNo(p.ReferencesGDPR), yesNo(p.ReferencesCCPA), yesNo(p.HasCookieConsent))

	if len(result.ProtectionTips) > 0 {
		sb.WriteString("\nProtection tips:\n")
		for i, tip := range result.ProtectionTips {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, tip)
		}
	}

	if len(result.TechnicalDetails) > 0 {
		sb.WriteString("\nTechnical details:\n")
		keys := make([]string, 0, len(result.TechnicalDetails))
		for k := range result.TechnicalDetails {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, result.TechnicalDetails[k])
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// plural formats a count with the singular or plural noun
func plural(n int, forms ...string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, forms[0])
	}
	if len(forms) > 1 {
		return fmt.Sprintf("%d %s", n, forms[1])
	}
	return fmt.Sprintf("%d %ss", n, forms[0])
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
