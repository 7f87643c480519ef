// Package badge maps a risk level to the toolbar indicator shown for a page
package badge

import (
	"errors"
	"fmt"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
)

// ErrUnknownLevel is returned for levels outside low/medium/high
var ErrUnknownLevel = errors.New("unknown risk level")

// Icons are the toolbar icon paths by pixel size
var Icons = map[string]string{
	"16":  "icons/icon16.png",
	"48":  "icons/icon48.png",
	"128": "icons/icon128.png",
}

// Badge describes the indicator for one risk level
type Badge struct {
	RiskLevel analysis.Level    `json:"riskLevel"`
	Text      string            `json:"text"`  // Indicator text when no risk icon is available
	Color     string            `json:"color"` // Indicator background
	Alert     string            `json:"alert"` // Badge text shown alongside the icon; empty clears it
	Icons     map[string]string `json:"icons"`
}

var indicators = map[analysis.Level]struct{ text, color string }{
	analysis.LevelLow:    {"OK", "#4CAF50"},
	analysis.LevelMedium: {"!", "#FFC107"},
	analysis.LevelHigh:   {"!!", "#F44336"},
}

// For returns the badge for a risk level
func For(level analysis.Level) (Badge, error) {
	ind, ok := indicators[level]
	if !ok {
		return Badge{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	b := Badge{
		RiskLevel: level,
		Text:      ind.text,
		Color:     ind.color,
		Icons:     Icons,
	}
	if level == analysis.LevelHigh {
		b.Alert = "!"
	}
	return b, nil
}
