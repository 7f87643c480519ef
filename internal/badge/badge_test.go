package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
)

func TestFor(t *testing.T) {
	testCases := []struct {
		level analysis.Level
		text  string
		color string
		alert string
	}{
		{analysis.LevelLow, "OK", "#4CAF50", ""},
		{analysis.LevelMedium, "!", "#FFC107", ""},
		{analysis.LevelHigh, "!!", "#F44336", "!"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.level), func(t *testing.T) {
			b, err := For(tc.level)
			require.NoError(t, err)
			assert.Equal(t, tc.level, b.RiskLevel)
			assert.Equal(t, tc.text, b.Text)
			assert.Equal(t, tc.color, b.Color)
			assert.Equal(t, tc.alert, b.Alert)
			assert.Len(t, b.Icons, 3)
		})
	}
}

func TestFor_UnknownLevel(t *testing.T) {
	for _, level := range []analysis.Level{"", "critical", "LOW"} {
		_, err := For(level)
		assert.ErrorIs(t, err, ErrUnknownLevel)
	}
}

func TestFor_EveryLevelHasABadge(t *testing.T) {
	for _, level := range analysis.Levels {
		_, err := For(level)
		assert.NoError(t, err)
	}
}
