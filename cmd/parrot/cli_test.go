package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/explain"
	"github.com/olegrjumin/privacyparrot/internal/graph"
)

const shopPage = `<html><head><title>Shop</title>
<script src="https://www.google-analytics.com/analytics.js"></script>
<script src="https://static.doubleclick.net/ad.js"></script>
</head><body><form><input type="email"><input type="tel"></form></body></html>`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.html")
	require.NoError(t, os.WriteFile(path, []byte(shopPage), 0o600))
	return path
}

func TestAnalyze_JSON(t *testing.T) {
	out, err := execute(t, "", "analyze", "--url", "https://shop.example", "--file", writePage(t), "--cookies", "ad_uid=1", "--json", "--strict")
	require.NoError(t, err)

	var result analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.RiskLevel.Valid())
	assert.Equal(t, 1, result.Cookies.Tracking)

	names := make([]string, 0, len(result.Trackers))
	for _, tr := range result.Trackers {
		names = append(names, tr.Name)
	}
	assert.Contains(t, names, "Google Analytics")
}

func TestAnalyze_Summary(t *testing.T) {
	out, err := execute(t, "", "analyze", "--url", "https://shop.example", "--file", writePage(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Privacy risk:")
	assert.Contains(t, out, "Google Analytics")
}

func TestAnalyze_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing url",
			args:    []string{"analyze", "--json"},
			wantErr: "url",
		},
		{
			name:    "missing file",
			args:    []string{"analyze", "--url", "https://shop.example", "--file", "/nonexistent/page.html"},
			wantErr: "failed to read page file",
		},
		{
			name:    "restricted page",
			args:    []string{"analyze", "--url", "chrome://settings", "--file", "/dev/null"},
			wantErr: "not available",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, "", tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestExplain(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		wantTier explain.Tier
	}{
		{
			name:     "known data type",
			args:     []string{"explain", "data-type", "Email"},
			wantTier: explain.TierExact,
		},
		{
			name:     "unknown data type",
			args:     []string{"explain", "data-type", "Shoe Size"},
			wantTier: explain.TierGeneric,
		},
		{
			name:     "known tracker",
			args:     []string{"explain", "tracker", "Google Analytics", "--type", "Analytics"},
			wantTier: explain.TierExact,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, "", tc.args...)
			require.NoError(t, err)

			var lookup explain.Lookup
			require.NoError(t, json.Unmarshal([]byte(out), &lookup))
			assert.Equal(t, tc.wantTier, lookup.Tier)
			assert.NotEmpty(t, lookup.Explanation)
		})
	}
}

func TestExplain_RequiresName(t *testing.T) {
	_, err := execute(t, "", "explain", "data-type")
	require.Error(t, err)
}

func TestGraph_FromAnalyzeOutput(t *testing.T) {
	resultJSON, err := execute(t, "", "analyze", "--url", "https://shop.example", "--file", writePage(t), "--json")
	require.NoError(t, err)

	out, err := execute(t, resultJSON, "graph")
	require.NoError(t, err)

	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.NotEmpty(t, g.Legend)
}

func TestGraph_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"riskLevel":"low","dataSharing":{"dataCompanies":[]}}`), 0o600))

	out, err := execute(t, "", "graph", "--input", path)
	require.NoError(t, err)

	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.True(t, g.Empty)
	assert.Empty(t, g.Nodes)
}

func TestGraph_InvalidInput(t *testing.T) {
	_, err := execute(t, "not json", "graph")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode result")
}
