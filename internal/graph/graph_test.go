package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/explain"
)

func owner(s string) *string {
	return &s
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		DataSharing: analysis.DataSharingInfo{
			DataCompanies: []analysis.DataCompany{
				{Domain: "acxiom.com", Name: "Acxiom", Type: "Data Broker", Region: "USA"},
				{Domain: "facebook.com", Name: "Facebook", Type: "Social Media", Region: "USA", Owner: owner("Meta")},
				{Domain: "instagram.com", Name: "Instagram", Type: "Social Media", Region: "USA", Owner: owner("Meta")},
				{Domain: "salesforce.com", Name: "Salesforce DMP", Type: "Data Management", Region: ""},
			},
			ConnectedEntities: []analysis.OwnershipEdge{
				{From: "Facebook", To: "Instagram", Relationship: analysis.RelationshipSameParent},
			},
			SharingLevel: analysis.LevelHigh,
		},
	}
}

func TestBuild_Empty(t *testing.T) {
	b := NewBuilder(explain.MustDefault())

	for _, r := range []*analysis.Result{nil, {}} {
		g := b.Build(r)
		assert.True(t, g.Empty)
		assert.Equal(t, EmptyMessage, g.Message)
		assert.Empty(t, g.Nodes)
		assert.NotNil(t, g.Nodes)
		assert.Empty(t, g.Links)
		assert.NotEmpty(t, g.Legend)
	}
}

func TestBuild_NodesAndLinks(t *testing.T) {
	g := NewBuilder(explain.MustDefault()).Build(sampleResult())

	assert.False(t, g.Empty)
	require.Len(t, g.Nodes, 5)
	require.Len(t, g.Links, 5)

	hub := g.Nodes[0]
	assert.Equal(t, HubID, hub.ID)
	assert.Equal(t, HubColor, hub.Color)
	assert.Equal(t, float64(HubRadius), hub.Radius)
	assert.Zero(t, hub.X)
	assert.Zero(t, hub.Y)
	assert.Equal(t, "Your data is shared with 4 companies", hub.Tooltip)

	// solid links from the hub come first, dashed owner links after
	for i, l := range g.Links[:4] {
		assert.Equal(t, HubID, l.Source)
		assert.Equal(t, g.Nodes[i+1].ID, l.Target)
		assert.Equal(t, 1.0, l.Value)
		assert.False(t, l.Dashed)
	}
	assert.Equal(t, Link{Source: "Facebook", Target: "Instagram", Value: 0.5, Dashed: true}, g.Links[4])
}

func TestBuild_CircleLayout(t *testing.T) {
	g := NewBuilder(explain.MustDefault()).Build(sampleResult())

	expected := [][2]float64{{110, 0}, {0, 110}, {-110, 0}, {0, -110}}
	for i, pos := range expected {
		n := g.Nodes[i+1]
		assert.InDelta(t, pos[0], n.X, 1e-9, n.Name)
		assert.InDelta(t, pos[1], n.Y, 1e-9, n.Name)
		assert.Equal(t, float64(CompanyRadius), n.Radius)
	}
}

func TestBuild_CompanyDisplay(t *testing.T) {
	g := NewBuilder(explain.MustDefault()).Build(sampleResult())

	acxiom := g.Nodes[1]
	assert.Equal(t, "#F44336", acxiom.Color)
	assert.Equal(t, "🇺🇸", acxiom.Flag)
	assert.Equal(t, "Acxiom\nType: Data Broker\nRegion: USA", acxiom.Tooltip)

	facebook := g.Nodes[2]
	assert.Equal(t, "#FF5722", facebook.Color)
	assert.Equal(t, "Facebook\nType: Social Media\nRegion: USA\nOwned by: Meta", facebook.Tooltip)

	salesforce := g.Nodes[4]
	assert.Equal(t, "Unknown", salesforce.Region)
	assert.Equal(t, "❓", salesforce.Flag)
	assert.Equal(t, "#2196F3", salesforce.Color)
	assert.Equal(t, "Salesforce DMP", salesforce.Label)
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "Acxiom", shorten("Acxiom"))
	assert.Equal(t, "Exactly14Chars", shorten("Exactly14Chars"))
	assert.Equal(t, "Adobe Audien...", shorten("Adobe Audience Manager"))
}

func TestLegend(t *testing.T) {
	g := NewBuilder(explain.MustDefault()).Build(nil)

	require.Len(t, g.Legend, 7)
	assert.Equal(t, LegendItem{Label: "Website", Color: "#4CAF50"}, g.Legend[0])
	assert.Equal(t, LegendItem{Label: "Ad Platform", Color: "#FFC107"}, g.Legend[2])
	assert.Equal(t, LegendItem{Label: "Same owner", Dashed: true}, g.Legend[6])
}
