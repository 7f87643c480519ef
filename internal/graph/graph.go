// Package graph turns the data-sharing findings of an analysis into a
// node-link structure: the analyzed site at the centre, detected companies
// on a circle around it, and dashed links between companies with a common
// owner.
package graph

import (
	"fmt"
	"math"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
	"github.com/olegrjumin/privacyparrot/internal/explain"
)

// Layout constants
const (
	HubID          = "website"
	HubName        = "Current Website"
	HubType        = "Website"
	HubColor       = "#4CAF50"
	HubRadius      = 30
	CompanyRadius  = 22
	OrbitRadius    = 110
	maxLabelLength = 14
)

// EmptyMessage is shown when no company was detected
const EmptyMessage = "No third-party data sharing detected on this page."

// Node is one circle in the graph
type Node struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Label   string  `json:"label"` // Name shortened for display
	Type    string  `json:"type"`
	Region  string  `json:"region"`
	Flag    string  `json:"flag,omitempty"`
	Owner   *string `json:"owner,omitempty"`
	Radius  float64 `json:"radius"`
	Color   string  `json:"color"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Tooltip string  `json:"tooltip"`
}

// Link connects two nodes by ID
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Dashed bool    `json:"dashed"`
}

// LegendItem explains a node colour or link style
type LegendItem struct {
	Label  string `json:"label"`
	Color  string `json:"color,omitempty"`
	Dashed bool   `json:"dashed,omitempty"`
}

// Graph is the full visualization payload
type Graph struct {
	Empty   bool         `json:"empty"`
	Message string       `json:"message,omitempty"`
	Nodes   []Node       `json:"nodes"`
	Links   []Link       `json:"links"`
	Legend  []LegendItem `json:"legend"`
}

// legendTypes are the company types shown in the legend
var legendTypes = []string{"Data Broker", "Ad Platform", "Data Management", "Marketing Analytics", "Social Media"}

// Builder builds graphs using the display palettes of an explanation store
type Builder struct {
	store *explain.Store
}

// NewBuilder creates a graph builder
func NewBuilder(store *explain.Store) *Builder {
	return &Builder{store: store}
}

// Build lays out the companies of a result around the analyzed site
func (b *Builder) Build(result *analysis.Result) *Graph {
	g := &Graph{
		Nodes:  make([]Node, 0),
		Links:  make([]Link, 0),
		Legend: b.legend(),
	}

	if result == nil || len(result.DataSharing.DataCompanies) == 0 {
		g.Empty = true
		g.Message = EmptyMessage
		return g
	}

	companies := result.DataSharing.DataCompanies
	g.Nodes = append(g.Nodes, Node{
		ID:      HubID,
		Name:    HubName,
		Label:   HubName,
		Type:    HubType,
		Region:  "N/A",
		Radius:  HubRadius,
		Color:   HubColor,
		Tooltip: fmt.Sprintf("Your data is shared with %d companies", len(companies)),
	})

	n := float64(len(companies))
	for i, c := range companies {
		angle := float64(i) * 2 * math.Pi / n
		region := c.Region
		if region == "" {
			region = "Unknown"
		}

		g.Nodes = append(g.Nodes, Node{
			ID:      c.Name,
			Name:    c.Name,
			Label:   shorten(c.Name),
			Type:    c.Type,
			Region:  region,
			Flag:    b.store.RegionFlag(region),
			Owner:   c.Owner,
			Radius:  CompanyRadius,
			Color:   b.store.CompanyColor(c.Type),
			X:       math.Cos(angle) * OrbitRadius,
			Y:       math.Sin(angle) * OrbitRadius,
			Tooltip: companyTooltip(c.Name, c.Type, region, c.Owner),
		})
		g.Links = append(g.Links, Link{Source: HubID, Target: c.Name, Value: 1})
	}

	for _, e := range result.DataSharing.ConnectedEntities {
		g.Links = append(g.Links, Link{Source: e.From, Target: e.To, Value: 0.5, Dashed: true})
	}

	return g
}

func (b *Builder) legend() []LegendItem {
	items := []LegendItem{{Label: HubType, Color: HubColor}}
	for _, t := range legendTypes {
		items = append(items, LegendItem{Label: t, Color: b.store.CompanyColor(t)})
	}
	return append(items, LegendItem{Label: "Same owner", Dashed: true})
}

func companyTooltip(name, companyType, region string, owner *string) string {
	tip := fmt.Sprintf("%s\nType: %s\nRegion: %s", name, companyType, region)
	if owner != nil {
		tip += "\nOwned by: " + *owner
	}
	return tip
}

// shorten truncates long names for node labels
func shorten(name string) string {
	r := []rune(name)
	if len(r) > maxLabelLength {
		return string(r[:maxLabelLength-2]) + "..."
	}
	return name
}
