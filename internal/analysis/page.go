package analysis

import "github.com/olegrjumin/privacyparrot/internal/page"

// Page is the read-only view of a loaded page the detectors scan.
// *page.Snapshot implements it.
type Page interface {
	URL() string
	Hostname() string
	Scheme() string
	Title() string
	Cookies() string

	// Count returns the number of elements matching a CSS selector group
	Count(selector string) int
	Scripts() []page.Script
	FrameSources() []string
	Anchors() []page.Anchor
	References(selector string) []string
	ResolveHost(ref string) (string, error)

	Text() string
	BlockTexts(selector string) []string
	MainText(selectors []string) string
}

var _ Page = (*page.Snapshot)(nil)
