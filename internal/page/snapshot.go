// Package page turns raw page content into a read-only snapshot the
// analysis engine can query: element counts, scripts, frames, links, text
// and the cookie string the page could see.
package page

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrInvalidURL is returned when the page URL has no scheme
var ErrInvalidURL = errors.New("invalid page URL")

// Script is a <script> element; Src is resolved against the page URL
type Script struct {
	Src    string `json:"src,omitempty"`
	Inline string `json:"inline,omitempty"`
}

// Anchor is an <a> element; Href is resolved against the page URL
type Anchor struct {
	Href string `json:"href,omitempty"`
	Text string `json:"text,omitempty"`
}

// Snapshot is an immutable view of one loaded page
type Snapshot struct {
	rawURL  string
	baseURL *url.URL
	cookies string
	doc     *goquery.Document
}

// FromHTML builds a snapshot from an HTML string
func FromHTML(pageURL, body, cookies string) (*Snapshot, error) {
	return Parse(pageURL, strings.NewReader(body), cookies)
}

// Parse builds a snapshot from an HTML stream
func Parse(pageURL string, body io.Reader, cookies string) (*Snapshot, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, ErrInvalidURL
	}
	u.Host = strings.ToLower(u.Host)

	root, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		rawURL:  pageURL,
		baseURL: u,
		cookies: cookies,
		doc:     goquery.NewDocumentFromNode(root),
	}, nil
}

// URL returns the page URL as given
func (s *Snapshot) URL() string {
	return s.rawURL
}

// Hostname returns the page's lowercased host without port
func (s *Snapshot) Hostname() string {
	return s.baseURL.Hostname()
}

// Scheme returns the page's URL scheme
func (s *Snapshot) Scheme() string {
	return s.baseURL.Scheme
}

// Title returns the trimmed <title> text
func (s *Snapshot) Title() string {
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}

// Cookies returns the raw cookie string visible to the page
func (s *Snapshot) Cookies() string {
	return s.cookies
}

// Count returns the number of elements matching a CSS selector group
func (s *Snapshot) Count(selector string) int {
	return s.doc.Find(selector).Length()
}

// Scripts returns all script elements in document order
func (s *Snapshot) Scripts() []Script {
	scripts := make([]Script, 0)
	s.doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		src := sel.AttrOr("src", "")
		if src == "" {
			scripts = append(scripts, Script{Inline: sel.Text()})
			return
		}
		scripts = append(scripts, Script{Src: s.resolve(src)})
	})
	return scripts
}

// FrameSources returns the resolved src of every iframe
func (s *Snapshot) FrameSources() []string {
	srcs := make([]string, 0)
	s.doc.Find("iframe").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			srcs = append(srcs, s.resolve(src))
			return
		}
		srcs = append(srcs, "")
	})
	return srcs
}

// Anchors returns every <a> element
func (s *Snapshot) Anchors() []Anchor {
	anchors := make([]Anchor, 0)
	s.doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		a := Anchor{Text: strings.TrimSpace(sel.Text())}
		if href, ok := sel.Attr("href"); ok {
			a.Href = s.resolve(href)
		}
		anchors = append(anchors, a)
	})
	return anchors
}

// References returns the raw href or src of every element matching the
// selector group, unresolved and in document order
func (s *Snapshot) References(selector string) []string {
	refs := make([]string, 0)
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		ref := sel.AttrOr("href", "")
		if ref == "" {
			ref = sel.AttrOr("src", "")
		}
		if ref != "" {
			refs = append(refs, ref)
		}
	})
	return refs
}

// Text returns the visible text of the body
func (s *Snapshot) Text() string {
	return visibleText(s.doc.Find("body"))
}

// BlockTexts returns the visible text of each element matching the selector
func (s *Snapshot) BlockTexts(selector string) []string {
	texts := make([]string, 0)
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		texts = append(texts, visibleText(sel))
	})
	return texts
}

// MainText returns the visible text of the first element matching one of
// the selectors, falling back to the body
func (s *Snapshot) MainText(selectors []string) string {
	for _, selector := range selectors {
		if sel := s.doc.Find(selector); sel.Length() > 0 {
			return visibleText(sel.First())
		}
	}
	return s.Text()
}

// ResolveHost resolves a reference against the page URL and returns its
// lowercased hostname
func (s *Snapshot) ResolveHost(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return strings.ToLower(s.baseURL.ResolveReference(u).Hostname()), nil
}

// resolve resolves a potentially relative URL to absolute, lowercasing the
// host as a browser does
func (s *Snapshot) resolve(ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	abs := s.baseURL.ResolveReference(u)
	abs.Host = strings.ToLower(abs.Host)
	return abs.String()
}

// visibleText collects text nodes, skipping content a browser never renders
func visibleText(sel *goquery.Selection) string {
	var text strings.Builder

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	for _, n := range sel.Nodes {
		extract(n)
	}
	return text.String()
}
