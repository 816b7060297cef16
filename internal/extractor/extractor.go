package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Element names whose text content is never user-visible.
// Text inside these is markup plumbing, not page content.
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"iframe":   true,
	"svg":      true,
}

// Extractor converts raw HTML into the plain visible text stored in the
// training dataset.
//
// Design decision: golang.org/x/net/html (via goquery) for parsing rather
// than regex because it correctly handles the malformed HTML common on the
// web and gives a proper DOM to walk. The regex path exists only as a
// fallback for input the parser rejects outright.
type Extractor struct {
	maxChars int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxChars caps extracted text at n runes. 0 means unbounded.
func WithMaxChars(n int) Option {
	return func(e *Extractor) {
		e.maxChars = n
	}
}

// New creates an Extractor. Without options the output is unbounded.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text extracts the visible text from an HTML document.
//
// The result is Unicode-normalized (NFC), whitespace-collapsed, and
// truncated to the configured rune cap. Extraction is idempotent: running
// the output through Text again returns it unchanged, because plain text
// parses as a single text node and the cleanup steps are fixpoints.
func (e *Extractor) Text(source string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return e.clean(stripTags(source))
	}

	var b strings.Builder
	for _, root := range doc.Nodes {
		visibleText(root, &b)
	}
	return e.clean(b.String())
}

// clean applies the normalization pipeline shared by both extraction paths.
func (e *Extractor) clean(s string) string {
	s = collapseWhitespace(s)
	s = norm.NFC.String(s)
	return Truncate(s, e.maxChars)
}

// visibleText walks the DOM and accumulates text nodes, skipping subtrees
// that never render as text.
func visibleText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && invisibleElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, b)
	}
}

// tagRegex matches HTML tags for the fallback stripper.
var tagRegex = regexp.MustCompile(`<[^>]+>`)

// stripTags is the last-resort extraction path: drop everything that looks
// like a tag and unescape entities. It cannot distinguish script bodies
// from content, so it only runs when real parsing failed.
func stripTags(source string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(source, " "))
}

// collapseWhitespace replaces every run of Unicode whitespace with a single
// space and trims the ends. Newlines and tabs carry no meaning once the
// text is detached from its layout.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps s at max runes. A max of 0 or less means no cap.
// Cutting happens on rune boundaries so multi-byte characters are never
// split into invalid UTF-8.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
