// Package htmldoc is a tableview.Element provider backed by a parsed HTML
// document.
package htmldoc

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/salmonumbrella/tablecheck/internal/tableview"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

type parseOptions struct {
	sanitize bool
}

// Option configures Parse.
type Option func(*parseOptions)

// WithSanitize strips scripts, styles and other active content before
// parsing. Table markup and id/class attributes are kept so selectors still
// work.
func WithSanitize() Option {
	return func(o *parseOptions) {
		o.sanitize = true
	}
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.sanitize {
		r = sanitizePolicy().SanitizeReader(r)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{root: root}, nil
}

func sanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class").Globally()
	p.AllowAttrs("colspan", "rowspan", "scope").OnElements("td", "th")
	return p
}

// Root returns the document node.
func (d *Document) Root() *Element {
	return &Element{node: d.root}
}

// Select returns the first element matching the CSS selector.
func (d *Document) Select(selector string) (*Element, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	sel := goquery.NewDocumentFromNode(d.root).FindMatcher(matcher).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("selector %q: %w", selector, tableview.ErrNoSuchElement)
	}
	return &Element{node: sel.Get(0)}, nil
}

// SelectXPath returns the first element matching the XPath expression.
func (d *Document) SelectXPath(expr string) (*Element, error) {
	node, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	if node == nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, tableview.ErrNoSuchElement)
	}
	return &Element{node: node}, nil
}

// Count returns how many elements match the CSS selector.
func (d *Document) Count(selector string) (int, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return 0, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return goquery.NewDocumentFromNode(d.root).FindMatcher(matcher).Length(), nil
}
