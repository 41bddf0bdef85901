package htmldoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/salmonumbrella/tablecheck/internal/tableview"
)

var tagPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// Element wraps an HTML node.
type Element struct {
	node *html.Node
}

var _ tableview.Element = (*Element)(nil)

// Attr returns the value of the named attribute, or "" if unset.
func (e *Element) Attr(name string) string {
	return htmlquery.SelectAttr(e.node, name)
}

// Text returns the element's text as a browser would render it.
func (e *Element) Text() string {
	return renderText(e.node)
}

// FindAll returns every descendant with the given tag name.
func (e *Element) FindAll(tag string) ([]tableview.Element, error) {
	if !tagPattern.MatchString(tag) {
		return nil, fmt.Errorf("invalid tag name %q", tag)
	}

	nodes, err := htmlquery.QueryAll(e.node, ".//"+strings.ToLower(tag))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", tag, err)
	}

	out := make([]tableview.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{node: n}
	}
	return out, nil
}

// Find returns the first descendant with the given tag name.
func (e *Element) Find(tag string) (tableview.Element, error) {
	if !tagPattern.MatchString(tag) {
		return nil, fmt.Errorf("invalid tag name %q", tag)
	}
	return e.query(".//" + strings.ToLower(tag))
}

// FindPath evaluates path as an XPath expression relative to e.
func (e *Element) FindPath(path string) (tableview.Element, error) {
	return e.query(path)
}

func (e *Element) query(expr string) (tableview.Element, error) {
	node, err := htmlquery.Query(e.node, expr)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expr, err)
	}
	if node == nil {
		return nil, fmt.Errorf("%s: %w", expr, tableview.ErrNoSuchElement)
	}
	return &Element{node: node}, nil
}

// Elements whose content is never rendered.
var hiddenElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Head:     true,
}

// Elements that start on their own line or cell.
var breakingElements = map[atom.Atom]bool{
	atom.Td:         true,
	atom.Th:         true,
	atom.Tr:         true,
	atom.Thead:      true,
	atom.Tbody:      true,
	atom.Tfoot:      true,
	atom.Table:      true,
	atom.Caption:    true,
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Blockquote: true,
	atom.Pre:        true,
}

// renderText concatenates the text under n. Cells and blocks are separated
// by a space and <br> by a newline; runs of other whitespace (including
// &nbsp;) collapse to one space on each line.
func renderText(n *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(sourceBreaks.Replace(n.Data))
			return
		case html.CommentNode, html.DoctypeNode:
			return
		case html.ElementNode:
			if hiddenElements[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				b.WriteByte('\n')
				return
			}
		}

		breaking := n.Type == html.ElementNode && breakingElements[n.DataAtom]
		if breaking {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if breaking {
			b.WriteByte(' ')
		}
	}
	walk(n)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// Line breaks in the markup itself are plain whitespace.
var sourceBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
