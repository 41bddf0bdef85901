package tableview

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// fakeNode is an in-memory element tree used in place of a real document.
type fakeNode struct {
	tag      string
	text     string
	children []*fakeNode
	// pathErr, when set, is returned by FindPath instead of resolving.
	pathErr error
}

func (n *fakeNode) Text() string {
	if len(n.children) == 0 {
		return n.text
	}
	parts := make([]string, 0, len(n.children))
	for _, c := range n.children {
		if t := c.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (n *fakeNode) FindAll(tag string) ([]Element, error) {
	var out []Element
	var walk func(*fakeNode)
	walk = func(p *fakeNode) {
		for _, c := range p.children {
			if c.tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out, nil
}

func (n *fakeNode) Find(tag string) (Element, error) {
	all, _ := n.FindAll(tag)
	if len(all) == 0 {
		return nil, fmt.Errorf("%s: %w", tag, ErrNoSuchElement)
	}
	return all[0], nil
}

func (n *fakeNode) FindPath(path string) (Element, error) {
	if n.pathErr != nil {
		return nil, n.pathErr
	}
	cur := n
	for _, step := range strings.Split(path, "/") {
		tag, pos, err := parseStep(step)
		if err != nil {
			return nil, err
		}
		var next *fakeNode
		seen := 0
		for _, c := range cur.children {
			if c.tag != tag {
				continue
			}
			seen++
			if seen == pos {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%s: %w", path, ErrNoSuchElement)
		}
		cur = next
	}
	return cur, nil
}

func parseStep(step string) (string, int, error) {
	open := strings.IndexByte(step, '[')
	if open < 0 || !strings.HasSuffix(step, "]") {
		return "", 0, fmt.Errorf("bad path step %q", step)
	}
	pos, err := strconv.Atoi(step[open+1 : len(step)-1])
	if err != nil {
		return "", 0, fmt.Errorf("bad path step %q: %w", step, err)
	}
	return step[:open], pos, nil
}

func el(tag, text string, children ...*fakeNode) *fakeNode {
	return &fakeNode{tag: tag, text: text, children: children}
}

func bodyRow(cells ...string) *fakeNode {
	tr := el("tr", "")
	for _, c := range cells {
		tr.children = append(tr.children, el("td", c))
	}
	return tr
}

// buildTable returns a table node with a thead header row and a tbody.
func buildTable(headers []string, rows [][]string) *fakeNode {
	head := el("tr", "")
	for _, h := range headers {
		head.children = append(head.children, el("th", h))
	}
	body := el("tbody", "")
	for _, r := range rows {
		body.children = append(body.children, bodyRow(r...))
	}
	return el("table", "", el("thead", "", head), body)
}

func tbodyOf(table *fakeNode) *fakeNode {
	for _, c := range table.children {
		if c.tag == "tbody" {
			return c
		}
	}
	return nil
}

var errProvider = errors.New("provider unavailable")

var customers = [][]string{
	{"Alfreds Futterkiste", "Maria Anders", "Germany"},
	{"Berglunds snabbköp", "Christina Berglund", "Sweden"},
	{"Centro comercial Moctezuma", "Francisco Chang", "Mexico"},
	{"Ernst Handel", "Roland Mendel", "Austria"},
	{"Island Trading", "Helen Bennett", "UK"},
	{"Königlich Essen", "Philip Cramer", "Germany"},
	{"Laughing Bacchus Winecellars", "Yoshi Tannamuri", "Canada"},
	{"Magazzini Alimentari Riuniti", "Giovanni Rovelli", "Italy"},
	{"North/South", "Simon Crowther", "UK"},
	{"Paris spécialités", "Marie Bertrand", "France"},
	{"The Big Cheese", "Liz Nixon", "USA"},
	{"Vaffeljernet", "Palle Ibsen", "Denmark"},
}

func customersTable() *fakeNode {
	return buildTable([]string{"Company", " Contact ", "Country"}, customers)
}
