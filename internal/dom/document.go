package dom

import (
	"regexp"
	"strings"
)

// Layout describes the rendered viewport and document extents. It is zero
// for documents parsed without a rendering engine.
type Layout struct {
	Available         bool    `json:"available"`
	ViewportWidth     float64 `json:"viewportWidth"`
	ViewportHeight    float64 `json:"viewportHeight"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor"`
	ScrollWidth       float64 `json:"scrollWidth"`
	ScrollHeight      float64 `json:"scrollHeight"`
	BodyWidth         float64 `json:"bodyWidth"`
}

// Document is a snapshot of one page.
type Document struct {
	URL    string
	Title  string
	Root   *Node
	Layout Layout

	elements []*Node
}

// Elements returns every element in document order, starting with the root.
func (d *Document) Elements() []*Node {
	if d.elements == nil && d.Root != nil {
		d.Root.walk(func(n *Node) {
			d.elements = append(d.elements, n)
		})
	}
	return d.elements
}

// Filter returns the elements that satisfy match, in document order.
func (d *Document) Filter(match func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range d.Elements() {
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}

// ByTag returns the elements with one of the given tag names.
func (d *Document) ByTag(tags ...string) []*Node {
	return d.Filter(func(n *Node) bool { return n.Is(tags...) })
}

// First returns the first element satisfying match, or nil.
func (d *Document) First(match func(*Node) bool) *Node {
	for _, n := range d.Elements() {
		if match(n) {
			return n
		}
	}
	return nil
}

// Body returns the body element, or nil.
func (d *Document) Body() *Node {
	return d.First(func(n *Node) bool { return n.Tag == "body" })
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *Node {
	if id == "" {
		return nil
	}
	return d.First(func(n *Node) bool { return n.ID() == id })
}

var attrSelector = regexp.MustCompile(`^([a-z0-9]+)\[([a-z-]+)="((?:[^"\\]|\\.)*)"\]$`)

// QuerySelector resolves the locator forms produced by Node.Selector:
// "#id", "tag" and `tag[attr="value"]`.
func (d *Document) QuerySelector(sel string) *Node {
	sel = strings.TrimSpace(sel)
	switch {
	case sel == "":
		return nil
	case strings.HasPrefix(sel, "#"):
		return d.ByID(sel[1:])
	}
	if m := attrSelector.FindStringSubmatch(sel); m != nil {
		tag, attr := m[1], m[2]
		val := strings.ReplaceAll(m[3], `\"`, `"`)
		return d.First(func(n *Node) bool { return n.Tag == tag && n.Attr(attr) == val })
	}
	return d.First(func(n *Node) bool { return n.Tag == strings.ToLower(sel) })
}

// link wires parent pointers below n.
func link(n *Node) {
	for _, c := range n.Children {
		c.Parent = n
		link(c)
	}
}
