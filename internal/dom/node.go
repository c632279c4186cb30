// Package dom holds a read-only element tree of a rendered page together
// with the computed styles and layout boxes the accessibility rules inspect.
//
// Trees come from two places: Parse builds one from raw HTML, resolving a
// small subset of CSS from inline style attributes, and FromSnapshot decodes
// the tree a live browser collected with real computed styles.
package dom

import (
	"fmt"
	"strings"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Rect is a document-relative layout box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the box has a positive area.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Scroll holds the scroll and client extents of an element.
type Scroll struct {
	ScrollWidth  float64 `json:"sw"`
	ClientWidth  float64 `json:"cw"`
	ScrollHeight float64 `json:"sh"`
	ClientHeight float64 `json:"ch"`
}

// FocusStyle is the outline and box-shadow an element resolves to while focused.
type FocusStyle struct {
	Outline   string `json:"outline"`
	BoxShadow string `json:"boxShadow"`
}

// Visible reports whether the focus state draws an indicator.
func (f FocusStyle) Visible() bool {
	return !isNone(f.Outline) || !isNone(f.BoxShadow)
}

func isNone(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "" || v == "none" || v == "0" || v == "0px"
}

// Node is an element or a text node. Text nodes have an empty Tag.
type Node struct {
	Tag      string
	Data     string
	Attrs    []Attr
	Style    Style
	Focus    FocusStyle
	Rect     Rect
	Scroll   Scroll
	Labels   int
	Snippet  string
	Parent   *Node
	Children []*Node

	text *string
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Tag != ""
}

// LookupAttr returns the attribute value and whether it is present.
func (n *Node) LookupAttr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the attribute value or the empty string.
func (n *Node) Attr(name string) string {
	v, _ := n.LookupAttr(name)
	return v
}

// HasAttr reports whether the attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.LookupAttr(name)
	return ok
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return strings.TrimSpace(n.Attr("id"))
}

// Role returns the lower-cased role attribute.
func (n *Node) Role() string {
	return strings.ToLower(strings.TrimSpace(n.Attr("role")))
}

// Is reports whether the element has one of the given tag names.
func (n *Node) Is(tags ...string) bool {
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of n and its descendants.
func (n *Node) Text() string {
	if n.Tag == "" {
		return n.Data
	}
	if n.text != nil {
		return *n.text
	}
	var b strings.Builder
	n.writeText(&b)
	s := b.String()
	n.text = &s
	return s
}

func (n *Node) writeText(b *strings.Builder) {
	for _, c := range n.Children {
		if c.Tag == "" {
			b.WriteString(c.Data)
			continue
		}
		c.writeText(b)
	}
}

// TrimmedText returns the text content with surrounding whitespace removed.
func (n *Node) TrimmedText() string {
	return strings.TrimSpace(n.Text())
}

// NormalizedText returns the text content with whitespace runs collapsed.
func (n *Node) NormalizedText() string {
	return strings.Join(strings.Fields(n.Text()), " ")
}

// Closest returns the nearest element, starting with n itself, that
// satisfies match.
func (n *Node) Closest(match func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.IsElement() && match(cur) {
			return cur
		}
	}
	return nil
}

// Find returns every descendant element (excluding n) that satisfies match,
// in document order.
func (n *Node) Find(match func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.walk(func(e *Node) {
			if match(e) {
				out = append(out, e)
			}
		})
	}
	return out
}

// Has reports whether any descendant element satisfies match.
func (n *Node) Has(match func(*Node) bool) bool {
	return len(n.Find(match)) > 0
}

func (n *Node) walk(fn func(*Node)) {
	if !n.IsElement() {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Visible reports whether the element is rendered: neither it nor an
// ancestor has display:none, and it is not visibility:hidden.
func (n *Node) Visible() bool {
	if v := n.Style.Get("visibility"); v == "hidden" || v == "collapse" {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.IsElement() && cur.Style.Get("display") == "none" {
			return false
		}
	}
	return true
}

// Selector returns a best-effort CSS locator for the element. It is used
// for evidence capture only and is neither unique nor stable.
func (n *Node) Selector() string {
	if id := n.ID(); id != "" && !strings.ContainsAny(id, " \"'#.[]") {
		return "#" + id
	}
	switch {
	case n.Tag == "img" && n.Attr("src") != "":
		return fmt.Sprintf("img[src=%q]", n.Attr("src"))
	case n.Tag == "a" && n.Attr("href") != "":
		return fmt.Sprintf("a[href=%q]", n.Attr("href"))
	case n.Attr("name") != "":
		return fmt.Sprintf("%s[name=%q]", n.Tag, n.Attr("name"))
	}
	if n.Tag == "" {
		return "body"
	}
	return n.Tag
}

// HeadingLevel returns 1-6 for h1-h6 and 0 otherwise.
func (n *Node) HeadingLevel() int {
	if len(n.Tag) == 2 && n.Tag[0] == 'h' && n.Tag[1] >= '1' && n.Tag[1] <= '6' {
		return int(n.Tag[1] - '0')
	}
	return 0
}
