package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// SnippetLength bounds Node.Snippet.
const SnippetLength = 100

var labelable = map[string]bool{
	"input": true, "select": true, "textarea": true, "button": true,
	"meter": true, "output": true, "progress": true,
}

// Parse builds a Document from raw HTML. Styles are resolved from tag
// defaults and inline style attributes only; there is no layout.
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var htmlEl *html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "html" {
			htmlEl = c
			break
		}
	}
	if htmlEl == nil {
		return nil, errors.New("parse html: no root element")
	}

	doc := &Document{URL: url, Root: convert(htmlEl)}
	link(doc.Root)
	resolveStyles(doc.Root, rootStyle)
	countLabels(doc)

	if t := doc.First(func(n *Node) bool { return n.Tag == "title" }); t != nil {
		doc.Title = t.NormalizedText()
	}
	return doc, nil
}

func convert(h *html.Node) *Node {
	n := &Node{Tag: strings.ToLower(h.Data), Snippet: snippet(h)}
	for _, a := range h.Attr {
		n.Attrs = append(n.Attrs, Attr{Name: strings.ToLower(a.Key), Value: a.Val})
	}
	skipText := n.Is("script", "style", "template", "noscript")
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n.Children = append(n.Children, convert(c))
		case html.TextNode:
			if !skipText {
				n.Children = append(n.Children, &Node{Data: c.Data})
			}
		}
	}
	return n
}

func resolveStyles(n *Node, parent Style) {
	n.Style = computeStyle(n, parent)
	n.Focus = focusFromInline(n)
	for _, c := range n.Children {
		if c.IsElement() {
			resolveStyles(c, n.Style)
		}
	}
}

// countLabels mirrors HTMLInputElement.labels: explicit label[for] plus an
// enclosing label that does not point elsewhere.
func countLabels(doc *Document) {
	byFor := make(map[string]int)
	for _, l := range doc.ByTag("label") {
		if f := l.Attr("for"); f != "" {
			byFor[f]++
		}
	}
	for _, n := range doc.Elements() {
		if !labelable[n.Tag] {
			continue
		}
		if n.Tag == "input" && strings.EqualFold(n.Attr("type"), "hidden") {
			continue
		}
		id := n.ID()
		count := 0
		if id != "" {
			count = byFor[id]
		}
		if p := n.Parent; p != nil {
			// A wrapping label[for=id] is already counted above.
			if l := p.Closest(func(e *Node) bool { return e.Tag == "label" }); l != nil && l.Attr("for") == "" {
				count++
			}
		}
		n.Labels = count
	}
}

var errSnippetFull = errors.New("snippet full")

type limitWriter struct {
	b     strings.Builder
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	room := w.limit - w.b.Len()
	if room <= 0 {
		return 0, errSnippetFull
	}
	if len(p) > room {
		w.b.Write(p[:room])
		return room, errSnippetFull
	}
	return w.b.Write(p)
}

// snippet renders at most SnippetLength bytes of the element's markup.
func snippet(h *html.Node) string {
	w := &limitWriter{limit: SnippetLength}
	_ = html.Render(w, h)
	s := w.b.String()
	for !utf8.ValidString(s) && len(s) > 0 {
		s = s[:len(s)-1]
	}
	return s
}
