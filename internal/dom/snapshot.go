package dom

import (
	"encoding/json"
	"errors"
	"fmt"
)

// wireNode is the JSON shape emitted by the browser collector script.
// Text nodes carry only T.
type wireNode struct {
	Tag      string      `json:"tag,omitempty"`
	T        string      `json:"t,omitempty"`
	Attrs    [][2]string `json:"attrs,omitempty"`
	Style    Style       `json:"style,omitempty"`
	Focus    *FocusStyle `json:"focus,omitempty"`
	Rect     Rect        `json:"rect"`
	Scroll   Scroll      `json:"scroll"`
	Labels   int         `json:"labels,omitempty"`
	HTML     string      `json:"html,omitempty"`
	Children []wireNode  `json:"children,omitempty"`
}

type wireDocument struct {
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	Layout Layout    `json:"layout"`
	Root   *wireNode `json:"root"`
}

// FromSnapshot decodes a collector snapshot into a Document.
func FromSnapshot(data []byte) (*Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if w.Root == nil || w.Root.Tag == "" {
		return nil, errors.New("decode snapshot: missing root element")
	}
	doc := &Document{
		URL:    w.URL,
		Title:  w.Title,
		Layout: w.Layout,
		Root:   fromWire(w.Root),
	}
	doc.Layout.Available = true
	link(doc.Root)
	return doc, nil
}

func fromWire(w *wireNode) *Node {
	if w.Tag == "" {
		return &Node{Data: w.T}
	}
	n := &Node{
		Tag:     w.Tag,
		Style:   w.Style,
		Rect:    w.Rect,
		Scroll:  w.Scroll,
		Labels:  w.Labels,
		Snippet: w.HTML,
	}
	if n.Style == nil {
		n.Style = Style{}
	}
	if w.Focus != nil {
		n.Focus = *w.Focus
	}
	for _, a := range w.Attrs {
		n.Attrs = append(n.Attrs, Attr{Name: a[0], Value: a[1]})
	}
	for i := range w.Children {
		n.Children = append(n.Children, fromWire(&w.Children[i]))
	}
	return n
}
