// Package colors samples the computed text colors of a loaded page.
package colors

import (
	"context"
	"fmt"

	"bitvcheck/internal/contrast"
	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
)

// Sample is the resolved text styling of one element.
type Sample struct {
	Element    *dom.Node
	Text       string
	Foreground string
	Background string
	FontSize   float64
	FontWeight int
}

// LargeText reports whether the sample counts as large text: at least
// 18px, or at least 14px in bold.
func (s Sample) LargeText() bool {
	return s.FontSize >= 18 || (s.FontSize >= 14 && s.FontWeight >= 700)
}

// Ratio returns the contrast ratio between foreground and background.
func (s Sample) Ratio() (float64, error) {
	return contrast.Ratio(s.Foreground, s.Background)
}

// Extract returns a sample for every visible element with non-empty trimmed
// text whose own background is an opaque, parseable color. Order is not
// significant.
func Extract(ctx context.Context, p page.Page) ([]Sample, error) {
	doc, err := p.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument applies Extract to an already captured document.
func FromDocument(doc *dom.Document) []Sample {
	var out []Sample
	for _, n := range doc.Elements() {
		text := n.TrimmedText()
		if text == "" || !n.Visible() {
			continue
		}
		bg, err := contrast.Parse(n.Style.Get("background-color"))
		if err != nil || bg.Transparent() {
			continue
		}
		out = append(out, Sample{
			Element:    n,
			Text:       text,
			Foreground: n.Style.Get("color"),
			Background: n.Style.Get("background-color"),
			FontSize:   n.Style.Px("font-size"),
			FontWeight: n.Style.FontWeight(),
		})
	}
	return out
}
