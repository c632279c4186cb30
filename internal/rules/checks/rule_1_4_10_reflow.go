package checks

import (
	"context"
	"fmt"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// reflowViewport is 1280 CSS pixels at 400% zoom.
var reflowViewport = page.Viewport{Width: 320, Height: 256, DeviceScaleFactor: 1}

type ReflowRule struct {
	rules.Definition
}

func (r *ReflowRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	var errs []rules.ErrorRecord
	err := page.WithViewport(ctx, p, reflowViewport, func() error {
		doc, err := snapshot(ctx, p)
		if err != nil {
			return err
		}
		if !doc.Layout.Available {
			return nil
		}
		width := doc.Layout.ViewportWidth
		if doc.Layout.ScrollWidth > width*overflowTolerance {
			errs = append(errs, rules.PageError(fmt.Sprintf("Content requires horizontal scrolling at %.0f CSS pixels width", width)))
		}
		for _, n := range overflowingElements(doc, width) {
			errs = append(errs, rules.ElementError(n, fmt.Sprintf("Element extends beyond the %.0fpx viewport (right edge at %.0fpx)", width, n.Rect.Right())))
		}
		errs = rules.CaptureNow(ctx, p, errs)
		return nil
	})
	return errs, err
}

// overflowingElements returns the outermost visible elements whose box
// crosses the right edge of the viewport. Content inside horizontal scroll
// containers is allowed to overflow.
func overflowingElements(doc *dom.Document, width float64) []*dom.Node {
	var out []*dom.Node
	reported := make(map[*dom.Node]bool)
	for _, n := range doc.Elements() {
		if n.Is("html", "body") || !n.Visible() || !n.Rect.Valid() || n.Rect.Right() <= width+1 {
			continue
		}
		if n.Parent != nil && n.Parent.Closest(func(a *dom.Node) bool {
			return reported[a] || scrollsHorizontally(a)
		}) != nil {
			continue
		}
		reported[n] = true
		out = append(out, n)
	}
	return out
}

func scrollsHorizontally(n *dom.Node) bool {
	switch n.Style.Get("overflow-x") {
	case "auto", "scroll":
		return !n.Is("html", "body")
	}
	return false
}

func init() {
	rules.Register(&ReflowRule{rules.Definition{
		RuleID:    "1.4.10",
		Title:     "Reflow",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryPerceivable,
		Fix:       "Make the layout responsive down to 320 CSS pixels: replace fixed widths with `max-width`, let flex and grid items wrap, and put wide tables in a scroll container.",
		Capture:   rules.EvidenceFullPage,
	}})
}
