package checks

import (
	"context"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// overflowTolerance is the share by which content may exceed the viewport
// before horizontal scrolling is reported.
const overflowTolerance = 1.1

// zoomFor emulates 200% browser zoom of vp: the layout viewport halves in
// CSS pixels while the device scale doubles.
func zoomFor(vp page.Viewport) page.Viewport {
	dsf := vp.DeviceScaleFactor
	if dsf == 0 {
		dsf = 1
	}
	return page.Viewport{Width: vp.Width / 2, Height: vp.Height / 2, DeviceScaleFactor: dsf * 2}
}

type ResizeTextRule struct {
	rules.Definition
}

// Inspect measures the page at its current size first so that only
// overflow introduced by zooming is reported.
func (r *ResizeTextRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	base, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	zoom := zoomFor(p.Viewport())

	var errs []rules.ErrorRecord
	err = page.WithViewport(ctx, p, zoom, func() error {
		doc, err := snapshot(ctx, p)
		if err != nil {
			return err
		}
		if !doc.Layout.Available {
			return nil
		}
		if doc.Layout.ScrollWidth > zoomedContentWidth(base.Layout, doc.Layout)*overflowTolerance {
			errs = append(errs, rules.PageError("Horizontal scrolling required at 200% zoom"))
		}
		for _, n := range doc.ByTag("p", "div", "span", "a") {
			if clipsHorizontally(n) {
				errs = append(errs, rules.ElementError(n, "Text gets cut off at 200% zoom"))
			}
		}
		errs = rules.CaptureNow(ctx, p, errs)
		return nil
	})
	return errs, err
}

// zoomedContentWidth is the width in zoomed CSS pixels that content
// already occupied before zooming. Without a baseline it is the zoomed
// viewport itself.
func zoomedContentWidth(base, zoomed dom.Layout) float64 {
	if !base.Available {
		return zoomed.ViewportWidth
	}
	return max(base.ScrollWidth, base.ViewportWidth) / 2
}

func clipsHorizontally(n *dom.Node) bool {
	return n.Style.Get("overflow") == "hidden" && n.Scroll.ScrollWidth > n.Scroll.ClientWidth
}

func init() {
	rules.Register(&ResizeTextRule{rules.Definition{
		RuleID:    "1.4.4",
		Title:     "Resize Text (200%)",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryPerceivable,
		Fix:       "Use relative units and flexible containers so that text can be zoomed to 200% without clipping or horizontal scrolling. Avoid `overflow: hidden` on text containers with fixed sizes.",
		Capture:   rules.EvidenceFullPage,
	}})
}
