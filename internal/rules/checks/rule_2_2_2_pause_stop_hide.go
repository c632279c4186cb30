package checks

import (
	"context"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type PauseStopHideRule struct {
	rules.Definition
}

func isMoving(n *dom.Node) bool {
	if n.Tag == "marquee" {
		return true
	}
	style := strings.ToLower(n.Attr("style"))
	return strings.Contains(style, "animation") || strings.Contains(style, "transition")
}

func hasPauseControl(n *dom.Node) bool {
	if n.HasAttr("aria-controls") {
		return true
	}
	return n.Has(func(c *dom.Node) bool {
		if c.Tag != "button" {
			return false
		}
		label := strings.ToLower(c.Attr("aria-label"))
		return strings.Contains(label, "pause") || strings.Contains(label, "stop")
	})
}

func (r *PauseStopHideRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isMoving) {
		if !hasPauseControl(n) {
			errs = append(errs, rules.ElementError(n, "No mechanism to pause or stop moving content"))
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&PauseStopHideRule{rules.Definition{
		RuleID:    "2.2.2",
		Title:     "Pause, Stop, Hide",
		Level:     rules.SeverityCritical,
		Principle: rules.CategoryOperable,
		Fix:       "Offer a pause or stop button (for example `<button aria-label=\"Pause animation\">`) for content that moves for more than five seconds, and replace `<marquee>`.",
		Capture:   rules.EvidenceElement,
	}})
}
