package checks

import (
	"context"
	"fmt"

	"bitvcheck/internal/contrast"
	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

const nonTextRatio = 3.0

var controlRoles = map[string]bool{
	"button": true, "checkbox": true, "radio": true, "switch": true,
	"slider": true, "tab": true, "textbox": true, "combobox": true,
}

type NonTextContrastRule struct {
	rules.Definition
}

func isControl(n *dom.Node) bool {
	return n.Is("button", "select", "textarea") || (n.Tag == "input" && inputType(n) != "hidden") || controlRoles[n.Role()]
}

func (r *NonTextContrastRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isControl) {
		if !n.Visible() || isDisabled(n) {
			continue
		}
		backdrop := n.Backdrop()
		bg, err := contrast.Parse(backdrop)
		if err != nil {
			continue
		}

		// A control needs one boundary, its fill or its border, that stands
		// out from what is behind it.
		var indicators []contrast.Color
		if fill, err := contrast.Parse(n.Style.Get("background-color")); err == nil && !fill.Transparent() {
			indicators = append(indicators, fill)
		}
		if hasBorder(n) {
			if border, err := contrast.Parse(n.Style.Get("border-top-color")); err == nil && !border.Transparent() {
				indicators = append(indicators, border)
			}
		}
		if len(indicators) == 0 {
			continue
		}

		best, bestRatio := indicators[0], 0.0
		for _, c := range indicators {
			if ratio := contrast.RatioOf(c, bg); ratio > bestRatio {
				best, bestRatio = c, ratio
			}
		}
		if bestRatio >= nonTextRatio {
			continue
		}
		rec := rules.ElementError(n, fmt.Sprintf("Control boundary contrast too low: %.2f < 3", bestRatio))
		rec.ForegroundColor = best.String()
		rec.BackgroundColor = backdrop
		errs = append(errs, rec)
	}
	return errs, nil
}

func hasBorder(n *dom.Node) bool {
	switch n.Style.Get("border-top-style") {
	case "", "none", "hidden":
		return false
	}
	return n.Style.Px("border-top-width") > 0
}

func init() {
	rules.Register(&NonTextContrastRule{rules.Definition{
		RuleID:    "1.4.11",
		Title:     "Non-text Contrast",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryPerceivable,
		Fixable:   true,
		Fix:       "Give controls a border or fill with at least **3:1** contrast against the surrounding background.",
		Capture:   rules.EvidenceElement,
	}})
}
