package checks

import (
	"context"
	"strconv"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type FocusVisibleRule struct {
	rules.Definition
}

// isFocusable matches native interactive elements and anything with a
// non-negative tabindex.
func isFocusable(n *dom.Node) bool {
	if v, ok := n.LookupAttr("tabindex"); ok {
		if idx, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return idx >= 0
		}
	}
	switch n.Tag {
	case "a":
		return n.HasAttr("href")
	case "input":
		return inputType(n) != "hidden"
	case "button", "select", "textarea", "summary":
		return true
	}
	return false
}

func (r *FocusVisibleRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isFocusable) {
		if !n.Visible() || isDisabled(n) || n.Focus.Visible() {
			continue
		}
		rec := rules.ElementError(n, "No visible focus indicator")
		rec.ManualCheckRequired = "The focus style was read from :focus rules without focusing the element. Confirm by tabbing through the page."
		errs = append(errs, rec)
	}
	return errs, nil
}

func init() {
	rules.Register(&FocusVisibleRule{rules.Definition{
		RuleID:    "2.4.7",
		Title:     "Focus Visible",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryOperable,
		Fixable:   true,
		Fix:       "Do not remove the focus outline. If the default is restyled, provide a clear replacement, e.g. `:focus-visible { outline: 3px solid #005fcc; }`.",
		Capture:   rules.EvidenceElement,
	}})
}
