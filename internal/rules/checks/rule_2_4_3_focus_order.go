package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type FocusOrderRule struct {
	rules.Definition
}

func (r *FocusOrderRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Elements() {
		v, ok := n.LookupAttr("tabindex")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || idx <= 0 {
			continue
		}
		errs = append(errs, rules.ElementError(n, fmt.Sprintf("Positive tabindex (%d) overrides the natural focus order", idx)))
	}
	return errs, nil
}

func init() {
	rules.Register(&FocusOrderRule{rules.Definition{
		RuleID:    "2.4.3",
		Title:     "Focus Order",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryOperable,
		Fixable:   true,
		Fix:       "Remove positive `tabindex` values and order the DOM the way it should be navigated. Use `tabindex=\"0\"` to make custom controls focusable.",
		Capture:   rules.EvidenceElement,
	}})
}
