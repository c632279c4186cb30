package checks

import (
	"context"
	"fmt"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type LabelInNameRule struct {
	rules.Definition
}

func isNamedControl(n *dom.Node) bool {
	if !n.HasAttr("aria-label") {
		return false
	}
	if n.Is("a", "button") {
		return true
	}
	role := n.Role()
	return role == "button" || role == "link"
}

func (r *LabelInNameRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isNamedControl) {
		visible := n.NormalizedText()
		name := strings.Join(strings.Fields(n.Attr("aria-label")), " ")
		if visible == "" || name == "" || !n.Visible() {
			continue
		}
		if strings.Contains(strings.ToLower(name), strings.ToLower(visible)) {
			continue
		}
		rec := rules.ElementError(n, fmt.Sprintf("Accessible name %q does not contain the visible label %q", truncate(name, 80), truncate(visible, 80)))
		rec.Text = visible
		errs = append(errs, rec)
	}
	return errs, nil
}

func init() {
	rules.Register(&LabelInNameRule{rules.Definition{
		RuleID:    "2.5.3",
		Title:     "Label in Name",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryOperable,
		Fixable:   true,
		Fix:       "Start the `aria-label` with the visible text, or drop the `aria-label` so the visible text becomes the name.",
		Capture:   rules.EvidenceElement,
	}})
}
