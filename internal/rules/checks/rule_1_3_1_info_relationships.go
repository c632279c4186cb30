package checks

import (
	"context"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// FormLabelRule checks that form fields expose a programmatic label.
type FormLabelRule struct {
	rules.Definition
}

func (r *FormLabelRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isFormField) {
		if !n.Visible() || hasLabel(n) {
			continue
		}
		errs = append(errs, rules.ElementError(n, "No programmatically determinable label"))
	}
	return errs, nil
}

func init() {
	rules.Register(&FormLabelRule{rules.Definition{
		RuleID:    "1.3.1",
		Title:     "Info and Relationships (Form Labels)",
		Level:     rules.SeverityCritical,
		Principle: rules.CategoryPerceivable,
		Fixable:   true,
		Fix:       "Associate each field with a `<label for=\"…\">`, wrap it in a `<label>`, or name it with `aria-label` / `aria-labelledby`.",
		Capture:   rules.EvidenceElement,
	}})
}
