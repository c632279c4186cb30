package checks

import (
	"context"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type ErrorIdentificationRule struct {
	rules.Definition
}

func isRequired(n *dom.Node) bool {
	return n.HasAttr("required")
}

func inForm(n *dom.Node) bool {
	return n.Parent != nil && n.Parent.Closest(func(e *dom.Node) bool { return e.Tag == "form" }) != nil
}

func hasValidation(n *dom.Node) bool {
	return hasAnyAttr(n, "pattern", "minlength", "maxlength", "min", "max", "aria-invalid", "aria-errormessage")
}

func (r *ErrorIdentificationRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isDataField) {
		if !inForm(n) || !isRequired(n) || hasValidation(n) || inSearchOrNewsletter(n) {
			continue
		}
		errs = append(errs, rules.ElementError(n, "Required field without validation attributes"))
	}
	return errs, nil
}

func init() {
	rules.Register(&ErrorIdentificationRule{rules.Definition{
		RuleID:    "3.3.1",
		Title:     "Error Identification",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryUnderstandable,
		Fix:       "Validate required fields and expose failures with `aria-invalid=\"true\"` and an `aria-errormessage` or `aria-describedby` pointing to the error text.",
		Capture:   rules.EvidenceElementOnly,
	}})
}
