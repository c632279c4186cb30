package checks

import (
	"context"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type LabelsInstructionsRule struct {
	rules.Definition
}

// isImportantField matches required fields and contact fields (email, tel).
func isImportantField(n *dom.Node) bool {
	if !isDataField(n) {
		return false
	}
	if isRequired(n) {
		return true
	}
	if n.Tag == "input" {
		t := inputType(n)
		return t == "email" || t == "tel"
	}
	return false
}

func (r *LabelsInstructionsRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isImportantField) {
		if hasLabel(n) || inSearchOrNewsletter(n) {
			continue
		}
		if strings.TrimSpace(n.Attr("title")) == "" {
			errs = append(errs, rules.ElementError(n, "Important form element without label"))
		}
		if isRequired(n) && strings.TrimSpace(n.Attr("placeholder")) != "" {
			rec := rules.ElementError(n, "Required field uses only placeholder as label")
			rec.Text = n.Attr("placeholder")
			errs = append(errs, rec)
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&LabelsInstructionsRule{rules.Definition{
		RuleID:    "3.3.2",
		Title:     "Labels or Instructions",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryUnderstandable,
		Fixable:   true,
		Fix:       "Give required and contact fields a visible `<label>`. A placeholder disappears on input and is no substitute.",
		Capture:   rules.EvidenceElementOnly,
	}})
}
