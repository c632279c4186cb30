package checks

import (
	"context"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type MeaningfulSequenceRule struct {
	rules.Definition
}

func (r *MeaningfulSequenceRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Elements() {
		pos := n.Style.Get("position")
		if pos != "absolute" && pos != "fixed" {
			continue
		}
		z := n.Style.Get("z-index")
		if z == "" || z == "auto" {
			continue
		}
		if n.Is("a", "button") || n.HasAttr("onclick") || n.Role() == "button" {
			errs = append(errs, rules.ElementError(n, "Positioned interactive element could interfere with reading order"))
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&MeaningfulSequenceRule{rules.Definition{
		RuleID:    "1.3.2",
		Title:     "Meaningful Sequence",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryPerceivable,
		Fix:       "Keep interactive elements in the document flow, or place them in the DOM where they appear visually so reading and focus order match.",
		Capture:   rules.EvidenceFirstFullPage,
	}})
}
