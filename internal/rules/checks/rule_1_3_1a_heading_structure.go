package checks

import (
	"context"
	"fmt"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type HeadingStructureRule struct {
	rules.Definition
}

func (r *HeadingStructureRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	lastLevel := 0
	for _, h := range doc.Filter(func(n *dom.Node) bool { return n.HeadingLevel() > 0 }) {
		level := h.HeadingLevel()
		if lastLevel != 0 && level > lastLevel+1 {
			errs = append(errs, rules.ElementError(h, fmt.Sprintf("Skipped heading level: H%d to H%d", lastLevel, level)))
		}
		// Updated unconditionally so one skip is reported once.
		lastLevel = level
	}
	return errs, nil
}

func init() {
	rules.Register(&HeadingStructureRule{rules.Definition{
		RuleID:    "1.3.1a",
		Title:     "Info and Relationships (Heading Structure)",
		Level:     rules.SeverityCritical,
		Principle: rules.CategoryPerceivable,
		Fix:       "Nest headings without gaps: an `<h2>` follows an `<h1>`, an `<h3>` follows an `<h2>`. Use CSS, not heading levels, to change text size.",
		Capture:   rules.EvidenceElement,
	}})
}
