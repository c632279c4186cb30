package checks

import (
	"context"
	"fmt"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type HeadingsLabelsRule struct {
	rules.Definition
}

// hasImageText reports an image descendant with alt text, which names the
// element it sits in.
func hasImageText(n *dom.Node) bool {
	return n.Has(func(c *dom.Node) bool {
		return c.Tag == "img" && strings.TrimSpace(c.Attr("alt")) != ""
	})
}

func (r *HeadingsLabelsRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(func(n *dom.Node) bool { return n.HeadingLevel() > 0 || n.Tag == "label" }) {
		if !n.Visible() || n.TrimmedText() != "" || hasImageText(n) {
			continue
		}
		if n.Tag == "label" {
			errs = append(errs, rules.ElementError(n, "Empty label"))
			continue
		}
		if strings.TrimSpace(n.Attr("aria-label")) != "" {
			continue
		}
		errs = append(errs, rules.ElementError(n, fmt.Sprintf("Empty heading (H%d)", n.HeadingLevel())))
	}
	return errs, nil
}

func init() {
	rules.Register(&HeadingsLabelsRule{rules.Definition{
		RuleID:    "2.4.6",
		Title:     "Headings and Labels",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryOperable,
		Fix:       "Remove empty headings used for spacing and give every `<label>` a visible text describing the field.",
		Capture:   rules.EvidenceElement,
	}})
}
