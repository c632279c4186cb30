package checks

import (
	"context"
	"fmt"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type ParsingRule struct {
	rules.Definition
}

func (r *ParsingRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	counts := make(map[string]int)
	for _, n := range doc.Elements() {
		if id := n.ID(); id != "" {
			counts[id]++
		}
	}
	// Every element carrying a duplicated id is reported.
	for _, n := range doc.Elements() {
		id := n.ID()
		if id == "" || counts[id] < 2 {
			continue
		}
		rec := rules.ElementError(n, fmt.Sprintf("Duplicate ID attribute: %s", id))
		rec.Text = id
		errs = append(errs, rec)
	}

	for _, b := range doc.ByTag("button") {
		if b.Has(func(c *dom.Node) bool { return c.Is("div", "p", "ul", "ol") }) {
			errs = append(errs, rules.ElementError(b, "Invalid child elements in button"))
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&ParsingRule{rules.Definition{
		RuleID:    "4.1.1",
		Title:     "Parsing",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryRobust,
		Fixable:   true,
		Fix:       "Make every `id` unique and keep only phrasing content (text, `<span>`, `<img>`) inside `<button>`.",
		Capture:   rules.EvidenceElement,
	}})
}
