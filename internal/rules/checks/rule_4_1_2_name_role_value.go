package checks

import (
	"context"
	"fmt"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type NameRoleValueRule struct {
	rules.Definition
}

func hasAccessibleName(n *dom.Node) bool {
	return strings.TrimSpace(n.Attr("aria-label")) != "" ||
		strings.TrimSpace(n.Attr("aria-labelledby")) != "" ||
		n.TrimmedText() != ""
}

func (r *NameRoleValueRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Elements() {
		role := n.Role()
		if role == "" || hasAccessibleName(n) {
			continue
		}
		errs = append(errs, rules.ElementError(n, fmt.Sprintf("Custom control without accessible name (role=%q)", role)))
	}
	return errs, nil
}

func init() {
	rules.Register(&NameRoleValueRule{rules.Definition{
		RuleID:    "4.1.2",
		Title:     "Name, Role, Value",
		Level:     rules.SeverityCritical,
		Principle: rules.CategoryRobust,
		Fixable:   true,
		Fix:       "Name every element with an ARIA `role` through visible text, `aria-label` or `aria-labelledby`. Prefer native elements where one exists.",
		Capture:   rules.EvidenceFullPage,
	}})
}
