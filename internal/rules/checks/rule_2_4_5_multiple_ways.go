package checks

import (
	"context"
	"fmt"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type MultipleWaysRule struct {
	rules.Definition
}

func isSearch(n *dom.Node) bool {
	return (n.Tag == "form" && n.Role() == "search") || n.Role() == "search" ||
		(n.Tag == "input" && inputType(n) == "search")
}

func isSitemapLink(n *dom.Node) bool {
	if n.Tag != "a" {
		return false
	}
	s := strings.ToLower(n.Attr("href") + " " + n.Text())
	return strings.Contains(s, "sitemap") || strings.Contains(s, "seitenübersicht")
}

func (r *MultipleWaysRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var found []string
	if doc.First(func(n *dom.Node) bool { return n.Tag == "nav" || n.Role() == "navigation" }) != nil {
		found = append(found, "navigation")
	}
	if doc.First(isSearch) != nil {
		found = append(found, "search")
	}
	if doc.First(isSitemapLink) != nil {
		found = append(found, "sitemap")
	}
	if len(found) >= 2 {
		return nil, nil
	}
	what := "none"
	if len(found) > 0 {
		what = strings.Join(found, ", ")
	}
	return []rules.ErrorRecord{rules.PageError(fmt.Sprintf("Fewer than two ways to navigate found: %s", what))}, nil
}

func init() {
	rules.Register(&MultipleWaysRule{rules.Definition{
		RuleID:    "2.4.5",
		Title:     "Multiple Ways",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryOperable,
		Fix:       "Offer at least two of: a main navigation, a site search, a sitemap page.",
	}})
}
