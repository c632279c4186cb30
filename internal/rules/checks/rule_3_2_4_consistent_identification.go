package checks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type ConsistentIdentificationRule struct {
	rules.Definition
}

// linkTarget resolves href against the document URL. The fragment is kept,
// so "#top" and "#nav" are different targets. Unparseable values are
// compared as written.
func linkTarget(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u.String()
}

func (r *ConsistentIdentificationRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(doc.URL)

	// Texts are compared exactly, case included.
	var order []string
	targets := make(map[string][]string)
	for _, a := range doc.ByTag("a") {
		if !a.HasAttr("href") {
			continue
		}
		text := a.TrimmedText()
		if text == "" {
			continue
		}
		if _, seen := targets[text]; !seen {
			order = append(order, text)
		}
		target := linkTarget(base, a.Attr("href"))
		if !contains(targets[text], target) {
			targets[text] = append(targets[text], target)
		}
	}

	var errs []rules.ErrorRecord
	for _, text := range order {
		if len(targets[text]) < 2 {
			continue
		}
		rec := rules.PageError(fmt.Sprintf("Inconsistent naming: %q leads to multiple targets (%s)", text, strings.Join(targets[text], ", ")))
		rec.Text = text
		errs = append(errs, rec)
	}
	return errs, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	rules.Register(&ConsistentIdentificationRule{rules.Definition{
		RuleID:    "3.2.4",
		Title:     "Consistent Identification",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryUnderstandable,
		Fix:       "Use the same link text for the same destination and different texts for different destinations.",
	}})
}
