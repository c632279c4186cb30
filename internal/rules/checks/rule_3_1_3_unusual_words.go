package checks

import (
	"context"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type UnusualWordsRule struct {
	rules.Definition
}

// isGlossary matches both "glossary" and the German "Glossar".
func isGlossary(n *dom.Node) bool {
	if strings.Contains(strings.ToLower(n.ID()), "glossar") {
		return true
	}
	if n.Tag != "a" {
		return false
	}
	s := strings.ToLower(n.Attr("href") + " " + n.Text())
	return strings.Contains(s, "glossar")
}

func (r *UnusualWordsRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	if doc.First(isGlossary) != nil {
		return nil, nil
	}
	return []rules.ErrorRecord{rules.PageError("No glossary or explanation of terms found")}, nil
}

func init() {
	rules.Register(&UnusualWordsRule{rules.Definition{
		RuleID:    "3.1.3",
		Title:     "Unusual Words",
		Level:     rules.SeverityLow,
		Principle: rules.CategoryUnderstandable,
		Fix:       "Explain technical terms and abbreviations in place, or link to a glossary page.",
	}})
}
