package checks

import (
	"context"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

const defaultSkipPhrases = "springe zu|zum inhalt|skip to"

type BypassBlocksRule struct {
	rules.Definition
	phrases []string
}

func (r *BypassBlocksRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "phrases",
			Description: "Phrases separated by '|' that identify a skip link (matched case-insensitively as substrings).",
			Default:     defaultSkipPhrases,
		},
	}
}

func (r *BypassBlocksRule) Configure(opts map[string]string) error {
	r.phrases = splitPhrases(defaultSkipPhrases)
	if v, ok := opts["phrases"]; ok && strings.TrimSpace(v) != "" {
		r.phrases = splitPhrases(v)
	}
	return nil
}

func (r *BypassBlocksRule) skipPhrases() []string {
	if r.phrases == nil {
		return splitPhrases(defaultSkipPhrases)
	}
	return r.phrases
}

func (r *BypassBlocksRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	phrases := r.skipPhrases()
	skip := doc.First(func(n *dom.Node) bool {
		if n.Tag != "a" || !strings.HasPrefix(n.Attr("href"), "#") {
			return false
		}
		text := strings.ToLower(n.Text())
		for _, ph := range phrases {
			if strings.Contains(text, ph) {
				return true
			}
		}
		return false
	})

	var errs []rules.ErrorRecord
	if skip == nil {
		errs = append(errs, rules.PageError("No skip link to main content found"))
	}
	if doc.First(func(n *dom.Node) bool { return n.Tag == "main" || n.Role() == "main" }) == nil {
		errs = append(errs, rules.PageError("No main content area (main) defined"))
	}
	if doc.First(func(n *dom.Node) bool { return n.Tag == "nav" || n.Role() == "navigation" }) == nil {
		errs = append(errs, rules.PageError("No navigation (nav) defined"))
	}
	return errs, nil
}

func init() {
	rules.Register(&BypassBlocksRule{Definition: rules.Definition{
		RuleID:    "2.4.1",
		Title:     "Bypass Blocks",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryOperable,
		Fixable:   true,
		Fix:       "Start the page with a link such as `<a href=\"#main\">Skip to content</a>` and mark up the regions with `<main>` and `<nav>`.",
		Capture:   rules.EvidenceFirstFullPage,
	}})
}
