package checks

import (
	"context"
	"strings"
	"unicode/utf8"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

const defaultLinkPhrases = "hier klicken|mehr|click here|more"

// contextSlack is how much longer than the link text the surrounding text
// must be before it counts as describing the link.
const contextSlack = 10

// LinkPurposeRule flags links whose text says nothing without context.
type LinkPurposeRule struct {
	rules.Definition
	phrases []string
}

func (r *LinkPurposeRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "phrases",
			Description: "Generic link texts separated by '|' (compared case-insensitively against the whole link text).",
			Default:     defaultLinkPhrases,
		},
	}
}

func (r *LinkPurposeRule) Configure(opts map[string]string) error {
	r.phrases = splitPhrases(defaultLinkPhrases)
	if v, ok := opts["phrases"]; ok && strings.TrimSpace(v) != "" {
		r.phrases = splitPhrases(v)
	}
	return nil
}

func (r *LinkPurposeRule) generic(text string) bool {
	phrases := r.phrases
	if phrases == nil {
		phrases = splitPhrases(defaultLinkPhrases)
	}
	text = strings.ToLower(text)
	for _, ph := range phrases {
		if text == ph {
			return true
		}
	}
	return false
}

func (r *LinkPurposeRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, a := range doc.ByTag("a") {
		text := a.NormalizedText()
		if !r.generic(text) || strings.TrimSpace(a.Attr("aria-label")) != "" {
			continue
		}
		if a.Parent != nil {
			surrounding := a.Parent.NormalizedText()
			if utf8.RuneCountInString(surrounding) > utf8.RuneCountInString(text)+contextSlack {
				continue
			}
		}
		rec := rules.ElementError(a, "Generic link text without context")
		rec.Text = text
		errs = append(errs, rec)
	}
	return errs, nil
}

func init() {
	rules.Register(&LinkPurposeRule{Definition: rules.Definition{
		RuleID:    "2.4.4",
		Title:     "Link Purpose (In Context)",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryOperable,
		Fix:       "Replace texts like \"click here\" with the link target (\"Download the annual report\"), or add an `aria-label` that names it.",
		Capture:   rules.EvidenceElement,
	}})
}
