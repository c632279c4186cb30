package checks

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type PageTitledRule struct {
	rules.Definition
}

func (r *PageTitledRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Title)
	lower := strings.ToLower(title)
	var msg string
	switch {
	case title == "":
		msg = "No document title present"
	case utf8.RuneCountInString(title) < 5:
		msg = fmt.Sprintf("Document title too short: %q", title)
	case strings.Contains(lower, "untitled") || strings.Contains(lower, "new page"):
		msg = fmt.Sprintf("Document title is a placeholder: %q", title)
	default:
		return nil, nil
	}
	rec := rules.ErrorRecord{Message: msg, Selector: "title", Text: title}
	if head := doc.First(func(n *dom.Node) bool { return n.Tag == "head" }); head != nil {
		rec.ElementSnippet = head.Snippet
	}
	return []rules.ErrorRecord{rec}, nil
}

func init() {
	rules.Register(&PageTitledRule{rules.Definition{
		RuleID:    "2.4.2",
		Title:     "Page Titled",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryOperable,
		Fixable:   true,
		Fix:       "Give every page a unique, descriptive `<title>`, for example `Contact – Example Ltd`.",
		Capture:   rules.EvidenceFirstFullPage,
	}})
}
