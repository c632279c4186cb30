package checks

import (
	"context"
	"fmt"
	"regexp"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

var pageLang = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

type LanguageOfPageRule struct {
	rules.Definition
}

func (r *LanguageOfPageRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}
	if doc.Root == nil {
		return nil, nil
	}

	// The raw value is matched; surrounding whitespace makes the code invalid.
	lang := doc.Root.Attr("lang")
	var msg string
	switch {
	case lang == "":
		msg = "No main language (lang attribute) defined"
	case !pageLang.MatchString(lang):
		msg = fmt.Sprintf("Invalid language code: %s", lang)
	default:
		return nil, nil
	}
	rec := rules.ErrorRecord{Message: msg, Selector: "html", ElementSnippet: doc.Root.Snippet, Text: lang}
	return []rules.ErrorRecord{rec}, nil
}

func init() {
	rules.Register(&LanguageOfPageRule{rules.Definition{
		RuleID:    "3.1.1",
		Title:     "Language of Page",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryUnderstandable,
		Fixable:   true,
		Fix:       "Declare the main language on the root element, e.g. `<html lang=\"de\">` or `<html lang=\"de-DE\">`.",
		Capture:   rules.EvidenceFirstFullPage,
	}})
}
