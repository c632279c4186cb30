package checks

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

var placeholderAlt = regexp.MustCompile(`(?i)^(image|graphic|img\d+\.\w+)$`)

type NonTextContentRule struct {
	rules.Definition
}

func (r *NonTextContentRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, img := range doc.ByTag("img") {
		if img.Role() == "presentation" {
			continue
		}
		alt := img.Attr("alt")
		n := utf8.RuneCountInString(alt)
		switch {
		case alt == "":
			errs = append(errs, rules.ElementError(img, "Missing alternative text"))
		case placeholderAlt.MatchString(alt) || n < 5 || n > 150:
			rec := rules.ElementError(img, fmt.Sprintf("Suspicious alternative text: %q", alt))
			rec.Text = alt
			errs = append(errs, rec)
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&NonTextContentRule{rules.Definition{
		RuleID:    "1.1.1",
		Title:     "Non-text Content (Alternative Text)",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryPerceivable,
		Fix:       "Give every informative image an `alt` text that conveys its purpose in 5 to 150 characters. Mark purely decorative images with `role=\"presentation\"`.",
		Capture:   rules.EvidenceElement,
	}})
}
