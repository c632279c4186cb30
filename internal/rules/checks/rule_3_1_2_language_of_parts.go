package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// partLang accepts BCP 47 shaped tags: a 2-3 letter language followed by
// optional subtags.
var partLang = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

type LanguageOfPartsRule struct {
	rules.Definition
}

func (r *LanguageOfPartsRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Elements() {
		if n == doc.Root {
			continue
		}
		v, ok := n.LookupAttr("lang")
		if !ok {
			continue
		}
		// lang="" explicitly marks the language as unknown.
		if v = strings.TrimSpace(v); v == "" || partLang.MatchString(v) {
			continue
		}
		rec := rules.ElementError(n, fmt.Sprintf("Invalid language code on element: %s", v))
		rec.Text = v
		errs = append(errs, rec)
	}
	return errs, nil
}

func init() {
	rules.Register(&LanguageOfPartsRule{rules.Definition{
		RuleID:    "3.1.2",
		Title:     "Language of Parts",
		Level:     rules.SeverityLow,
		Principle: rules.CategoryUnderstandable,
		Fixable:   true,
		Fix:       "Mark passages in another language with a valid code, e.g. `<span lang=\"en\">`.",
		Capture:   rules.EvidenceElement,
	}})
}
