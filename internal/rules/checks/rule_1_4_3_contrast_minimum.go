package checks

import (
	"context"
	"fmt"
	"strconv"

	"bitvcheck/internal/colors"
	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// contrastTolerance absorbs rendering and rounding noise in computed colors.
const contrastTolerance = 0.2

type ContrastMinimumRule struct {
	rules.Definition
}

func isContrastTarget(n *dom.Node) bool {
	if n.HeadingLevel() > 0 || n.Is("p", "a", "label", "button") {
		return true
	}
	if n.Tag == "input" {
		t := inputType(n)
		return t == "submit" || t == "button"
	}
	return false
}

func (r *ContrastMinimumRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	samples, err := colors.Extract(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, s := range samples {
		n := s.Element
		if !isContrastTarget(n) {
			continue
		}
		heading := n.HeadingLevel() > 0
		if len([]rune(s.Text)) < 4 && !heading && n.Tag != "button" {
			continue
		}
		ratio, err := s.Ratio()
		if err != nil {
			continue
		}
		required := 4.5
		if s.LargeText() || heading {
			required = 3.0
		}
		if ratio >= required-contrastTolerance {
			continue
		}
		rec := rules.ElementError(n, fmt.Sprintf("Contrast too low: %.2f < %s", ratio, strconv.FormatFloat(required, 'f', -1, 64)))
		rec.Text = truncate(s.Text, 100)
		rec.ForegroundColor = s.Foreground
		rec.BackgroundColor = s.Background
		errs = append(errs, rec)
	}
	return errs, nil
}

func init() {
	rules.Register(&ContrastMinimumRule{rules.Definition{
		RuleID:    "1.4.3",
		Title:     "Contrast (Minimum)",
		Level:     rules.SeverityHigh,
		Principle: rules.CategoryPerceivable,
		Fixable:   true,
		Fix:       "Raise the contrast between text and background to at least **4.5:1**, or **3:1** for large text (18px, or 14px bold) and headings.",
		Capture:   rules.EvidenceElement,
	}})
}
