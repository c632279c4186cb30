package checks

import (
	"context"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// textSpacingCSS applies the WCAG 1.4.12 spacing metrics to every element.
const textSpacingCSS = `* {
  line-height: 1.5 !important;
  letter-spacing: 0.12em !important;
  word-spacing: 0.16em !important;
}
p {
  margin-bottom: 2em !important;
}`

type TextSpacingRule struct {
	rules.Definition
}

func (r *TextSpacingRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	var errs []rules.ErrorRecord
	err := page.WithStyle(ctx, p, textSpacingCSS, func() error {
		doc, err := snapshot(ctx, p)
		if err != nil {
			return err
		}
		if !doc.Layout.Available {
			return nil
		}
		for _, n := range doc.Elements() {
			if n.Visible() && n.TrimmedText() != "" && clipsContent(n) {
				errs = append(errs, rules.ElementError(n, "Text is clipped when text spacing is increased"))
			}
		}
		errs = rules.CaptureNow(ctx, p, errs)
		return nil
	})
	return errs, err
}

func clipsContent(n *dom.Node) bool {
	s := n.Scroll
	hidden := func(v string) bool { return v == "hidden" || v == "clip" }
	x := hidden(n.Style.Get("overflow-x")) && s.ScrollWidth > s.ClientWidth+1
	y := hidden(n.Style.Get("overflow-y")) && s.ScrollHeight > s.ClientHeight+1
	return x || y
}

func init() {
	rules.Register(&TextSpacingRule{rules.Definition{
		RuleID:    "1.4.12",
		Title:     "Text Spacing",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryPerceivable,
		Fix:       "Let containers grow with their text: avoid fixed heights combined with `overflow: hidden` so that increased line, letter and word spacing stays readable.",
		Capture:   rules.EvidenceFullPage,
	}})
}
