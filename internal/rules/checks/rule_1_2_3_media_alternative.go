package checks

import (
	"context"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type MediaAlternativeRule struct {
	rules.Definition
}

func (r *MediaAlternativeRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, video := range doc.ByTag("video") {
		tracks := video.Find(func(n *dom.Node) bool {
			if n.Tag != "track" {
				return false
			}
			kind := strings.ToLower(n.Attr("kind"))
			return kind == "descriptions" || kind == "captions"
		})
		if len(tracks) == 0 {
			errs = append(errs, rules.ElementError(video, "No audio description or captions found"))
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&MediaAlternativeRule{rules.Definition{
		RuleID:    "1.2.3",
		Title:     "Audio Description or Media Alternative (Prerecorded)",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryPerceivable,
		Fix:       "Add a `<track kind=\"descriptions\">` or `<track kind=\"captions\">` to each video, or link a full text alternative next to it.",
		Capture:   rules.EvidenceNone,
	}})
}
