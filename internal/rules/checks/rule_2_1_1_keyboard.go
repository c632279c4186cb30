package checks

import (
	"context"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

type KeyboardRule struct {
	rules.Definition
}

func isInteractive(n *dom.Node) bool {
	if n.Is("a", "button", "input", "select", "textarea") {
		return true
	}
	role := n.Role()
	return role == "button" || role == "link"
}

// isNativeControl matches elements that receive keyboard activation from
// the browser.
func isNativeControl(n *dom.Node) bool {
	if n.Is("a", "button") {
		return true
	}
	if n.Tag == "input" {
		t := inputType(n)
		return t == "button" || t == "submit"
	}
	return false
}

func (r *KeyboardRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, n := range doc.Filter(isInteractive) {
		role := n.Role()
		if !n.Visible() || isDisabled(n) || role == "presentation" || role == "none" {
			continue
		}
		click := hasClickHandler(n)
		if strings.TrimSpace(n.Attr("tabindex")) == "-1" && click {
			errs = append(errs, rules.ElementError(n, "Interactive element is not reachable by keyboard"))
		}
		if click && !hasKeyHandler(n) && n.Closest(isNativeControl) == nil {
			errs = append(errs, rules.ElementError(n, "Element can only be operated with a mouse"))
		}
	}
	return errs, nil
}

func init() {
	rules.Register(&KeyboardRule{rules.Definition{
		RuleID:    "2.1.1",
		Title:     "Keyboard",
		Level:     rules.SeverityCritical,
		Principle: rules.CategoryOperable,
		Fix:       "Use native `<button>` and `<a href>` elements for actions. Custom controls need `tabindex=\"0\"` and key handlers for Enter and Space.",
		Capture:   rules.EvidenceFullPage,
	}})
}
