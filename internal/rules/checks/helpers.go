package checks

import (
	"context"
	"fmt"
	"strings"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
)

func snapshot(ctx context.Context, p page.Page) (*dom.Document, error) {
	doc, err := p.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return doc, nil
}

// inputType returns the lower-cased type of an input, defaulting to text.
func inputType(n *dom.Node) string {
	t := strings.ToLower(strings.TrimSpace(n.Attr("type")))
	if t == "" {
		return "text"
	}
	return t
}

// isFormField matches input, select and textarea, excluding hidden inputs.
func isFormField(n *dom.Node) bool {
	if n.Tag == "input" {
		return inputType(n) != "hidden"
	}
	return n.Is("select", "textarea")
}

// isDataField is isFormField without button-like inputs.
func isDataField(n *dom.Node) bool {
	if n.Tag == "input" {
		switch inputType(n) {
		case "hidden", "submit", "button", "reset", "image":
			return false
		}
		return true
	}
	return n.Is("select", "textarea")
}

// hasLabel reports an associated label, aria-label or aria-labelledby.
func hasLabel(n *dom.Node) bool {
	return n.Labels > 0 || strings.TrimSpace(n.Attr("aria-label")) != "" || strings.TrimSpace(n.Attr("aria-labelledby")) != ""
}

func hasClass(n *dom.Node, class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// inSearchOrNewsletter matches fields that live in search or newsletter
// forms, which are exempt from the form validation rules.
func inSearchOrNewsletter(n *dom.Node) bool {
	return n.Closest(func(e *dom.Node) bool {
		return (e.Tag == "form" && e.Role() == "search") || hasClass(e, "search") || hasClass(e, "newsletter")
	}) != nil
}

func hasAnyAttr(n *dom.Node, names ...string) bool {
	for _, name := range names {
		if n.HasAttr(name) {
			return true
		}
	}
	return false
}

func hasClickHandler(n *dom.Node) bool {
	return hasAnyAttr(n, "onclick", "onmousedown", "onmouseup")
}

func hasKeyHandler(n *dom.Node) bool {
	return hasAnyAttr(n, "onkeypress", "onkeydown", "onkeyup")
}

func isDisabled(n *dom.Node) bool {
	return n.HasAttr("disabled") || n.Attr("aria-disabled") == "true"
}

// splitPhrases splits a '|' separated option into lower-cased phrases.
func splitPhrases(v string) []string {
	var out []string
	for _, s := range strings.Split(v, "|") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
