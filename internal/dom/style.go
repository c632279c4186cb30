package dom

import (
	"strconv"
	"strings"

	"bitvcheck/internal/contrast"
)

// Style maps CSS property names to computed values.
type Style map[string]string

// Get returns the value of prop, or the empty string.
func (s Style) Get(prop string) string {
	return s[prop]
}

// Px returns a pixel length value such as "16px" as a float. Non-pixel and
// missing values yield 0.
func (s Style) Px(prop string) float64 {
	v, _ := parsePx(s[prop])
	return v
}

// FontWeight returns the numeric font weight.
func (s Style) FontWeight() int {
	switch w := strings.TrimSpace(s["font-weight"]); w {
	case "bold", "bolder":
		return 700
	case "", "normal", "lighter":
		return 400
	default:
		n, err := strconv.Atoi(w)
		if err != nil {
			return 400
		}
		return n
	}
}

func parsePx(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, "px") {
		if v == "0" {
			return 0, true
		}
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Properties collected for every element. The browser collector reads the
// same list from getComputedStyle.
var Properties = []string{
	"color",
	"background-color",
	"font-size",
	"font-weight",
	"display",
	"visibility",
	"position",
	"z-index",
	"overflow",
	"overflow-x",
	"overflow-y",
	"border-top-color",
	"border-top-style",
	"border-top-width",
	"outline-style",
	"box-shadow",
}

var inherited = map[string]bool{
	"color":       true,
	"font-size":   true,
	"font-weight": true,
	"visibility":  true,
}

const transparent = "rgba(0, 0, 0, 0)"

var rootStyle = Style{
	"color":            "rgb(0, 0, 0)",
	"background-color": transparent,
	"font-size":        "16px",
	"font-weight":      "400",
	"display":          "block",
	"visibility":       "visible",
	"position":         "static",
	"z-index":          "auto",
	"overflow":         "visible",
	"overflow-x":       "visible",
	"overflow-y":       "visible",
	"border-top-style": "none",
	"border-top-width": "0px",
	"outline-style":    "none",
	"box-shadow":       "none",
}

var headingScale = map[string]float64{
	"h1": 2, "h2": 1.5, "h3": 1.17, "h4": 1, "h5": 0.83, "h6": 0.67,
}

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "ul": true, "ol": true,
	"li": true, "nav": true, "main": true, "header": true, "footer": true,
	"section": true, "article": true, "aside": true, "form": true,
	"fieldset": true, "table": true, "blockquote": true, "figure": true,
	"dl": true, "dt": true, "dd": true, "address": true, "pre": true,
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"noscript": true, "title": true, "meta": true, "link": true,
}

// computeStyle resolves the style of an element from its parent's style,
// user-agent defaults for its tag and its inline style attribute.
func computeStyle(n *Node, parent Style) Style {
	s := make(Style, len(rootStyle))
	for k, v := range rootStyle {
		s[k] = v
	}
	for k := range inherited {
		if v, ok := parent[k]; ok {
			s[k] = v
		}
	}

	switch {
	case hiddenTags[n.Tag]:
		s["display"] = "none"
	case blockTags[n.Tag]:
		s["display"] = "block"
	default:
		s["display"] = "inline"
	}
	if scale, ok := headingScale[n.Tag]; ok {
		s["font-size"] = formatPx(parentPx(parent) * scale)
	}
	if n.Is("h1", "h2", "h3", "h4", "h5", "h6", "b", "strong", "th") {
		s["font-weight"] = "700"
	}
	if n.Is("button", "select") || (n.Tag == "input" && isButtonInput(n)) {
		s["display"] = "inline-block"
		s["background-color"] = "rgb(239, 239, 239)"
		s["border-top-style"] = "outset"
		s["border-top-width"] = "2px"
		s["border-top-color"] = "rgb(118, 118, 118)"
	} else if n.Is("input", "textarea") {
		s["display"] = "inline-block"
		s["background-color"] = "rgb(255, 255, 255)"
		s["border-top-style"] = "inset"
		s["border-top-width"] = "2px"
		s["border-top-color"] = "rgb(118, 118, 118)"
	}
	if n.Tag == "input" && strings.EqualFold(n.Attr("type"), "hidden") {
		s["display"] = "none"
	}
	if n.HasAttr("hidden") {
		s["display"] = "none"
	}

	for prop, val := range parseDeclarations(n.Attr("style")) {
		applyDeclaration(s, parent, prop, val)
	}
	if _, ok := s["border-top-color"]; !ok {
		s["border-top-color"] = s["color"]
	}
	return s
}

func isButtonInput(n *Node) bool {
	switch strings.ToLower(n.Attr("type")) {
	case "submit", "button", "reset":
		return true
	}
	return false
}

func parentPx(parent Style) float64 {
	if v, ok := parsePx(parent["font-size"]); ok && v > 0 {
		return v
	}
	return 16
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// parseDeclarations splits an inline style attribute into property/value
// pairs. Later declarations win.
func parseDeclarations(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important"))
		if prop == "" || val == "" {
			continue
		}
		out[prop] = val
	}
	return out
}

func applyDeclaration(s, parent Style, prop, val string) {
	lower := strings.ToLower(val)
	switch prop {
	case "color", "background-color", "border-top-color":
		s[prop] = contrast.Normalize(lower)
	case "background":
		if c, err := contrast.Parse(strings.Fields(lower)[0]); err == nil {
			s["background-color"] = c.String()
		}
	case "font-size":
		if px, ok := resolveLength(lower, parentPx(parent)); ok {
			s[prop] = formatPx(px)
		}
	case "font-weight":
		s[prop] = strconv.Itoa(Style{"font-weight": lower}.FontWeight())
	case "overflow":
		s["overflow"], s["overflow-x"], s["overflow-y"] = lower, lower, lower
	case "border", "border-top":
		applyBorder(s, lower)
	case "outline":
		if lower == "none" || lower == "0" {
			s["outline-style"] = "none"
		} else {
			s["outline-style"] = strings.Fields(lower)[0]
		}
	default:
		s[prop] = lower
	}
}

func applyBorder(s Style, val string) {
	if val == "none" || val == "0" {
		s["border-top-style"] = "none"
		s["border-top-width"] = "0px"
		return
	}
	for _, part := range strings.Fields(val) {
		switch {
		case isBorderStyle(part):
			s["border-top-style"] = part
		case strings.HasSuffix(part, "px"):
			s["border-top-width"] = part
		default:
			if c, err := contrast.Parse(part); err == nil {
				s["border-top-color"] = c.String()
			}
		}
	}
}

func isBorderStyle(v string) bool {
	switch v {
	case "none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

func resolveLength(v string, base float64) (float64, bool) {
	units := []struct {
		suffix string
		factor float64
	}{
		{"px", 1}, {"rem", 16}, {"em", base}, {"pt", 4.0 / 3.0}, {"%", base / 100},
	}
	for _, u := range units {
		if !strings.HasSuffix(v, u.suffix) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
		if err != nil {
			return 0, false
		}
		return f * u.factor, true
	}
	return 0, false
}

func focusFromInline(n *Node) FocusStyle {
	f := FocusStyle{Outline: "auto", BoxShadow: "none"}
	decls := parseDeclarations(n.Attr("style"))
	if v, ok := decls["outline"]; ok {
		f.Outline = strings.ToLower(v)
	}
	if v, ok := decls["outline-style"]; ok {
		f.Outline = strings.ToLower(v)
	}
	if v, ok := decls["box-shadow"]; ok {
		f.BoxShadow = strings.ToLower(v)
	}
	return f
}

// Backdrop returns the nearest opaque background color behind n, starting
// at its parent. The canvas is assumed white when no ancestor paints one.
func (n *Node) Backdrop() string {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if !cur.IsElement() {
			continue
		}
		c, err := contrast.Parse(cur.Style.Get("background-color"))
		if err == nil && !c.Transparent() {
			return c.String()
		}
	}
	return "rgb(255, 255, 255)"
}
