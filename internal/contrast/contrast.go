// Package contrast computes WCAG relative luminance and contrast ratios
// for CSS color strings as reported by getComputedStyle.
package contrast

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnparseable is returned for color strings that are not rgb(), rgba(),
// hex or one of the supported named colors.
var ErrUnparseable = errors.New("unparseable color")

// Color is an sRGB color with 8-bit channels and an alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

var named = map[string]Color{
	"black":   {0, 0, 0, 1},
	"white":   {255, 255, 255, 1},
	"red":     {255, 0, 0, 1},
	"green":   {0, 128, 0, 1},
	"blue":    {0, 0, 255, 1},
	"yellow":  {255, 255, 0, 1},
	"gray":    {128, 128, 128, 1},
	"grey":    {128, 128, 128, 1},
	"silver":  {192, 192, 192, 1},
	"maroon":  {128, 0, 0, 1},
	"navy":    {0, 0, 128, 1},
	"purple":  {128, 0, 128, 1},
	"teal":    {0, 128, 128, 1},
	"olive":   {128, 128, 0, 1},
	"lime":    {0, 255, 0, 1},
	"aqua":    {0, 255, 255, 1},
	"fuchsia": {255, 0, 255, 1},
	"orange":  {255, 165, 0, 1},

	"transparent": {0, 0, 0, 0},
}

// Parse parses a CSS color. Computed styles always use the rgb()/rgba()
// forms; hex and a handful of named colors are accepted for authored styles.
func Parse(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}

	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	// Both "r, g, b, a" and the modern "r g b / a" syntax.
	body = strings.ReplaceAll(body, "/", " ")
	body = strings.ReplaceAll(body, ",", " ")
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
		}
		ch[i] = uint8(math.Round(math.Max(0, math.Min(255, v))))
	}

	alpha := 1.0
	if len(parts) == 4 {
		a := parts[3]
		pct := strings.HasSuffix(a, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
		}
		if pct {
			v /= 100
		}
		alpha = math.Max(0, math.Min(1, v))
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

func parseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 || len(h) == 4 {
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	if len(h) == 6 {
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: float64(uint8(v)) / 255}, nil
}

// Transparent reports whether the color is fully transparent.
func (c Color) Transparent() bool {
	return c.A == 0
}

// String formats the color the way getComputedStyle does.
func (c Color) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Luminance returns the relative luminance of the color. Alpha is ignored.
func (c Color) Luminance() float64 {
	return 0.2126*channel(c.R) + 0.7152*channel(c.G) + 0.0722*channel(c.B)
}

func channel(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RatioOf returns the contrast ratio between two parsed colors, in [1, 21].
func RatioOf(a, b Color) float64 {
	la, lb := a.Luminance(), b.Luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Ratio parses both color strings and returns their contrast ratio.
// Callers should skip the comparison when an error is returned.
func Ratio(a, b string) (float64, error) {
	ca, err := Parse(a)
	if err != nil {
		return 0, err
	}
	cb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return RatioOf(ca, cb), nil
}

// Normalize returns the computed-style form of an authored color value, or
// the input unchanged if it cannot be parsed.
func Normalize(s string) string {
	c, err := Parse(s)
	if err != nil {
		return s
	}
	return c.String()
}
