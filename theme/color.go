package theme

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// LightThreshold splits perceived brightness (0–255) into light and dark.
// Colors at or above it count as light.
const LightThreshold = 128.0

// ParseColor reads the RGB channels of a CSS color. It understands hex
// notation, rgb()/rgba(), hsl()/hsla() and the CSS named colors. Anything
// else, including var() references, reports ok=false. Alpha is dropped.
func ParseColor(s string) (c colorful.Color, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return colorful.Color{}, false
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}

	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		name := strings.TrimSpace(s[:open])
		args := splitArgs(s[open+1 : len(s)-1])
		switch name {
		case "rgb", "rgba":
			return parseRGB(args)
		case "hsl", "hsla":
			return parseHSL(args)
		}
		return colorful.Color{}, false
	}

	if rgba, found := colornames.Map[s]; found {
		return colorful.MakeColor(rgba)
	}
	if rgba, found := css4Names[s]; found {
		return colorful.MakeColor(rgba)
	}
	return colorful.Color{}, false
}

// css4Names holds the named colors CSS Color 4 added to the SVG 1.1 list.
var css4Names = map[string]color.RGBA{
	"rebeccapurple": {R: 0x66, G: 0x33, B: 0x99, A: 0xff},
}

// Luminance returns the YIQ perceived brightness of c on a 0–255 scale.
func Luminance(c colorful.Color) float64 {
	return (0.299*c.R + 0.587*c.G + 0.114*c.B) * 255
}

// IsLight reports whether c should carry dark foreground content.
func IsLight(c colorful.Color) bool {
	return Luminance(c) >= LightThreshold
}

func parseHex(s string) (colorful.Color, bool) {
	digits := s[1:]
	for _, r := range digits {
		if !isHexDigit(r) {
			return colorful.Color{}, false
		}
	}
	switch len(digits) {
	case 3, 6:
	case 4, 8:
		// trailing alpha channel
		digits = digits[:len(digits)*3/4]
	default:
		return colorful.Color{}, false
	}
	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// splitArgs accepts both the legacy comma syntax and the space syntax with
// an optional "/ alpha" suffix.
func splitArgs(s string) []string {
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Fields(s)
}

func parseRGB(args []string) (colorful.Color, bool) {
	if len(args) != 3 && len(args) != 4 {
		return colorful.Color{}, false
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i], 255)
		if !ok {
			return colorful.Color{}, false
		}
		ch[i] = v
	}
	if len(args) == 4 {
		if _, ok := parseChannel(args[3], 1); !ok {
			return colorful.Color{}, false
		}
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

func parseHSL(args []string) (colorful.Color, bool) {
	if len(args) != 3 && len(args) != 4 {
		return colorful.Color{}, false
	}
	h, ok := parseHue(args[0])
	if !ok {
		return colorful.Color{}, false
	}
	sat, ok := parsePercent(args[1])
	if !ok {
		return colorful.Color{}, false
	}
	light, ok := parsePercent(args[2])
	if !ok {
		return colorful.Color{}, false
	}
	if len(args) == 4 {
		if _, ok := parseChannel(args[3], 1); !ok {
			return colorful.Color{}, false
		}
	}
	return colorful.Hsl(h, sat, light).Clamped(), true
}

// parseChannel converts a number or percentage into [0,1], where a bare
// number is measured against max.
func parseChannel(s string, max float64) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		return parsePercent(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return clamp01(v / max), true
}

func parsePercent(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return clamp01(v / 100), true
}

func parseHue(s string) (float64, bool) {
	unit := 1.0
	switch {
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "turn"):
		s = strings.TrimSuffix(s, "turn")
		unit = 360
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if !finite(v) {
		return 0, false
	}
	h := math.Mod(v*unit, 360)
	if math.IsNaN(h) {
		return 0, false
	}
	if h < 0 {
		h += 360
	}
	return h, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
