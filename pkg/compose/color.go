package compose

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// FallbackColor is used for text whose color cannot be parsed.
var FallbackColor = color.NRGBA{A: 255}

// ParseColor parses a CSS color: #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(),
// rgba(), hsl(), hsla(), an SVG color name or "transparent".
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.NRGBA{}, false
	case s == "transparent":
		return color.NRGBA{}, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	case strings.HasPrefix(s, "hsl"):
		return parseHSLFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	return color.NRGBA{}, false
}

// ColorOrDefault parses s and falls back to [FallbackColor].
func ColorOrDefault(s string) color.NRGBA {
	if c, ok := ParseColor(s); ok {
		return c
	}
	return FallbackColor
}

func parseHex(s string) (color.NRGBA, bool) {
	alpha := uint8(255)
	switch len(s) {
	case 5: // #rgba
		a, err := strconv.ParseUint(s[4:5], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		alpha = uint8(a * 17)
		s = s[:4]
	case 9: // #rrggbbaa
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		alpha = uint8(a)
		s = s[:7]
	case 4, 7:
	default:
		return color.NRGBA{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, true
}

func parseRGBFunc(s string) (color.NRGBA, bool) {
	args, ok := funcArgs(s, "rgba", "rgb")
	if !ok || (len(args) != 3 && len(args) != 4) {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i])
		if !ok {
			return color.NRGBA{}, false
		}
		ch[i] = v
	}
	a := uint8(255)
	if len(args) == 4 {
		if a, ok = parseAlpha(args[3]); !ok {
			return color.NRGBA{}, false
		}
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

func parseHSLFunc(s string) (color.NRGBA, bool) {
	args, ok := funcArgs(s, "hsla", "hsl")
	if !ok || (len(args) != 3 && len(args) != 4) {
		return color.NRGBA{}, false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.NRGBA{}, false
	}
	sat, ok1 := parseFraction(args[1])
	light, ok2 := parseFraction(args[2])
	if !ok1 || !ok2 {
		return color.NRGBA{}, false
	}
	a := uint8(255)
	if len(args) == 4 {
		if a, ok = parseAlpha(args[3]); !ok {
			return color.NRGBA{}, false
		}
	}
	h = math.Mod(math.Mod(h, 360)+360, 360)
	r, g, b := colorful.Hsl(h, sat, light).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, true
}

// funcArgs splits "name(a, b, c)" or the space-separated "name(a b c / d)"
// form into its arguments.
func funcArgs(s string, names ...string) ([]string, bool) {
	var body string
	for _, name := range names {
		if rest, ok := strings.CutPrefix(s, name+"("); ok {
			body, ok = strings.CutSuffix(rest, ")")
			if !ok {
				return nil, false
			}
			break
		}
	}
	if body == "" {
		return nil, false
	}
	body = strings.ReplaceAll(body, "/", " ")
	body = strings.ReplaceAll(body, ",", " ")
	return strings.Fields(body), true
}

func parseChannel(s string) (uint8, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return clamp255(f / 100 * 255), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp255(f), true
}

func parseAlpha(s string) (uint8, bool) {
	f, ok := parseFraction(s)
	if !ok {
		return 0, false
	}
	return clamp255(f * 255), true
}

// parseFraction reads "0.5" or "50%" as 0.5.
func parseFraction(s string) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return math.Max(0, math.Min(1, f/100)), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Max(0, math.Min(1, f)), true
}

func clamp255(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Floor(f+0.5))))
}
