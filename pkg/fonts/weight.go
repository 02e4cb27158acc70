package fonts

import (
	"strconv"
	"strings"
)

// Weight is a CSS font weight in the range 100–900.
type Weight int

const (
	Thin       Weight = 100
	ExtraLight Weight = 200
	Light      Weight = 300
	Regular    Weight = 400
	Medium     Weight = 500
	SemiBold   Weight = 600
	Bold       Weight = 700
	ExtraBold  Weight = 800
	Black      Weight = 900
)

var weightNames = map[string]Weight{
	"thin":       Thin,
	"hairline":   Thin,
	"extralight": ExtraLight,
	"ultralight": ExtraLight,
	"light":      Light,
	"normal":     Regular,
	"regular":    Regular,
	"book":       Regular,
	"medium":     Medium,
	"semibold":   SemiBold,
	"demibold":   SemiBold,
	"bold":       Bold,
	"extrabold":  ExtraBold,
	"ultrabold":  ExtraBold,
	"black":      Black,
	"heavy":      Black,
	"bolder":     Bold,
	"lighter":    Light,
}

// ParseWeight converts a CSS font-weight value ("bold", "600", "semi-bold")
// to a Weight. Unknown values are Regular.
func ParseWeight(s string) Weight {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Regular
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Weight(n).Normalize()
	}
	s = strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)
	if w, ok := weightNames[s]; ok {
		return w
	}
	return Regular
}

// Normalize clamps w to 100–900 and rounds it to the nearest hundred.
func (w Weight) Normalize() Weight {
	if w < Thin {
		return Thin
	}
	if w > Black {
		return Black
	}
	return (w + 50) / 100 * 100
}

func (w Weight) String() string { return strconv.Itoa(int(w)) }

// StyleName is the conventional file-name suffix for w, e.g. "SemiBold".
func (w Weight) StyleName() string {
	switch w.Normalize() {
	case Thin:
		return "Thin"
	case ExtraLight:
		return "ExtraLight"
	case Light:
		return "Light"
	case Medium:
		return "Medium"
	case SemiBold:
		return "SemiBold"
	case Bold:
		return "Bold"
	case ExtraBold:
		return "ExtraBold"
	case Black:
		return "Black"
	default:
		return "Regular"
	}
}
