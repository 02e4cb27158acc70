// Package geometry provides aspect-ratio and canvas-size arithmetic.
//
// All functions are pure. Wherever a real-valued dimension or offset becomes
// an integer pixel count the package applies a single rule, round-half-up
// (see [Round]), so that padding, compositing and export agree on sizes.
//
// # Named Ratios
//
// The studio supports five named ratios, in this enumeration order:
//
//	1:1, 16:9, 9:16, 4:3, 3:4
//
// [NearestNamedRatio] maps any positive real ratio back to one of them, which
// is needed whenever a free-form custom size meets an API that only accepts
// named ratios.
package geometry

import (
	"math"
	"strconv"
	"strings"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

// AspectRatio is a ratio written as "W:H".
type AspectRatio string

// Named aspect ratios.
const (
	Square    AspectRatio = "1:1"
	Landscape AspectRatio = "16:9"
	Portrait  AspectRatio = "9:16"
	Standard  AspectRatio = "4:3"
	Tall      AspectRatio = "3:4"
)

// NamedRatios lists the supported ratios in enumeration order.
// Ties in NearestNamedRatio resolve to the earliest entry.
var NamedRatios = []AspectRatio{Square, Landscape, Portrait, Standard, Tall}

// RatioToNumber parses "W:H" and returns W/H.
func RatioToNumber(ratio AspectRatio) (float64, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(string(ratio)), ":")
	if !ok {
		return 0, errs.New(errs.ErrCodeInvalidRatio, "invalid aspect ratio %q: want W:H", ratio)
	}
	wv, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidRatio, "invalid aspect ratio %q: width is not a number", ratio)
	}
	hv, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidRatio, "invalid aspect ratio %q: height is not a number", ratio)
	}
	if !(wv > 0) || !(hv > 0) || math.IsInf(wv, 0) || math.IsInf(hv, 0) {
		return 0, errs.New(errs.ErrCodeInvalidRatio, "invalid aspect ratio %q: components must be positive", ratio)
	}
	return wv / hv, nil
}

// IsNamed reports whether r is one of NamedRatios.
func (r AspectRatio) IsNamed() bool {
	for _, n := range NamedRatios {
		if r == n {
			return true
		}
	}
	return false
}

// NearestNamedRatio returns the named ratio whose value is closest to numeric.
func NearestNamedRatio(numeric float64) AspectRatio {
	best := NamedRatios[0]
	bestDiff := math.Inf(1)
	for _, r := range NamedRatios {
		v, _ := RatioToNumber(r)
		if d := math.Abs(v - numeric); d < bestDiff {
			best, bestDiff = r, d
		}
	}
	return best
}

// ParseRatio parses a ratio string and returns it if it is well-formed.
func ParseRatio(s string) (AspectRatio, error) {
	r := AspectRatio(strings.TrimSpace(s))
	if _, err := RatioToNumber(r); err != nil {
		return "", err
	}
	return r, nil
}

// Round converts x to the nearest integer, rounding halves up.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}
