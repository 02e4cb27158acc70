package geometry

import (
	"strings"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

// DPI is the fixed pixels-per-inch assumption for physical units.
const DPI = 96.0

// Unit is a physical length unit for custom canvas sizes.
type Unit string

// Supported units.
const (
	UnitPixel      Unit = "px"
	UnitInch       Unit = "in"
	UnitMillimeter Unit = "mm"
	UnitCentimeter Unit = "cm"
)

// ParseUnit normalizes a unit name. "inch", "inches" and "pol." are
// accepted for inches.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "px", "pixel", "pixels":
		return UnitPixel, nil
	case "in", "inch", "inches", "pol.", "pol":
		return UnitInch, nil
	case "mm":
		return UnitMillimeter, nil
	case "cm":
		return UnitCentimeter, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidInput, "unknown unit %q (must be px, in, mm or cm)", s)
	}
}

// ToPixels converts value in unit to pixels at 96 DPI.
func ToPixels(value float64, unit Unit) (float64, error) {
	switch unit {
	case UnitPixel:
		return value, nil
	case UnitInch:
		return value * DPI, nil
	case UnitMillimeter:
		return value * DPI / 25.4, nil
	case UnitCentimeter:
		return value * DPI / 2.54, nil
	default:
		return 0, errs.New(errs.ErrCodeInvalidInput, "unknown unit %q", unit)
	}
}
