package geometry

import (
	"fmt"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

// Canvas limits. Surfaces larger than this cannot be allocated.
const (
	MaxCanvasDimension = 32767
	MaxCanvasArea      = 268435456
)

// DefaultReferenceDimension is the long edge used when a ratio is given
// without a reference dimension.
const DefaultReferenceDimension = 1024

// Size is a canvas size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Ratio returns Width/Height. A zero height yields 0.
func (s Size) Ratio() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// Scale returns the size multiplied by factor.
func (s Size) Scale(factor int) Size {
	return Size{Width: s.Width * factor, Height: s.Height * factor}
}

// Validate reports CanvasUnavailable if no surface of this size can be created.
func (s Size) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return errs.New(errs.ErrCodeCanvasUnavailable, "canvas size %s must be positive", s)
	}
	if s.Width > MaxCanvasDimension || s.Height > MaxCanvasDimension {
		return errs.New(errs.ErrCodeCanvasUnavailable, "canvas size %s exceeds %d pixels per side", s, MaxCanvasDimension)
	}
	if int64(s.Width)*int64(s.Height) > MaxCanvasArea {
		return errs.New(errs.ErrCodeCanvasUnavailable, "canvas size %s exceeds %d pixels", s, MaxCanvasArea)
	}
	return nil
}

// CanvasSpec describes a canvas either by ratio or by custom physical size.
// When CustomWidth and CustomHeight are both set the custom path is used.
type CanvasSpec struct {
	Ratio              AspectRatio
	ReferenceDimension int

	CustomWidth  float64
	CustomHeight float64
	Unit         Unit
}

// IsCustom reports whether the spec uses the custom-size path.
func (c CanvasSpec) IsCustom() bool {
	return c.CustomWidth != 0 || c.CustomHeight != 0
}

// ResolveCanvasSize computes the pixel size for spec.
//
// On the ratio path ReferenceDimension is the long edge: landscape ratios fix
// the width, portrait ratios fix the height, square ratios fix both.
// On the custom path the dimensions are converted at 96 px per inch.
func ResolveCanvasSize(spec CanvasSpec) (Size, error) {
	var size Size
	if spec.IsCustom() {
		if !(spec.CustomWidth > 0) || !(spec.CustomHeight > 0) {
			return Size{}, errs.New(errs.ErrCodeInvalidInput, "custom size %gx%g must be positive", spec.CustomWidth, spec.CustomHeight)
		}
		unit := spec.Unit
		if unit == "" {
			unit = UnitPixel
		}
		w, err := ToPixels(spec.CustomWidth, unit)
		if err != nil {
			return Size{}, err
		}
		h, err := ToPixels(spec.CustomHeight, unit)
		if err != nil {
			return Size{}, err
		}
		size = Size{Width: Round(w), Height: Round(h)}
	} else {
		ratio, err := RatioToNumber(spec.Ratio)
		if err != nil {
			return Size{}, err
		}
		ref := spec.ReferenceDimension
		if ref == 0 {
			ref = DefaultReferenceDimension
		}
		if ref < 0 {
			return Size{}, errs.New(errs.ErrCodeInvalidInput, "reference dimension %d must be positive", ref)
		}
		if ratio >= 1 {
			size = Size{Width: ref, Height: Round(float64(ref) / ratio)}
		} else {
			size = Size{Width: Round(float64(ref) * ratio), Height: ref}
		}
	}
	if err := size.Validate(); err != nil {
		return Size{}, err
	}
	return size, nil
}

// ResolveExportSize applies the width/height controls of an export.
//
// With locked set, the dimension the caller supplied drives the other one
// through the original's aspect ratio, rounded to the nearest pixel. Width
// wins when both are supplied. Without the lock each dimension is taken as
// given, falling back to the original's when zero.
func ResolveExportSize(original Size, width, height int, locked bool) (Size, error) {
	if original.Width <= 0 || original.Height <= 0 {
		return Size{}, errs.New(errs.ErrCodeInvalidInput, "original size %s must be positive", original)
	}
	if width < 0 || height < 0 {
		return Size{}, errs.New(errs.ErrCodeInvalidInput, "export size %dx%d must not be negative", width, height)
	}

	ow, oh := float64(original.Width), float64(original.Height)
	out := original
	switch {
	case locked && width > 0:
		out = Size{Width: width, Height: max(1, Round(float64(width)*oh/ow))}
	case locked && height > 0:
		out = Size{Width: max(1, Round(float64(height)*ow/oh)), Height: height}
	case !locked:
		if width > 0 {
			out.Width = width
		}
		if height > 0 {
			out.Height = height
		}
	}
	if err := out.Validate(); err != nil {
		return Size{}, err
	}
	return out, nil
}

// ScaleForDPI returns the print-optimization upscale factor for a target DPI.
func ScaleForDPI(dpi int) int {
	switch dpi {
	case 300:
		return 2
	case 600:
		return 4
	default:
		return 1
	}
}
