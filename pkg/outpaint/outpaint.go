// Package outpaint prepares images for aspect-ratio reformatting.
//
// Reformatting an image to a new aspect ratio is a two-step job. This package
// does the local step: it grows the canvas to the target ratio without
// scaling the source, centers the source on it and fills the new area with
// the marker color #ff00ff. The padded PNG is then sent to an image-editing
// model together with [Prompt], which instructs the model to replace only
// the magenta areas.
//
// Pixels of exactly the marker color mean "outside the original photograph".
// A source that already contains marker-colored pixels is ambiguous to the
// model; [Result.MarkerCollisions] counts them so callers can warn. [Result.Mask]
// marks the synthesized region explicitly for models that accept masks.
package outpaint

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/geometry"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

// Marker is the fill color for areas the model should synthesize.
var Marker = color.NRGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}

// MarkerHex is Marker as a CSS hex string.
const MarkerHex = "#ff00ff"

// Result is a padded canvas ready for an edit call.
type Result struct {
	// Image is the padded canvas.
	Image *image.NRGBA

	// PNG is Image encoded as PNG.
	PNG []byte

	// Offset is where the source's top-left corner sits on the canvas.
	Offset image.Point

	// Mask is opaque where the canvas was padded and transparent over the source.
	Mask *image.Alpha

	// MarkerCollisions counts source pixels that already equal the marker.
	MarkerCollisions int
}

// MIMEType is the content type of Result.PNG.
func (r *Result) MIMEType() string { return "image/png" }

// CanvasSize returns the padded canvas size for a source of size src.
// The source is never scaled: the canvas keeps one source dimension and
// grows the other until the target ratio is reached.
func CanvasSize(src geometry.Size, target geometry.AspectRatio) (geometry.Size, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return geometry.Size{}, errs.New(errs.ErrCodeImageDecode, "source image has no pixels")
	}
	targetRatio, err := geometry.RatioToNumber(target)
	if err != nil {
		return geometry.Size{}, err
	}
	w, h := float64(src.Width), float64(src.Height)
	if targetRatio > w/h {
		return geometry.Size{Width: geometry.Round(h * targetRatio), Height: src.Height}, nil
	}
	return geometry.Size{Width: src.Width, Height: geometry.Round(w / targetRatio)}, nil
}

// Prepare pads img to the target aspect ratio.
func Prepare(img image.Image, target geometry.AspectRatio) (*Result, error) {
	b := img.Bounds()
	src := geometry.Size{Width: b.Dx(), Height: b.Dy()}
	size, err := CanvasSize(src, target)
	if err != nil {
		return nil, err
	}
	if err := size.Validate(); err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(Marker), image.Point{}, draw.Src)

	off := image.Pt(
		geometry.Round(float64(size.Width-src.Width)/2),
		geometry.Round(float64(size.Height-src.Height)/2),
	)
	dst := image.Rectangle{Min: off, Max: off.Add(b.Size())}
	draw.Draw(canvas, dst, img, b.Min, draw.Over)

	mask := image.NewAlpha(canvas.Bounds())
	draw.Draw(mask, mask.Bounds(), image.Opaque, image.Point{}, draw.Src)
	draw.Draw(mask, dst, image.Transparent, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errs.Wrap(errs.ErrCodeCanvasUnavailable, err, "encode padded canvas")
	}

	return &Result{
		Image:            canvas,
		PNG:              buf.Bytes(),
		Offset:           off,
		Mask:             mask,
		MarkerCollisions: countMarker(img),
	}, nil
}

// PrepareBytes decodes an encoded image and pads it to the target ratio.
func PrepareBytes(data []byte, target geometry.AspectRatio) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeImageDecode, err, "decode source image")
	}
	return Prepare(img, target)
}

// MaskPNG encodes the mask as a grayscale PNG.
func (r *Result) MaskPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Mask); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

func countMarker(img image.Image) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c == Marker {
				n++
			}
		}
	}
	return n
}

// Prompt returns the inpainting instruction sent with a padded canvas.
// A positive printDPI asks the model to also re-render at print quality.
func Prompt(target geometry.AspectRatio, printDPI int) string {
	base := fmt.Sprintf("Inpainting task: the provided image has magenta (%s) areas. "+
		"Replace ONLY the magenta areas by extending the main subject and the background "+
		"so the picture fills a %s frame.", MarkerHex, target)
	if printDPI > 0 {
		base = fmt.Sprintf("Inpainting and resolution enhancement task: the provided image has magenta (%s) areas. "+
			"Replace ONLY the magenta areas by extending the main subject and the background "+
			"so the picture fills a %s frame. At the same time, recreate the whole image with "+
			"photorealistic detail and very high resolution, suitable for large-format printing (%d DPI).",
			MarkerHex, target, printDPI)
	}
	return base + " The final image must not contain any magenta."
}
