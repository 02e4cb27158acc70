// Package upscale enlarges images by integer factors with Lanczos resampling.
package upscale

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/geometry"

	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

// Upscale returns img enlarged to exactly (w*factor, h*factor).
// A factor of 1 returns a pixel-identical copy.
func Upscale(img image.Image, factor int) (*image.NRGBA, error) {
	if factor < 1 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "upscale factor %d must be a positive integer", factor)
	}
	b := img.Bounds()
	size := geometry.Size{Width: b.Dx(), Height: b.Dy()}.Scale(factor)
	if err := size.Validate(); err != nil {
		return nil, err
	}
	if factor == 1 {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, size.Width, size.Height, imaging.Lanczos), nil
}

// UpscaleBytes decodes data, upscales it and re-encodes the result as PNG.
func UpscaleBytes(data []byte, factor int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeImageDecode, err, "decode image")
	}
	out, err := Upscale(img, factor)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode upscaled image")
	}
	return buf.Bytes(), nil
}
