package upscale

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	errs "github.com/matzehuels/designstudio/pkg/errors"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func TestUpscaleDimensions(t *testing.T) {
	tests := []struct {
		w, h, factor int
	}{
		{10, 10, 2},
		{37, 21, 3},
		{1, 1, 4},
		{64, 16, 1},
	}
	for _, tt := range tests {
		out, err := Upscale(gradient(tt.w, tt.h), tt.factor)
		if err != nil {
			t.Fatalf("Upscale(%dx%d, %d) error: %v", tt.w, tt.h, tt.factor, err)
		}
		b := out.Bounds()
		if b.Dx() != tt.w*tt.factor || b.Dy() != tt.h*tt.factor {
			t.Errorf("Upscale(%dx%d, %d) = %dx%d", tt.w, tt.h, tt.factor, b.Dx(), b.Dy())
		}
	}
}

func TestUpscaleFactorOneIsIdentity(t *testing.T) {
	src := gradient(23, 17)
	out, err := Upscale(src, 1)
	if err != nil {
		t.Fatalf("Upscale error: %v", err)
	}
	for y := 0; y < 17; y++ {
		for x := 0; x < 23; x++ {
			if got, want := out.NRGBAAt(x, y), src.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	out.SetNRGBA(0, 0, color.NRGBA{})
	if src.NRGBAAt(0, 0) == (color.NRGBA{}) {
		t.Error("Upscale(1) should return a copy, not the source")
	}
}

func TestUpscaleSmoothes(t *testing.T) {
	// A two-pixel black/white image must not be enlarged by pixel replication.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := Upscale(src, 4)
	if err != nil {
		t.Fatalf("Upscale error: %v", err)
	}
	mid := out.NRGBAAt(3, 0).R
	if mid == 0 || mid == 255 {
		t.Errorf("pixel next to the edge = %d, want an interpolated value", mid)
	}
}

func TestUpscaleErrors(t *testing.T) {
	for _, f := range []int{0, -2} {
		if _, err := Upscale(gradient(2, 2), f); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Upscale(factor %d) error = %v, want INVALID_INPUT", f, err)
		}
	}
	if _, err := UpscaleBytes([]byte("nope"), 2); !errs.Is(err, errs.ErrCodeImageDecode) {
		t.Errorf("UpscaleBytes(garbage) error = %v, want IMAGE_DECODE", err)
	}
	if _, err := Upscale(gradient(20000, 1), 2); !errs.Is(err, errs.ErrCodeCanvasUnavailable) {
		t.Errorf("oversized Upscale error = %v, want CANVAS_UNAVAILABLE", err)
	}
}

func TestUpscaleBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(8, 6)); err != nil {
		t.Fatal(err)
	}
	data, err := UpscaleBytes(buf.Bytes(), 2)
	if err != nil {
		t.Fatalf("UpscaleBytes error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("output = %dx%d, want 16x12", b.Dx(), b.Dy())
	}
}
