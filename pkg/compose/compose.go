// Package compose rasterizes layout documents onto a background image.
//
// The compositor is the heart of the export path. It takes a background, an
// optional foreground (the user's own photo) and the ordered elements of a
// [layout.Document], and paints them onto a fresh canvas of exactly the
// requested pixel size:
//
//	c := compose.NewCompositor(nil, logger)
//	res, err := c.Compose(compose.Request{
//	    Background: bg,
//	    Foreground: photo,
//	    Elements:   doc.Layout,
//	    Size:       geometry.Size{Width: 1080, Height: 1350},
//	})
//
// All element geometry is expressed in percentages of the output canvas, so
// the same document composes identically at any resolution. Elements are
// painted in list order; later elements cover earlier ones.
//
// # Text
//
// A text element's fontSize is a percentage of the canvas height. Its
// position is the anchor point: left/center/right alignment decides whether
// the text grows right, is centered on, or grows left from the anchor's x,
// and the anchor's y is the alphabetic baseline of the first line. Lines are
// split on explicit line breaks only and advance by 1.2 times the font size.
//
// # Images
//
// Image elements place the foreground with its top-left corner at the anchor.
// An "auto" height follows the foreground's own aspect ratio. Without a
// foreground image elements are skipped.
package compose

import (
	"bytes"
	"image"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/fonts"
	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/layout"

	// Decoders for ComposeBytes.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// LineHeight is the baseline-to-baseline advance as a multiple of font size.
const LineHeight = 1.2

// Request is a single composite job.
type Request struct {
	Background image.Image
	Foreground image.Image // optional
	Elements   []layout.Element
	Size       geometry.Size
}

// Placement is the resolved pixel geometry of one painted element.
// For text, X and Y are the anchor and Width/Height the measured block.
// For images, X and Y are the top-left corner.
type Placement struct {
	Index    int
	Kind     string
	X, Y     float64
	Width    float64
	Height   float64
	FontSize float64
	Align    string
	Lines    int
}

// Result is a finished composite.
type Result struct {
	Image      *image.RGBA
	Placements []Placement
}

// Compositor paints layout documents. The zero value is not usable; use
// [NewCompositor].
type Compositor struct {
	Fonts  *fonts.Registry
	Logger *log.Logger
}

// NewCompositor creates a compositor. A nil registry selects [fonts.Default];
// a nil logger discards output.
func NewCompositor(registry *fonts.Registry, logger *log.Logger) *Compositor {
	if registry == nil {
		registry = fonts.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Compositor{Fonts: registry, Logger: logger}
}

// Compose renders req onto a new canvas. Inputs are never modified.
func (c *Compositor) Compose(req Request) (*Result, error) {
	if err := req.Size.Validate(); err != nil {
		return nil, err
	}
	if req.Background == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "background image is required")
	}

	W, H := req.Size.Width, req.Size.Height
	bg := imaging.Resize(req.Background, W, H, imaging.Lanczos)
	dc := gg.NewContextForImage(bg)

	res := &Result{}
	for i, el := range req.Elements {
		var (
			p   Placement
			ok  bool
			err error
		)
		switch {
		case el.Text != nil:
			p, ok = c.drawText(dc, el.Text, W, H)
		case el.Image != nil:
			if p, ok, err = c.drawImage(dc, el.Image, req.Foreground, W, H); err != nil {
				return nil, errs.Wrap(errs.ErrCodeCanvasUnavailable, err, "element %d", i)
			}
		}
		if !ok {
			c.Logger.Debug("skipped element", "index", i, "kind", el.Kind())
			continue
		}
		p.Index = i
		res.Placements = append(res.Placements, p)
	}

	res.Image = dc.Image().(*image.RGBA)
	return res, nil
}

// ComposeBytes decodes background and optional foreground bytes and composes
// them. Undecodable bytes are reported as AssetLoad errors before any
// drawing happens.
func (c *Compositor) ComposeBytes(background, foreground []byte, elements []layout.Element, size geometry.Size) (*Result, error) {
	bg, _, err := image.Decode(bytes.NewReader(background))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeAssetLoad, err, "decode background")
	}
	var fg image.Image
	if len(foreground) > 0 {
		if fg, _, err = image.Decode(bytes.NewReader(foreground)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeAssetLoad, err, "decode foreground")
		}
	}
	return c.Compose(Request{Background: bg, Foreground: fg, Elements: elements, Size: size})
}

func (c *Compositor) drawText(dc *gg.Context, t *layout.TextElement, W, H int) (Placement, bool) {
	px := t.FontSize / 100 * float64(H)
	if px < 1 || t.Text == "" {
		return Placement{}, false
	}

	face := c.Fonts.Face(t.FontFamily, t.FontWeight, px)
	defer face.Close()
	dc.SetFontFace(face)
	dc.SetColor(ColorOrDefault(t.Color))

	x := t.Position.Left.Of(W)
	y := t.Position.Top.Of(H)
	ax := anchorX(t.TextAlign)

	lines := splitLines(t.Text)
	var widest float64
	for i, line := range lines {
		if w, _ := dc.MeasureString(line); w > widest {
			widest = w
		}
		dc.DrawStringAnchored(line, x, y+float64(i)*LineHeight*px, ax, 0)
	}

	return Placement{
		Kind:     layout.KindText,
		X:        x,
		Y:        y,
		Width:    widest,
		Height:   px + float64(len(lines)-1)*LineHeight*px,
		FontSize: px,
		Align:    alignOrDefault(t.TextAlign),
		Lines:    len(lines),
	}, true
}

// drawImage fits fg into the slot. A slot whose pixel size exceeds the
// canvas limits is an error rather than an allocation.
func (c *Compositor) drawImage(dc *gg.Context, im *layout.ImageElement, fg image.Image, W, H int) (Placement, bool, error) {
	if fg == nil {
		return Placement{}, false, nil
	}
	fb := fg.Bounds()
	if fb.Dx() == 0 || fb.Dy() == 0 {
		return Placement{}, false, nil
	}

	w := im.Size.Width.Of(W)
	var h float64
	if im.Size.Height.Auto {
		h = w * float64(fb.Dy()) / float64(fb.Dx())
	} else {
		h = im.Size.Height.Value.Of(H)
	}
	if math.IsNaN(w) || math.IsNaN(h) || w < 0.5 || h < 0.5 {
		return Placement{}, false, nil
	}
	if w > geometry.MaxCanvasDimension || h > geometry.MaxCanvasDimension {
		return Placement{}, false, errs.New(errs.ErrCodeCanvasUnavailable, "image slot %.0fx%.0f exceeds %d pixels per side", w, h, geometry.MaxCanvasDimension)
	}
	pw, ph := geometry.Round(w), geometry.Round(h)
	if err := (geometry.Size{Width: pw, Height: ph}).Validate(); err != nil {
		return Placement{}, false, err
	}

	x := im.Position.Left.Of(W)
	y := im.Position.Top.Of(H)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return Placement{}, false, nil
	}
	scaled := imaging.Resize(fg, pw, ph, imaging.Lanczos)
	dc.DrawImage(scaled, geometry.Round(x), geometry.Round(y))

	return Placement{
		Kind:   layout.KindImage,
		X:      x,
		Y:      y,
		Width:  float64(pw),
		Height: float64(ph),
	}, true, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

func anchorX(align string) float64 {
	switch align {
	case layout.AlignCenter:
		return 0.5
	case layout.AlignRight:
		return 1
	default:
		return 0
	}
}

func alignOrDefault(align string) string {
	if align == "" {
		return layout.AlignLeft
	}
	return align
}
