// Package export turns a composition into a downloadable file.
//
// An export takes the background raster, the optional foreground and the
// optional layout document and produces encoded bytes at the requested
// resolution:
//
//   - With a layout document the export routes through the compositor, so
//     every element is rasterized at the export size rather than scaled from
//     a preview.
//   - Without one the single source image is resized directly.
//
// The output size follows [geometry.ResolveExportSize]: with the aspect lock
// on, the dimension the caller set drives the other one.
//
// Every failure is reported as an EXPORT_FAILED error with the underlying
// cause kept in the chain, so callers can still ask whether the export failed
// because an asset could not be decoded:
//
//	art, err := exporter.Export(ctx, req)
//	if errors.Is(err, errors.ErrCodeAssetLoad) {
//	    // the background or foreground bytes were bad
//	}
//
// Identical requests produce byte-identical output.
package export

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/designstudio/pkg/compose"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/layout"

	_ "golang.org/x/image/webp"
)

// Format is an output file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

const (
	// DefaultJPEGQuality is used when Request.Quality is zero.
	DefaultJPEGQuality = 92

	// DefaultProductName is the file stem used when none is given.
	DefaultProductName = "design-studio"
)

// ParseFormat accepts "png", "jpeg" and "jpg" in any case. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported export format %q (want png or jpeg)", s)
	}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// MIMEType returns the content type of the format.
func (f Format) MIMEType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Request describes one export.
type Request struct {
	// Background is the encoded base image. Required.
	Background []byte
	// Foreground is the encoded user image placed into image slots. Optional.
	Foreground []byte
	// Document routes the export through the compositor when set.
	Document *layout.Document

	// Width and Height are the requested output size. Zero falls back to
	// the background's own size, or is derived when LockAspect is set.
	Width, Height int
	LockAspect    bool

	Format      Format
	Quality     int // JPEG only, 1–100; 0 selects DefaultJPEGQuality
	ProductName string
}

// Artifact is an encoded export.
type Artifact struct {
	Data     []byte
	Filename string
	MIMEType string
	Width    int
	Height   int
}

// Exporter runs exports. It is safe for concurrent use.
type Exporter struct {
	Compositor *compose.Compositor
	Logger     *log.Logger
}

// NewExporter creates an exporter. A nil compositor uses the default font
// registry; a nil logger discards output.
func NewExporter(c *compose.Compositor, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if c == nil {
		c = compose.NewCompositor(nil, logger)
	}
	return &Exporter{Compositor: c, Logger: logger}
}

// Export renders and encodes req.
func (e *Exporter) Export(ctx context.Context, req Request) (*Artifact, error) {
	art, err := e.export(ctx, req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeExport, err, "export failed")
	}
	return art, nil
}

func (e *Exporter) export(ctx context.Context, req Request) (*Artifact, error) {
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}
	quality, err := resolveQuality(format, req.Quality)
	if err != nil {
		return nil, err
	}
	name := req.ProductName
	if name == "" {
		name = DefaultProductName
	}
	if err := errs.ValidateProductName(name); err != nil {
		return nil, err
	}
	if len(req.Background) == 0 {
		return nil, errs.New(errs.ErrCodeAssetLoad, "no background image to export")
	}

	bg, _, err := image.Decode(bytes.NewReader(req.Background))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeAssetLoad, err, "decode background")
	}
	var fg image.Image
	if len(req.Foreground) > 0 {
		if fg, _, err = image.Decode(bytes.NewReader(req.Foreground)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeAssetLoad, err, "decode foreground")
		}
	}

	b := bg.Bounds()
	size, err := geometry.ResolveExportSize(geometry.Size{Width: b.Dx(), Height: b.Dy()}, req.Width, req.Height, req.LockAspect)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out image.Image
	if req.Document != nil {
		if err := req.Document.Validate(); err != nil {
			return nil, err
		}
		res, err := e.Compositor.Compose(compose.Request{
			Background: bg,
			Foreground: fg,
			Elements:   req.Document.Layout,
			Size:       size,
		})
		if err != nil {
			return nil, err
		}
		out = res.Image
		e.Logger.Debug("composed layout", "size", size, "elements", len(req.Document.Layout), "placed", len(res.Placements))
	} else {
		out = imaging.Resize(bg, size.Width, size.Height, imaging.Lanczos)
	}

	data, err := Encode(out, format, quality)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Data:     data,
		Filename: Filename(name, format),
		MIMEType: format.MIMEType(),
		Width:    size.Width,
		Height:   size.Height,
	}, nil
}

func resolveQuality(format Format, q int) (int, error) {
	if format != FormatJPEG {
		return 0, nil
	}
	if q == 0 {
		return DefaultJPEGQuality, nil
	}
	if q < 1 || q > 100 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "jpeg quality %d outside 1-100", q)
	}
	return q, nil
}

// Encode encodes img as PNG or JPEG at the given quality.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, errs.Wrap(errs.ErrCodeExport, err, "encode png")
		}
	case FormatJPEG:
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeExport, err, "encode jpeg")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported export format %q", format)
	}
	return buf.Bytes(), nil
}

// Filename returns "<product>.<ext>".
func Filename(product string, format Format) string {
	if product == "" {
		product = DefaultProductName
	}
	return product + "." + format.Ext()
}

// Describe rebuilds the artifact metadata for already encoded data.
func Describe(data []byte, product string, format Format) (*Artifact, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeExport, err, "read encoded export")
	}
	return &Artifact{
		Data:     data,
		Filename: Filename(product, format),
		MIMEType: format.MIMEType(),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Save writes the artifact into dir and returns the file path.
func Save(dir string, art *Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.ErrCodeExport, err, "create output directory")
	}
	path := filepath.Join(dir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", errs.Wrap(errs.ErrCodeExport, err, "write %s", path)
	}
	return path, nil
}
