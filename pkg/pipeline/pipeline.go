// Package pipeline orchestrates the studio's creative operations.
//
// Each operation is a short sequence of stages that mixes local raster work
// with calls to the generative collaborators in [ai]. The package centralizes
// quota checks, caching and stage instrumentation so that the CLI and any
// other entry point behave the same way.
//
// # Operations
//
//   - Generate: optionally enhance the prompt, then create an image
//   - Edit: apply an instruction to an existing image
//   - Reformat: pad to a new aspect ratio and let the model fill the margins
//   - Clarify / Design / Refine: the layout brief workflow
//   - Export: compose and encode the final file, with artifact caching
//
// Operations that consume a daily allowance check it before doing any work
// and consume one unit only after they succeed.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger,
//	    pipeline.WithAI(client),
//	    pipeline.WithUsage(usage.NewTracker(st)),
//	)
//	defer runner.Close()
//
//	design, err := runner.Design(ctx, pipeline.DesignOptions{
//	    Brief:       "spring sale poster for a flower shop",
//	    Constraints: ai.Constraints{AspectRatio: geometry.Portrait},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := runner.Export(ctx, pipeline.ExportOptions{
//	    Background: design.Background,
//	    Document:   design.Document,
//	    Format:     export.FormatJPEG,
//	})
package pipeline

import (
	"strings"
	"time"

	"github.com/matzehuels/designstudio/pkg/ai"
	"github.com/matzehuels/designstudio/pkg/cache"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/export"
	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/observability"
	"github.com/matzehuels/designstudio/pkg/usage"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultRatio is used when an operation is given no aspect ratio.
	DefaultRatio = geometry.Square

	// DefaultEditMIME is assumed for edit inputs without a content type.
	DefaultEditMIME = "image/png"
)

// =============================================================================
// Options
// =============================================================================

// ExportOptions configures Runner.Export.
type ExportOptions struct {
	// Background is the encoded base image. Required.
	Background []byte `json:"-"`
	// Foreground fills the image slots of Document. Optional.
	Foreground []byte `json:"-"`
	// Document routes the export through the compositor when set.
	Document *layout.Document `json:"document,omitempty"`

	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	LockAspect bool          `json:"lock_aspect,omitempty"`
	Format     export.Format `json:"format,omitempty"`
	Quality    int           `json:"quality,omitempty"`

	ProductName string `json:"product_name,omitempty"`

	// PrintDPI upscales the background by geometry.ScaleForDPI before
	// composing. Zero disables print optimization.
	PrintDPI int `json:"print_dpi,omitempty"`

	// Refresh bypasses the artifact cache.
	Refresh bool `json:"-"`

	validated bool
}

// GenerateOptions configures Runner.Generate.
type GenerateOptions struct {
	Prompt string
	// Ratio may be any "W:H"; it is mapped to the nearest named ratio.
	Ratio geometry.AspectRatio
	// Enhance rewrites the prompt before generating.
	Enhance bool
	Framing ai.Framing

	validated bool
}

// EditOptions configures Runner.Edit.
type EditOptions struct {
	Prompt   string
	Image    []byte
	MIMEType string

	validated bool
}

// ReformatOptions configures Runner.Reformat.
type ReformatOptions struct {
	Image  []byte
	Target geometry.AspectRatio
	// PrintDPI asks the model for print detail and upscales the result.
	PrintDPI int

	validated bool
}

// DesignOptions configures Runner.Design.
type DesignOptions struct {
	Brief string
	// Answers to clarification questions are appended to Brief.
	Answers     []ai.Answer
	Constraints ai.Constraints
	// SkipBackground returns the document without generating an image.
	SkipBackground bool

	validated bool
}

// =============================================================================
// Results
// =============================================================================

// Stats records how long each stage of an operation took.
type Stats struct {
	Stages map[observability.Stage]time.Duration
	Total  time.Duration
}

func (s *Stats) record(stage observability.Stage, d time.Duration) {
	if s.Stages == nil {
		s.Stages = make(map[observability.Stage]time.Duration)
	}
	s.Stages[stage] += d
}

// CacheInfo reports which cached results were reused.
type CacheInfo struct {
	ArtifactHit bool // Whether the encoded export came from cache
	UpscaleHit  bool // Whether the print upscale came from cache
}

// Result is the outcome of an export.
type Result struct {
	Artifact *export.Artifact
	// Warnings lists non-fatal problems, such as a skipped print upscale.
	Warnings  []string
	Stats     Stats
	CacheInfo CacheInfo
}

// ImageResult is the outcome of Generate, Edit and Reformat.
type ImageResult struct {
	Image []byte
	// Prompt is the prompt actually sent, after enhancement.
	Prompt string
	// Ratio is the named ratio the image was requested at.
	Ratio    geometry.AspectRatio
	Warnings []string
	// Usage is the allowance left after the operation, or nil without a tracker.
	Usage *usage.State
	Stats Stats
}

// DesignResult is the outcome of Design and Refine.
type DesignResult struct {
	Document   *layout.Document
	Background []byte
	Usage      *usage.State
	Stats      Stats
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *ExportOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Background) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "background image is required")
	}
	f, err := export.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if o.Format == export.FormatJPEG && o.Quality == 0 {
		o.Quality = export.DefaultJPEGQuality
	}
	if o.Format == export.FormatPNG {
		o.Quality = 0
	}
	if o.ProductName == "" {
		o.ProductName = export.DefaultProductName
	}
	if err := validatePrintDPI(o.PrintDPI); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *GenerateOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Prompt = strings.TrimSpace(o.Prompt)
	if o.Prompt == "" {
		return errs.New(errs.ErrCodeInvalidInput, "prompt is required")
	}
	if o.Ratio == "" {
		o.Ratio = DefaultRatio
	}
	r, err := namedRatio(o.Ratio)
	if err != nil {
		return err
	}
	o.Ratio = r
	if o.Framing == "" {
		o.Framing = ai.FramingAuto
	}
	o.validated = true
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *EditOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Prompt = strings.TrimSpace(o.Prompt)
	if o.Prompt == "" {
		return errs.New(errs.ErrCodeInvalidInput, "edit instruction is required")
	}
	if len(o.Image) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "an image to edit is required")
	}
	if o.MIMEType == "" {
		o.MIMEType = DefaultEditMIME
	}
	o.validated = true
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *ReformatOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Image) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "an image to reformat is required")
	}
	if o.Target == "" {
		return errs.New(errs.ErrCodeInvalidRatio, "a target aspect ratio is required")
	}
	if _, err := geometry.RatioToNumber(o.Target); err != nil {
		return err
	}
	if err := validatePrintDPI(o.PrintDPI); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *DesignOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Brief = strings.TrimSpace(o.Brief)
	if o.Brief == "" {
		return errs.New(errs.ErrCodeInvalidInput, "a brief is required")
	}
	c := &o.Constraints
	if c.Target == "" {
		c.Target = ai.TargetSocial
	}
	if c.Target == ai.TargetPrint && c.PrintDPI == 0 {
		c.PrintDPI = 300
	}
	if err := validatePrintDPI(c.PrintDPI); err != nil {
		return err
	}
	if c.CustomSize != nil {
		if !(c.CustomSize.Width > 0) || !(c.CustomSize.Height > 0) {
			return errs.New(errs.ErrCodeInvalidInput, "custom size must be positive")
		}
	} else {
		if c.AspectRatio == "" {
			c.AspectRatio = DefaultRatio
		}
		if _, err := geometry.RatioToNumber(c.AspectRatio); err != nil {
			return err
		}
	}
	if len(c.UserImage) > 0 && c.UserImageMIME == "" {
		c.UserImageMIME = DefaultEditMIME
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for the encoded export.
func (o *ExportOptions) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      string(o.Format),
		Quality:     o.Quality,
		Width:       o.Width,
		Height:      o.Height,
		LockAspect:  o.LockAspect,
		ProductName: o.ProductName,
		PrintDPI:    o.PrintDPI,
	}
}

// BackgroundRatio returns the named ratio a background should be generated at.
func (o *DesignOptions) BackgroundRatio() geometry.AspectRatio {
	c := o.Constraints
	if c.CustomSize != nil && c.CustomSize.Height > 0 {
		return geometry.NearestNamedRatio(c.CustomSize.Width / c.CustomSize.Height)
	}
	r, err := namedRatio(c.AspectRatio)
	if err != nil {
		return DefaultRatio
	}
	return r
}

// =============================================================================
// Validation Functions
// =============================================================================

func validatePrintDPI(dpi int) error {
	switch dpi {
	case 0, 300, 600:
		return nil
	default:
		return errs.New(errs.ErrCodeInvalidInput, "print DPI %d is not supported (want 300 or 600)", dpi)
	}
}

// namedRatio returns r when it is named, or the nearest named ratio.
func namedRatio(r geometry.AspectRatio) (geometry.AspectRatio, error) {
	if r.IsNamed() {
		return r, nil
	}
	v, err := geometry.RatioToNumber(r)
	if err != nil {
		return "", err
	}
	return geometry.NearestNamedRatio(v), nil
}
