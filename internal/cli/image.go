package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designstudio/pkg/ai"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/geometry"
	studioio "github.com/matzehuels/designstudio/pkg/io"
	"github.com/matzehuels/designstudio/pkg/outpaint"
	"github.com/matzehuels/designstudio/pkg/pipeline"
	"github.com/matzehuels/designstudio/pkg/upscale"
)

// =============================================================================
// Local Image Commands
// =============================================================================

// outpaintCommand creates the outpaint command, which pads an image with
// the marker color without calling any model.
func (c *CLI) outpaintCommand() *cobra.Command {
	var (
		ratio, output string
		mask          bool
	)
	cmd := &cobra.Command{
		Use:   "outpaint [image]",
		Short: "Pad an image to an aspect ratio with the outpaint marker",
		Long: `Pad an image to a new aspect ratio without scaling it.

The new area is filled with magenta (#ff00ff), the marker an image model is
asked to paint over. Use 'reformat' to run the model as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := geometry.ParseRatio(ratio)
			if err != nil {
				return err
			}
			data, err := studioio.LoadAsset(args[0])
			if err != nil {
				return err
			}
			res, err := outpaint.PrepareBytes(data, target)
			if err != nil {
				return err
			}
			if output == "" {
				output = derivedPath(args[0], "-"+ratioSlug(target), ".png")
			}
			if err := writeFile(output, res.PNG); err != nil {
				return err
			}
			b := res.Image.Bounds()
			printSuccess("Padded to %s", target)
			printStats(b.Dx(), b.Dy(), len(res.PNG), false)
			printFile(output)
			if mask {
				m, err := res.MaskPNG()
				if err != nil {
					return err
				}
				maskPath := derivedPath(output, "-mask", ".png")
				if err := writeFile(maskPath, m); err != nil {
					return err
				}
				printFile(maskPath)
			}
			if res.MarkerCollisions > 0 {
				printWarning("%d source pixels already use the marker color %s", res.MarkerCollisions, outpaint.MarkerHex)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&ratio, "ratio", "r", string(geometry.Square), "target aspect ratio (W:H)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <image>-<ratio>.png)")
	cmd.Flags().BoolVar(&mask, "mask", false, "also write the padding mask")
	return cmd
}

// upscaleCommand creates the upscale command.
func (c *CLI) upscaleCommand() *cobra.Command {
	var (
		factor, dpi int
		output      string
	)
	cmd := &cobra.Command{
		Use:   "upscale [image]",
		Short: "Enlarge an image by an integer factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dpi > 0 {
				factor = geometry.ScaleForDPI(dpi)
			}
			data, err := studioio.LoadAsset(args[0])
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			out, err := upscale.UpscaleBytes(data, factor)
			if err != nil {
				return err
			}
			if output == "" {
				output = derivedPath(args[0], fmt.Sprintf("@%dx", factor), ".png")
			}
			if err := writeFile(output, out); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Upscaled %d×", factor))
			printFile(output)
			return nil
		},
	}
	cmd.Flags().IntVarP(&factor, "factor", "x", 2, "scale factor")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "derive the factor from a print DPI (300 → 2×, 600 → 4×)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <image>@<factor>x.png)")
	return cmd
}

// =============================================================================
// Generative Image Commands
// =============================================================================

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		opts           pipeline.GenerateOptions
		ratio, framing string
		output         string
	)
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate an image from a prompt",
		Long: `Generate an image from a prompt.

Any W:H ratio is accepted and mapped to the nearest supported one
(1:1, 16:9, 9:16, 4:3, 3:4). With --enhance the prompt is first rewritten
into a detailed photographic description.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ai.ParseFraming(framing)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid --framing")
			}
			opts.Prompt = strings.Join(args, " ")
			opts.Ratio = geometry.AspectRatio(ratio)
			opts.Framing = f
			return c.runImage(cmd.Context(), "Generating image...", "Generation failed", output, "generated",
				func(ctx context.Context, r *runner) (*pipeline.ImageResult, error) {
					return r.Generate(ctx, opts)
				})
		},
	}
	cmd.Flags().StringVarP(&ratio, "ratio", "r", string(geometry.Square), "aspect ratio (W:H)")
	cmd.Flags().BoolVarP(&opts.Enhance, "enhance", "e", false, "rewrite the prompt before generating")
	cmd.Flags().StringVar(&framing, "framing", "auto", "framing hint for --enhance: auto, close-up, wide, product")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: generated.png)")
	return cmd
}

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "edit [image] [instruction]",
		Short: "Edit an image with a text instruction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := studioio.LoadAsset(args[0])
			if err != nil {
				return err
			}
			opts := pipeline.EditOptions{
				Prompt:   strings.Join(args[1:], " "),
				Image:    data,
				MIMEType: studioio.DetectMIMEType(data),
			}
			if output == "" {
				output = derivedPath(args[0], "-edited", ".png")
			}
			return c.runImage(cmd.Context(), "Editing image...", "Edit failed", output, "",
				func(ctx context.Context, r *runner) (*pipeline.ImageResult, error) {
					return r.Edit(ctx, opts)
				})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <image>-edited.png)")
	return cmd
}

// reformatCommand creates the reformat command.
func (c *CLI) reformatCommand() *cobra.Command {
	var (
		ratio, output string
		dpi           int
	)
	cmd := &cobra.Command{
		Use:   "reformat [image]",
		Short: "Extend an image to a new aspect ratio",
		Long: `Extend an image to a new aspect ratio.

The image is padded with the outpaint marker and an image model paints the
new area so the scene continues naturally. With --print-dpi the model is
asked for print detail and the result is upscaled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := geometry.ParseRatio(ratio)
			if err != nil {
				return err
			}
			data, err := studioio.LoadAsset(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = derivedPath(args[0], "-"+ratioSlug(target), ".png")
			}
			opts := pipeline.ReformatOptions{Image: data, Target: target, PrintDPI: dpi}
			return c.runImage(cmd.Context(), "Reformatting...", "Reformat failed", output, "",
				func(ctx context.Context, r *runner) (*pipeline.ImageResult, error) {
					return r.Reformat(ctx, opts)
				})
		},
	}
	cmd.Flags().StringVarP(&ratio, "ratio", "r", string(geometry.Landscape), "target aspect ratio (W:H)")
	cmd.Flags().IntVar(&dpi, "print-dpi", 0, "optimize for print at 300 or 600 DPI")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <image>-<ratio>.png)")
	return cmd
}

// runImage runs a metered generative operation and writes its image.
func (c *CLI) runImage(ctx context.Context, msg, failMsg, output, stem string, op func(context.Context, *runner) (*pipeline.ImageResult, error)) error {
	r, err := c.newRunner(ctx, runnerOpts{ai: true, usage: true})
	if err != nil {
		return err
	}
	defer r.Close()

	var res *pipeline.ImageResult
	err = c.spin(ctx, msg, failMsg, func() error {
		var err error
		res, err = op(ctx, r)
		return err
	})
	if err != nil {
		return err
	}

	if output == "" {
		output = stem + imageExt(res.Image)
	}
	if err := writeFile(output, res.Image); err != nil {
		return err
	}
	printSuccess("Wrote %s", filepath.Base(output))
	printFile(output)
	if res.Prompt != "" {
		c.Logger.Debug("prompt", "text", res.Prompt)
	}
	printWarnings(res.Warnings)
	printUsage(res.Usage)
	return nil
}

// =============================================================================
// File Helpers
// =============================================================================

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// derivedPath returns src with its extension replaced by suffix+ext.
func derivedPath(src, suffix, ext string) string {
	if strings.HasPrefix(src, "data:") {
		src = "image"
	}
	return strings.TrimSuffix(src, filepath.Ext(src)) + suffix + ext
}

func ratioSlug(r geometry.AspectRatio) string {
	return strings.ReplaceAll(string(r), ":", "x")
}

func imageExt(data []byte) string {
	switch studioio.DetectMIMEType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
