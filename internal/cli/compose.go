package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designstudio/pkg/export"
	studioio "github.com/matzehuels/designstudio/pkg/io"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/pipeline"
)

// exportFlags are the output flags shared by compose and design.
type exportFlags struct {
	width, height int
	lock          bool
	format        string
	quality       int
	printDPI      int
	outputDir     string
	name          string
	noCache       bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "output width in pixels (default: background width)")
	cmd.Flags().IntVar(&f.height, "height", 0, "output height in pixels (default: background height)")
	cmd.Flags().BoolVar(&f.lock, "lock", true, "keep the aspect ratio when only one dimension is set")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: png (default), jpeg")
	cmd.Flags().IntVarP(&f.quality, "quality", "q", 0, "JPEG quality 1-100 (default 92)")
	cmd.Flags().IntVar(&f.printDPI, "print-dpi", 0, "upscale for print at 300 or 600 DPI")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "directory to write to (default: current directory)")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "product name used as the file name (default design-studio)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// exportOptions merges the flags over the configured export defaults.
func (c *CLI) exportOptions(f *exportFlags) (pipeline.ExportOptions, string, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.ExportOptions{}, "", err
	}
	opts := pipeline.ExportOptions{
		Width:       f.width,
		Height:      f.height,
		LockAspect:  f.lock,
		Format:      export.Format(firstNonEmpty(f.format, cfg.Export.Format)),
		Quality:     f.quality,
		ProductName: firstNonEmpty(f.name, cfg.Export.ProductName),
		PrintDPI:    f.printDPI,
	}
	if opts.Quality == 0 {
		opts.Quality = cfg.Export.Quality
	}
	if format, err := export.ParseFormat(string(opts.Format)); err == nil && format == export.FormatPNG {
		opts.Quality = 0
	}
	return opts, firstNonEmpty(f.outputDir, cfg.Export.OutputDir, "."), nil
}

// composeCommand creates the compose command.
func (c *CLI) composeCommand() *cobra.Command {
	var (
		flags                  exportFlags
		foreground, layoutFile string
	)

	cmd := &cobra.Command{
		Use:   "compose [background]",
		Short: "Compose a layout over a background and export it",
		Long: `Compose a layout over a background image and export the result.

The background may be a file path or a base64 data URL. With --layout the
text and image elements of a layout document are drawn at the export size;
--foreground supplies the image placed into the layout's image slots.
Without a layout the background is simply resized and re-encoded.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc *layout.Document
			if layoutFile != "" {
				d, err := studioio.ImportDocument(layoutFile)
				if err != nil {
					return err
				}
				doc = d
			}
			return c.runCompose(cmd.Context(), args[0], foreground, doc, &flags)
		},
	}

	cmd.Flags().StringVarP(&layoutFile, "layout", "l", "", "layout document (JSON)")
	cmd.Flags().StringVar(&foreground, "foreground", "", "image placed into the layout's image slots")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runCompose(ctx context.Context, background, foreground string, doc *layout.Document, flags *exportFlags) error {
	bg, err := studioio.LoadAsset(background)
	if err != nil {
		return err
	}
	var fg []byte
	if foreground != "" {
		if fg, err = studioio.LoadAsset(foreground); err != nil {
			return err
		}
	}
	return c.exportDesign(ctx, bg, fg, doc, flags)
}

// exportDesign runs an export and writes the artifact.
func (c *CLI) exportDesign(ctx context.Context, bg, fg []byte, doc *layout.Document, flags *exportFlags) error {
	opts, dir, err := c.exportOptions(flags)
	if err != nil {
		return err
	}
	opts.Background, opts.Foreground, opts.Document = bg, fg, doc

	r, err := c.newRunner(ctx, runnerOpts{noCache: flags.noCache})
	if err != nil {
		return err
	}
	defer r.Close()

	var res *pipeline.Result
	err = c.spin(ctx, "Exporting...", "Export failed", func() error {
		var err error
		res, err = r.Export(ctx, opts)
		return err
	})
	if err != nil {
		return err
	}

	path, err := export.Save(dir, res.Artifact)
	if err != nil {
		return err
	}
	printSuccess("Exported %s", res.Artifact.Filename)
	printStats(res.Artifact.Width, res.Artifact.Height, len(res.Artifact.Data), res.CacheInfo.ArtifactHit)
	printFile(path)
	printWarnings(res.Warnings)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
