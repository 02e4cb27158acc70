package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designstudio/pkg/ai"
	"github.com/matzehuels/designstudio/pkg/geometry"
	studioio "github.com/matzehuels/designstudio/pkg/io"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/pipeline"
	"github.com/matzehuels/designstudio/pkg/templates"
)

// settingsFlags collect canvas and style choices as template settings.
type settingsFlags struct {
	ratio    string
	size     string // "WxH", e.g. "210x297" or "8,5x11"
	unit     string
	target   string
	printDPI int
	font     string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ratio, "ratio", "r", string(geometry.Square), "aspect ratio (W:H)")
	cmd.Flags().StringVar(&f.size, "size", "", "custom canvas size WxH, overrides --ratio")
	cmd.Flags().StringVar(&f.unit, "unit", string(geometry.UnitPixel), "unit for --size: px, in, mm, cm")
	cmd.Flags().StringVar(&f.target, "target", string(ai.TargetSocial), "optimize for social or print")
	cmd.Flags().IntVar(&f.printDPI, "dpi", 300, "print resolution with --target print: 300 or 600")
	cmd.Flags().StringVar(&f.font, "font", ai.FontChoiceAI, "font family for all text, or ai-choice")
}

// settings validates the flags.
func (f *settingsFlags) settings() (templates.Settings, error) {
	s := templates.Settings{
		AspectRatio:        geometry.AspectRatio(f.ratio),
		OptimizationTarget: ai.Target(strings.ToLower(f.target)),
		FontFamily:         f.font,
	}
	if s.OptimizationTarget == ai.TargetPrint {
		s.PrintQuality = f.printDPI
	}
	if f.size != "" {
		w, h, ok := strings.Cut(strings.ToLower(f.size), "x")
		if !ok {
			return templates.Settings{}, fmt.Errorf("invalid --size %q: want WxH", f.size)
		}
		s.IsCustomSize = true
		s.CustomWidth, s.CustomHeight = w, h
		s.CustomUnit = geometry.Unit(f.unit)
	}
	if err := s.Validate(); err != nil {
		return templates.Settings{}, err
	}
	return s, nil
}

// designCommand creates the design command.
func (c *CLI) designCommand() *cobra.Command {
	var (
		sf        settingsFlags
		ef        exportFlags
		image     string
		noClarify bool
		saveAs    string
	)

	cmd := &cobra.Command{
		Use:   "design [brief]",
		Short: "Design a complete graphic from a written brief",
		Long: `Design a complete graphic from a written brief.

The brief is first checked for missing details; answer the follow-up
questions in the picker, or pass --no-clarify to skip them. A layout
document is then generated together with a background image, and the
composite is exported.

Written files:
  <name>.json              the layout document, editable and reusable
  <name>-background.png    the generated background
  <name>.<ext>             the composite`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.settings()
			if err != nil {
				return err
			}
			cons, err := s.Constraints()
			if err != nil {
				return err
			}
			if image != "" {
				if cons.UserImage, err = studioio.LoadAsset(image); err != nil {
					return err
				}
				cons.UserImageMIME = studioio.DetectMIMEType(cons.UserImage)
			}
			if cons.Target == ai.TargetPrint && ef.printDPI == 0 {
				ef.printDPI = cons.PrintDPI
			}
			return c.runDesign(cmd.Context(), strings.Join(args, " "), cons, s, noClarify, saveAs, &ef)
		},
	}

	sf.register(cmd)
	ef.register(cmd)
	cmd.Flags().StringVar(&image, "image", "", "your own image to build the design around")
	cmd.Flags().BoolVar(&noClarify, "no-clarify", false, "skip the follow-up questions")
	cmd.Flags().StringVar(&saveAs, "save-template", "", "save the layout as a template with this name")

	return cmd
}

func (c *CLI) runDesign(ctx context.Context, brief string, cons ai.Constraints, s templates.Settings, noClarify bool, saveAs string, ef *exportFlags) error {
	r, err := c.newRunner(ctx, runnerOpts{ai: true, usage: true, noCache: ef.noCache})
	if err != nil {
		return err
	}
	defer r.Close()

	var answers []ai.Answer
	if !noClarify {
		var qs []ai.Question
		err := c.spin(ctx, "Reading the brief...", "Clarification failed", func() error {
			var err error
			qs, err = r.Clarify(ctx, brief)
			return err
		})
		if err != nil {
			return err
		}
		if len(qs) > 0 {
			if answers, err = askQuestions(qs); err != nil {
				if errors.Is(err, errAborted) {
					return context.Canceled
				}
				return err
			}
		}
	}

	var res *pipeline.DesignResult
	err = c.spin(ctx, "Designing the layout...", "Design failed", func() error {
		var err error
		res, err = r.Design(ctx, pipeline.DesignOptions{Brief: brief, Answers: answers, Constraints: cons})
		return err
	})
	if err != nil {
		return err
	}
	printSuccess("Designed %d elements", len(res.Document.Layout))
	printUsage(res.Usage)

	opts, dir, err := c.exportOptions(ef)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	base := filepath.Join(dir, opts.ProductName)
	if err := studioio.ExportDocument(res.Document, base+".json"); err != nil {
		return err
	}
	printFile(base + ".json")
	if err := writeFile(base+"-background"+imageExt(res.Background), res.Background); err != nil {
		return err
	}
	printFile(base + "-background" + imageExt(res.Background))

	if saveAs != "" {
		if err := c.saveTemplate(ctx, r.store, saveAs, res.Document, s); err != nil {
			return err
		}
	}

	return c.exportDesign(ctx, res.Background, cons.UserImage, res.Document, ef)
}

// refineCommand creates the refine command.
func (c *CLI) refineCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "refine [layout.json] [request]",
		Short: "Ask for changes to a layout document",
		Long: `Ask for changes to a layout document.

The request is applied by the brief model and the result is written to a new
file; the input document is left unchanged.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := studioio.ImportDocument(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = derivedPath(args[0], "-refined", ".json")
			}
			return c.runRefine(cmd.Context(), doc, strings.Join(args[1:], " "), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <layout>-refined.json)")
	return cmd
}

func (c *CLI) runRefine(ctx context.Context, doc *layout.Document, request, output string) error {
	r, err := c.newRunner(ctx, runnerOpts{ai: true, noCache: true})
	if err != nil {
		return err
	}
	defer r.Close()

	var res *pipeline.DesignResult
	err = c.spin(ctx, "Refining the layout...", "Refinement failed", func() error {
		var err error
		res, err = r.Refine(ctx, doc, request)
		return err
	})
	if err != nil {
		return err
	}
	if err := studioio.ExportDocument(res.Document, output); err != nil {
		return err
	}
	printSuccess("Refined layout (%d elements)", len(res.Document.Layout))
	printFile(output)
	printNextStep("Export it with", fmt.Sprintf("%s compose <background> --layout %s", appName, output))
	return nil
}
