// Package cli implements the studio command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/designstudio/pkg/ai/gemini"
	"github.com/matzehuels/designstudio/pkg/buildinfo"
	"github.com/matzehuels/designstudio/pkg/compose"
	"github.com/matzehuels/designstudio/pkg/config"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/export"
	"github.com/matzehuels/designstudio/pkg/fonts"
	"github.com/matzehuels/designstudio/pkg/observability"
	"github.com/matzehuels/designstudio/pkg/pipeline"
	"github.com/matzehuels/designstudio/pkg/store"
	"github.com/matzehuels/designstudio/pkg/usage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level every pipeline,
// cache and API event is logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Studio designs social and print graphics with generative models",
		Long: `Studio generates images, lays out text over them and exports print-ready
PNG or JPEG files. Layouts come from a written brief; images can be generated,
edited or extended to a new aspect ratio.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/studio/config.toml)")

	// Local image commands
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.outpaintCommand())
	root.AddCommand(c.upscaleCommand())

	// Generative commands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.reformatCommand())
	root.AddCommand(c.designCommand())
	root.AddCommand(c.refineCommand())

	// Storage commands
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.usageCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// config loads the settings once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// runnerOpts selects what newRunner connects.
type runnerOpts struct {
	noCache bool
	ai      bool // require a Gemini client
	usage   bool // meter operations against the daily allowance
}

// runner bundles a pipeline runner with the store it meters against.
type runner struct {
	*pipeline.Runner
	store store.Store
}

func (r *runner) Close() error {
	err := r.Runner.Close()
	if r.store != nil {
		if serr := r.store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, o runnerOpts) (*runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	cc, err := cfg.OpenCache(ctx, o.noCache)
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{pipeline.WithExporter(c.newExporter(cfg))}

	if o.ai {
		if cfg.Gemini.APIKey == "" {
			cc.Close()
			return nil, errs.New(errs.ErrCodeUnsupported, "%s is not set; add it to the environment, .env or the [gemini] config section", config.EnvGeminiKey)
		}
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:       cfg.Gemini.APIKey,
			ImageModel:   cfg.Gemini.ImageModel,
			EditModel:    cfg.Gemini.EditModel,
			BriefModel:   cfg.Gemini.BriefModel,
			EnhanceModel: cfg.Gemini.EnhanceModel,
			Retries:      cfg.Gemini.Retries,
		}, c.Logger)
		if err != nil {
			cc.Close()
			return nil, err
		}
		opts = append(opts, pipeline.WithAI(client))
	}

	r := &runner{}
	if o.usage {
		st, err := cfg.OpenStore(ctx)
		if err != nil {
			cc.Close()
			return nil, err
		}
		r.store = st
		opts = append(opts, pipeline.WithUsage(usage.NewTracker(st)))
	}

	r.Runner = pipeline.NewRunner(cc, nil, c.Logger, opts...)
	return r, nil
}

// newExporter builds an exporter whose font registry searches the
// configured directories.
func (c *CLI) newExporter(cfg *config.Config) *export.Exporter {
	reg := fonts.NewRegistry(
		fonts.WithDirs(cfg.Fonts.Dirs...),
		fonts.WithSystemFonts(cfg.Fonts.UseSystem()),
		fonts.WithLogger(c.Logger),
	)
	return export.NewExporter(compose.NewCompositor(reg, c.Logger), c.Logger)
}

// openStore connects the configured store for commands that only need
// persistence.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return cfg.OpenStore(ctx)
}
