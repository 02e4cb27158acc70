package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	studioio "github.com/matzehuels/designstudio/pkg/io"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/store"
	"github.com/matzehuels/designstudio/pkg/templates"
)

// templateCommand creates the template management command.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Manage saved layout templates",
	}

	cmd.AddCommand(c.templateSaveCommand())
	cmd.AddCommand(c.templateListCommand())
	cmd.AddCommand(c.templateShowCommand())
	cmd.AddCommand(c.templateDeleteCommand())

	return cmd
}

// withTemplates opens the store and runs fn with a repository on it.
func (c *CLI) withTemplates(ctx context.Context, fn func(*templates.Repository) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(templates.NewRepository(st, c.Logger))
}

func (c *CLI) saveTemplate(ctx context.Context, st store.Store, name string, doc *layout.Document, s templates.Settings) error {
	t, err := templates.NewRepository(st, c.Logger).Save(ctx, name, doc, s)
	if err != nil {
		return err
	}
	printSuccess("Saved template %s", StyleAccent.Render(t.Name))
	printDetail("ID: %s", t.ID)
	return nil
}

// templateSaveCommand creates the "template save" subcommand.
func (c *CLI) templateSaveCommand() *cobra.Command {
	var sf settingsFlags
	cmd := &cobra.Command{
		Use:   "save [name] [layout.json]",
		Short: "Save a layout document as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sf.settings()
			if err != nil {
				return err
			}
			doc, err := studioio.ImportDocument(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			return c.saveTemplate(ctx, st, args[0], doc, s)
		},
	}
	sf.register(cmd)
	return cmd
}

// templateListCommand creates the "template list" subcommand.
func (c *CLI) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTemplates(cmd.Context(), func(repo *templates.Repository) error {
				ts, err := repo.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(ts) == 0 {
					printInfo("No templates saved yet")
					printNextStep("Save one with", appName+" template save <name> <layout.json>")
					return nil
				}
				fmt.Println(renderTemplateTable(ts, time.Now()))
				return nil
			})
		},
	}
}

// templateShowCommand creates the "template show" subcommand.
func (c *CLI) templateShowCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show [id or name]",
		Short: "Print a template's layout document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTemplates(cmd.Context(), func(repo *templates.Repository) error {
				t, err := repo.Find(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output != "" {
					if err := studioio.ExportDocument(t.Brief, output); err != nil {
						return err
					}
					printSuccess("Wrote %s", StyleAccent.Render(t.Name))
					printFile(output)
					return nil
				}
				printKeyValue("Name", t.Name)
				printKeyValue("ID", t.ID)
				printKeyValue("Saved", t.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
				if size, err := t.Settings.CanvasSize(0); err == nil {
					printKeyValue("Canvas", size.String())
				}
				printKeyValue("Target", string(t.Settings.OptimizationTarget))
				fmt.Println()
				return studioio.WriteDocument(t.Brief, os.Stdout)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout document to a file instead")
	return cmd
}

// templateDeleteCommand creates the "template delete" subcommand.
func (c *CLI) templateDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id or name]",
		Aliases: []string{"rm"},
		Short:   "Delete a template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTemplates(cmd.Context(), func(repo *templates.Repository) error {
				t, err := repo.Find(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := repo.Delete(cmd.Context(), t.ID); err != nil {
					return err
				}
				printSuccess("Deleted template %s", StyleAccent.Render(t.Name))
				return nil
			})
		},
	}
}
