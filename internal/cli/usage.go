package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designstudio/pkg/usage"
)

// usageCommand creates the usage command.
func (c *CLI) usageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show or change the daily allowance",
	}

	cmd.AddCommand(c.usageShowCommand())
	cmd.AddCommand(c.usagePlanCommand())

	return cmd
}

func (c *CLI) withTracker(ctx context.Context, fn func(*usage.Tracker) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(usage.NewTracker(st))
}

// usageShowCommand creates the "usage show" subcommand.
func (c *CLI) usageShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the plan and what is left today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTracker(cmd.Context(), func(t *usage.Tracker) error {
				st, err := t.Status(cmd.Context())
				if err != nil {
					return err
				}
				printUsageState(st)
				return nil
			})
		},
	}
}

// usagePlanCommand creates the "usage plan" subcommand.
func (c *CLI) usagePlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "plan [free|creator|pro]",
		Short:     "Switch plan and reset today's allowance",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(usage.PlanFree), string(usage.PlanCreator), string(usage.PlanPro)},
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := usage.ParsePlan(args[0])
			if err != nil {
				return err
			}
			return c.withTracker(cmd.Context(), func(t *usage.Tracker) error {
				st, err := t.SetPlan(cmd.Context(), plan)
				if err != nil {
					return err
				}
				printSuccess("Switched to the %s plan", StyleAccent.Render(string(st.Plan)))
				printUsageState(st)
				return nil
			})
		},
	}
}

func printUsageState(st *usage.State) {
	printKeyValue("Plan", string(st.Plan))
	printKeyValue("Resets", st.NextReset().Format(time.Kitchen+" Jan 2"))
	printUsage(st)
}
