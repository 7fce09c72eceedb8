package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show or advance the championship week",
	Long: `Inspect and move the championship clock.

Subcommands:
  show     - Print the current week
  advance  - Move prices, pay interest, snapshot students and start the next week`,
}

var weekShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			week, err := a.engine.CurrentWeek(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Week %d\n", week)
			return nil
		})
	},
}

var weekAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Advance to the next week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			week, err := a.engine.AdvanceWeek(cmd.Context())
			if err != nil {
				return fmt.Errorf("advance week: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Now in week %d\n", week)
			return nil
		})
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe students and history and start over",
	Long: `Delete every student, holding and snapshot, restore the default
assets at their starting prices, set the week to 0 and create the demo
student. Requires --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("reset deletes all students and history; pass --yes to confirm")
		}
		return withApp(cmd, func(a *app) error {
			if err := a.engine.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Championship reset to week 0")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(weekCmd)
	weekCmd.AddCommand(weekShowCmd)
	weekCmd.AddCommand(weekAdvanceCmd)

	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
}
