package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/champs/archive"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export snapshots and market history to CSV",
	Long: `Write every weekly snapshot and recorded price to one CSV file.
A path ending in .xz is compressed.

Examples:
  champs export history.csv
  champs export history.csv.xz --verify`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportVerify bool

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportVerify, "verify", false, "read the file back and compare row counts")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	return withApp(cmd, func(a *app) error {
		snaps, err := a.engine.Snapshots(cmd.Context())
		if err != nil {
			return err
		}
		points, err := a.engine.MarketHistory(cmd.Context())
		if err != nil {
			return err
		}

		if err := archive.WriteFile(path, archive.Archive{Snapshots: snaps, Prices: points}); err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if exportVerify {
			got, err := archive.ReadFile(path)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if len(got.Snapshots) != len(snaps) || len(got.Prices) != len(points) {
				return fmt.Errorf("verify: read %d snapshots and %d prices, wrote %d and %d",
					len(got.Snapshots), len(got.Prices), len(snaps), len(points))
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d snapshots and %d prices to %s\n", len(snaps), len(points), path)
		return nil
	})
}
