package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show weekly snapshots and market history",
	Long: `Print recorded history, oldest week first.

Subcommands:
  snapshots  - Each student's total value at the end of every week
  market     - Every recorded asset price`,
}

var historySnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Show weekly student snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			snaps, err := a.engine.Snapshots(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "WEEK\tSTUDENT\tTOTAL\tP/L\tRECORDED")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
					s.Week, s.StudentID, euro(s.TotalValue), euro(s.ProfitLoss), s.Timestamp.Local().Format(time.DateTime))
			}
			return tw.Flush()
		})
	},
}

var historyMarketSymbol string

var historyMarketCmd = &cobra.Command{
	Use:   "market",
	Short: "Show recorded asset prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			points, err := a.engine.MarketHistory(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "WEEK\tSYMBOL\tPRICE")
			for _, p := range points {
				if historyMarketSymbol != "" && p.Symbol != historyMarketSymbol {
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.Week, p.Symbol, price(p.Price))
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historySnapshotsCmd)
	historyCmd.AddCommand(historyMarketCmd)

	historyMarketCmd.Flags().StringVarP(&historyMarketSymbol, "symbol", "s", "", "only show this symbol")
}
