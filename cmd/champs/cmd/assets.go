package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List or add tradable assets",
	Long: `Manage the coins students can trade.

Examples:
  champs assets list
  champs assets add LTC-EUR 80 --name Litecoin`,
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets and current prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			assets, err := a.engine.Assets(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE")
			for _, as := range assets {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", as.Symbol, as.Name, price(as.Price))
			}
			return tw.Flush()
		})
	},
}

var assetName string

var assetsAddCmd = &cobra.Command{
	Use:   "add <symbol> <price>",
	Short: "Add a tradable asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseAmount(args[1])
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		return withApp(cmd, func(a *app) error {
			if err := a.engine.AddAsset(cmd.Context(), args[0], assetName, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s at %s\n", args[0], price(p))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsAddCmd)

	assetsAddCmd.Flags().StringVar(&assetName, "name", "", "display name (defaults to the symbol)")
}
