package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Trade or bank on behalf of a student",
	Long: `Run a single trading operation for a student.

Subcommands:
  buy       - Spend euros on a new lot
  sell      - Sell a whole lot at the current price
  deposit   - Move cash into the bank
  withdraw  - Move money out of the bank

Examples:
  champs trade buy 3 BTC-EUR 250
  champs trade sell 3 17
  champs trade deposit 3 100`,
}

var tradeBuyCmd = &cobra.Command{
	Use:   "buy <student-id> <symbol> <euros>",
	Short: "Buy a new lot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, err := parseID(args[0])
		if err != nil {
			return fmt.Errorf("student id: %w", err)
		}
		euros, err := parseAmount(args[2])
		if err != nil {
			return fmt.Errorf("euros: %w", err)
		}
		return withApp(cmd, func(a *app) error {
			lot, err := a.engine.Buy(cmd.Context(), studentID, args[1], euros)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Lot %d: %g %s for %s\n", lot.ID, lot.Amount, lot.Symbol, euro(lot.CostBasis))
			return nil
		})
	},
}

var tradeSellCmd = &cobra.Command{
	Use:   "sell <student-id> <lot-id>",
	Short: "Sell a lot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, err := parseID(args[0])
		if err != nil {
			return fmt.Errorf("student id: %w", err)
		}
		lotID, err := parseID(args[1])
		if err != nil {
			return fmt.Errorf("lot id: %w", err)
		}
		return withApp(cmd, func(a *app) error {
			proceeds, err := a.engine.Sell(cmd.Context(), studentID, lotID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Sold lot %d for %s\n", lotID, euro(proceeds))
			return nil
		})
	},
}

var tradeDepositCmd = &cobra.Command{
	Use:   "deposit <student-id> <amount>",
	Short: "Move cash into the bank",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBankTransfer(cmd, args, "Deposited", func(a *app, id int64, amount float64) error {
			return a.engine.Deposit(cmd.Context(), id, amount)
		})
	},
}

var tradeWithdrawCmd = &cobra.Command{
	Use:   "withdraw <student-id> <amount>",
	Short: "Move money from the bank to cash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBankTransfer(cmd, args, "Withdrew", func(a *app, id int64, amount float64) error {
			return a.engine.Withdraw(cmd.Context(), id, amount)
		})
	},
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeBuyCmd)
	tradeCmd.AddCommand(tradeSellCmd)
	tradeCmd.AddCommand(tradeDepositCmd)
	tradeCmd.AddCommand(tradeWithdrawCmd)
}

func runBankTransfer(cmd *cobra.Command, args []string, verb string, transfer func(a *app, id int64, amount float64) error) error {
	studentID, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("student id: %w", err)
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	return withApp(cmd, func(a *app) error {
		if err := transfer(a, studentID, amount); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s\n", verb, euro(amount))
		return nil
	})
}
