package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List or enroll students",
	Long: `Manage championship participants.

Subcommands:
  list  - Show the leaderboard
  add   - Enroll a student with the starting cash

Examples:
  champs students list
  champs students add "Ada Lovelace" --color "#e11d48"`,
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the leaderboard",
	Args:  cobra.NoArgs,
	RunE:  runStudentsList,
}

var studentsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Enroll a student",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStudentsAdd,
}

var (
	studentColor string
	studentsLots bool
)

func init() {
	rootCmd.AddCommand(studentsCmd)
	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsAddCmd)

	studentsListCmd.Flags().BoolVar(&studentsLots, "lots", false, "also list every holding")
	studentsAddCmd.Flags().StringVar(&studentColor, "color", "", "dashboard color (default from config)")
}

func runStudentsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		board, err := a.engine.Leaderboard(cmd.Context())
		if err != nil {
			return err
		}

		tw := table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "RANK\tID\tNAME\tCASH\tBANK\tINVESTED\tTOTAL\tP/L")
		for i, v := range board {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				i+1, v.ID, v.Name,
				euro(v.CashBalance), euro(v.BankBalance), euro(v.InvestmentValue),
				euro(v.TotalValue), euro(v.ProfitLoss))
			if !studentsLots {
				continue
			}
			for _, p := range v.Portfolio {
				fmt.Fprintf(tw, "\t\t  lot %d %s\t%g @ %s\tcost %s\tworth %s\t\t\n",
					p.ID, p.Symbol, p.Amount, price(p.CurrentPrice), euro(p.CostBasis), euro(p.Value))
			}
		}
		return tw.Flush()
	})
}

func runStudentsAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		name := strings.Join(args, " ")
		id, err := a.engine.AddStudent(cmd.Context(), name, studentColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Enrolled %s as student %d\n", name, id)
		return nil
	})
}
