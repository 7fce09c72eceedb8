package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the champs CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "champs version %s\n", version)
		fmt.Fprintln(out, "Crypto Championships classroom trading game")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
