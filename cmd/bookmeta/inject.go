package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var injectCmd = &cobra.Command{
	Use:   "inject <target-url>",
	Short: "Fill the form on a target page with the stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		injection := app.Injection()
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			plan, err := injection.Plan(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(plan)
		}
		filled, err := injection.Inject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "filled %d fields on %s\n", filled, args[0])
		return nil
	},
}

func init() {
	injectCmd.Flags().Bool("dry-run", false, "print the planned assignments without opening the page")

	rootCmd.AddCommand(injectCmd)
}
