package main

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(app.Store.Load(cmd.Context()))
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the record store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Store.Clear(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(clearCmd)
}
