package main

import (
	"github.com/spf13/cobra"
)

var conditionsCmd = &cobra.Command{
	Use:   "conditions",
	Short: "Print the current live signals and weather",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		application, _, _, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		return printJSON(cmd.OutOrStdout(), application.Travel.Conditions(ctx))
	},
}
