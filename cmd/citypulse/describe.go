package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CityPulse/internal/domain"
)

var describeCmd = &cobra.Command{
	Use:   "describe <image>",
	Short: "Classify a photographed civic issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		img, err := domain.NewImage(data)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		application, _, _, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		desc, err := application.Describer.DescribeIssue(ctx, img)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), desc)
	},
}
