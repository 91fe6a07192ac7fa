package main

import (
	"github.com/spf13/cobra"

	"CityPulse/internal/domain"
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Print a route advisory and predictive alerts for one trip",
	RunE: func(cmd *cobra.Command, _ []string) error {
		origin, _ := cmd.Flags().GetString("origin")
		destination, _ := cmd.Flags().GetString("destination")

		ctx := cmd.Context()
		application, _, _, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		advice, err := application.Travel.GetTravelAdvice(ctx, domain.TripRequest{
			Origin:      origin,
			Destination: destination,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), advice)
	},
}

func init() {
	adviseCmd.Flags().String("origin", "", "trip origin (at least 3 characters)")
	adviseCmd.Flags().String("destination", "", "trip destination (at least 3 characters)")
	_ = adviseCmd.MarkFlagRequired("origin")
	_ = adviseCmd.MarkFlagRequired("destination")
}
