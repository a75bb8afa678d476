package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the station's aggregate authorization statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := getStation()
			if err != nil {
				return err
			}

			report := struct {
				Stats               any `json:"stats"`
				AuthenticationStats any `json:"authenticationStats"`
				Connectivity        any `json:"connectivity"`
			}{
				Stats:                svc.GetStats(),
				AuthenticationStats: svc.GetAuthenticationStats(),
				Connectivity:         svc.TestConnectivity(cmd.Context()),
			}

			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding stats: %w", err)
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}
