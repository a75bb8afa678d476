// Package app provides the entry point for the authcore-sim command-line
// demo.
package app

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ocppauth/core/internal/obslog"
)

// NewRootCmd creates the root command for the authcore-sim CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "authcore-sim",
		DisableAutoGenTag: true,
		Short:             "Exercise the OCPP authorization core against a seeded station",
		Long: `authcore-sim wires a single charging station's authorization service from a
configuration file and a seeded local list, then issues sample authorize
requests against it, printing the resulting decisions.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				obslog.Errorf("displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if viper.GetBool("debug") {
				obslog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to an authorization configuration file (YAML/JSON/TOML)")
	rootCmd.PersistentFlags().String("station", "CP001", "Station id to simulate")
	rootCmd.PersistentFlags().String("v16-endpoint", "", "OCPP 1.6 CSMS endpoint for remote authorization (no remote adapter if empty)")

	for _, flag := range []string{"debug", "config", "station", "v16-endpoint"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			obslog.Errorf("binding %s flag: %v", flag, err)
		}
	}

	rootCmd.AddCommand(newAuthorizeCmd())
	rootCmd.AddCommand(newStatsCmd())
	return rootCmd
}
