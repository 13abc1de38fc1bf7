package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var waitReady time.Duration

func init() {
	healthCmd.Flags().DurationVar(&waitReady, "wait", 0,
		"keep probing with backoff until the service is ready or this deadline passes")
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the service health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := newHarness(cmd.Context())
		if err != nil {
			return err
		}
		if waitReady > 0 {
			return h.WaitReady(cmd.Context(), waitReady)
		}
		return h.CheckHealth(cmd.Context())
	},
}
