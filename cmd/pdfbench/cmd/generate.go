package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(asyncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate one document via the synchronous endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := newHarness(cmd.Context())
		if err != nil {
			return err
		}
		return h.RunSync(cmd.Context(), 1)
	},
}

var asyncCmd = &cobra.Command{
	Use:   "async",
	Short: "Generate one document via the asynchronous job endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := newHarness(cmd.Context())
		if err != nil {
			return err
		}
		return h.RunAsync(cmd.Context(), 1)
	},
}
