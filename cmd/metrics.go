package cmd

import (
	"github.com/mccforecast/fcst/core"
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display formulas and definitions for all accuracy metrics",
	Long: `Show the formal definitions and formulas of the reported metrics.

No data is read - this is purely informational.

Examples:
  # Show metric formulas
  fcst metrics

  # As JSON
  fcst metrics --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
