package cmd

import (
	"github.com/mccforecast/fcst/core"
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/spf13/cobra"
)

// evaluateCmd scores a forecast against actuals.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a forecast overall and per merchant category.",
	Long: `Compute sMAPE_w, RMSSE_w, MAE and RMSE for a forecast and print the MCC aggregates report.

The input file (CSV or Parquet) holds one row per sample with the actual value,
the forecast and optionally a category label such as the MCC code. RMSSE is
scaled by the training series, read from --train or from the input file itself.

When --history-backend is set, every run and its per-category metrics are stored
for later export.

Examples:
  # Score a forecast with a per-MCC breakdown
  fcst evaluate --input forecast.csv --category-col mcc --model lightgbm

  # Use a separate training file and custom column names
  fcst evaluate -i test.parquet --train train.parquet --true-col amount --pred-col forecast

  # Machine-readable output
  fcst evaluate -i forecast.csv --output json --output-file metrics.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvaluate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot evaluate forecast", err)
		}
	},
}
