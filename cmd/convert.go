package cmd

import (
	"github.com/mccforecast/fcst/core"
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/spf13/cobra"
)

// convertCmd converts the raw CSV extracts to Parquet.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert CSV extracts to typed, compressed Parquet files.",
	Long: `Profile each CSV file, pick compact column types and write a Snappy-compressed
Parquet file next to it.

Profiling infers integer, float and string columns, narrows numbers where the
values allow it, parses currency strings and dictionary-encodes low-cardinality
string columns. Profiles are cached so repeated runs over unchanged files skip
the profiling pass.

Missing files are reported and skipped; existing Parquet files are kept unless
--force is given.

Examples:
  # Convert the standard extract list under ./data
  fcst convert --data-dir data

  # Convert specific files and overwrite earlier output
  fcst convert --files transactions_data.csv,users_data.csv --force

  # Summary as CSV
  fcst convert --output csv --output-file conversion.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteConvert(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot convert files", err)
		}
	},
}
