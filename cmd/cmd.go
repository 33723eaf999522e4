// Package cmd defines the command-line interface for fcst.
package cmd

import (
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress messages on stderr")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Profile cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Evaluation history backend: sqlite or mysql or postgresql or none (empty disables history)")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for evaluation history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of evaluateCmd to Viper
	evaluateCmd.Flags().StringP("model", "m", contract.DefaultModelName, "Model name shown in the report header")
	evaluateCmd.Flags().StringP("input", "i", "", "CSV or Parquet file with actuals, forecasts and optional categories")
	evaluateCmd.Flags().String("train", "", "CSV or Parquet file with the training series (defaults to --input)")
	evaluateCmd.Flags().String("true-col", contract.DefaultTrueColumn, "Column holding actual values")
	evaluateCmd.Flags().String("pred-col", contract.DefaultPredColumn, "Column holding forecast values")
	evaluateCmd.Flags().String("category-col", "", "Column holding category labels such as the MCC code (empty skips the breakdown)")
	evaluateCmd.Flags().String("train-col", "", "Column of the training series (defaults to --true-col)")
	if err := viper.BindPFlags(evaluateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding evaluate flags", err)
	}

	// Bind all flags of convertCmd to Viper
	convertCmd.Flags().String("data-dir", contract.DefaultDataDir, "Directory the file list is resolved against")
	convertCmd.Flags().String("files", "", "Comma-separated CSV files to convert (defaults to the standard extract list)")
	convertCmd.Flags().Int("chunk-size", contract.DefaultChunkSize, "Rows per conversion chunk")
	convertCmd.Flags().Bool("force", false, "Overwrite existing Parquet files")
	convertCmd.Flags().Float64("category-ratio", contract.DefaultCategoryRatio, "Distinct/non-null ratio at or below which string columns are dictionary encoded")
	convertCmd.Flags().String("categorical", "", "Comma-separated columns always dictionary encoded (default: mcc)")
	convertCmd.Flags().Bool("strip-currency", true, "Parse currency strings such as $1,234.50 as numbers")
	if err := viper.BindPFlags(convertCmd.Flags()); err != nil {
		contract.LogFatal("Error binding convert flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
