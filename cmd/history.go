package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/iocache"
	"github.com/mccforecast/fcst/internal/outwriter"
	"github.com/mccforecast/fcst/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendConfig reads and validates the history backend settings.
// An unset backend means history is disabled.
func historyBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	if err := outputSetup(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("history-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// The profile cache is not needed for history commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the configuration for migrations. It does NOT
// initialize stores or create tables, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on evaluation history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded evaluation runs and exports",
	Long: `Manage the history of evaluation runs recorded when --history-backend is set.

Each run stores its model name, configuration, duration, overall metrics and
the metrics of every category.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history
  migrate - Run database schema migrations

Examples:
  # Check history status
  fcst history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  fcst history export --history-backend sqlite --output-file runs`,
}

// historyClearCmd clears the evaluation history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded evaluation runs",
	Long: `Delete all stored evaluation runs and category metrics.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

Examples:
  # Export before clearing
  fcst history export --history-backend sqlite --output-file backup
  fcst history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("Evaluation history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show backend, connection state, run count, timestamps, samples evaluated and table sizes.

Examples:
  # Check history status
  fcst history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", errors.New("history is disabled. Set --history-backend to enable it"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := outwriter.PrintStatus(status, cfg, iocache.PrintHistoryStatus); err != nil {
			contract.LogFatal("Failed to print history status", err)
		}
	},
}

// historyExportCmd exports evaluation history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all stored evaluation data to Parquet.

Writes two files:
- <output-file>.evaluation_runs.parquet  - one row per run with overall metrics
- <output-file>.category_metrics.parquet - one row per run and category

Requires: --output-file parameter

Examples:
  fcst history export --history-backend sqlite --output-file fcst
  duckdb -c "SELECT model_name, avg(smape_w) FROM 'fcst.evaluation_runs.parquet' GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile, os.Stderr); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the evaluation history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  fcst history migrate --history-backend sqlite

  # Migrate to specific version
  fcst history migrate --history-backend sqlite --target-version 2

  # Rollback to initial state
  fcst history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
