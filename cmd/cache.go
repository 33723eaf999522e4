package cmd

import (
	"errors"
	"fmt"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/iocache"
	"github.com/mccforecast/fcst/internal/outwriter"
	"github.com/mccforecast/fcst/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := outputSetup(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the profile cache only; history stays disabled for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the CSV profile cache used by convert",
	Long: `Manage the column-profile cache that lets convert skip profiling unchanged files.

Profiles are keyed by file path, size, modification time and conversion options.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached profiles`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached column profiles",
	Long: `Delete all cached column profiles from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  fcst cache clear

  # Clear MySQL cache (set connection string via env variable)
  FCST_CACHE_BACKEND=mysql FCST_CACHE_DB_CONNECT="..." fcst cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle opened by setup before removing the database
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show backend, connection state, entry count, timestamps and size of the profile cache.

Examples:
  # Check cache status
  fcst cache status

  # As JSON
  fcst cache status --output json`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetProfileStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("profile cache is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		if err := outwriter.PrintStatus(status, cfg, iocache.PrintCacheStatus); err != nil {
			contract.LogFatal("Failed to print cache status", err)
		}
	},
}
