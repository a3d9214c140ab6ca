package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/huangsam/ghsnap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadHistoryBackend reads and validates the history backend settings.
func loadHistoryBackend() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("history-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// It avoids the token, date and collector validation of sharedSetup.
func historySetup(cmd *cobra.Command, _ []string) error {
	if err := bindCommandFlags(cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	backend, connStr, err := loadHistoryBackend()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historyMigrateSetup loads the backend settings without opening the store,
// so migrations can run on a fresh database.
func historyMigrateSetup(cmd *cobra.Command, _ []string) error {
	if err := bindCommandFlags(cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	backend, connStr, err := loadHistoryBackend()
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

// historyCmd focuses on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the pipeline run history",
	Long: `Manage the history of stage runs and per-organization rollups.

When enabled, every stage run stores:
- Stage, date and configuration
- Start and end time, records written and entities skipped
- Per-organization rollups for summarize runs

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  export  - Export history to Parquet
  clear   - Remove all history
  migrate - Run database schema migrations

Examples:
  ghsnap history status
  ghsnap history export --output-file history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display history statistics and connection details",
	PreRunE: historySetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			return fmt.Errorf("history store is not initialized")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get history status: %w", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
		return nil
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all pipeline run history",
	Long: `Delete all stored stage runs and organization rollups.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  ghsnap history export --output-file backup
  ghsnap history clear`,
	PreRunE: historyMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("History cleared successfully.")
		return nil
	},
}

// historyExportCmd exports history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export pipeline runs and organization rollups to Parquet",
	Long: `Write <output-file>.pipeline_runs.parquet and <output-file>.org_snapshots.parquet.

Requires: --output-file parameter

Examples:
  ghsnap history export --output-file history
  duckdb -c "SELECT organization, date_token, total_stars FROM 'history.org_snapshots.parquet' ORDER BY 2"`,
	PreRunE: historySetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteHistoryExport(os.Stderr, iocache.Manager.GetHistoryStore(), cfg.OutputFile)
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  ghsnap history migrate

  # Rollback to initial state
  ghsnap history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		return iocache.MigrateHistory(os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion)
	},
}
