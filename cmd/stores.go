package cmd

import (
	"fmt"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/iocache"
	"github.com/personalens/personalens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sqliteFile returns the database file a SQLite store uses.
func sqliteFile(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// vaultSetup loads minimal configuration needed for vault operations.
// This is used by commands that need vault access without full shared setup.
func vaultSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromViper("vault-backend", "vault-db-connect")
	if err != nil {
		return err
	}

	// Initialize the vault only; run tracking stays off for vault commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize report vault: %w", err)
	}

	cfg.VaultBackend = backend
	cfg.VaultDBConnect = connStr
	return nil
}

// runsSetup loads minimal configuration needed for run tracking operations.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromViper("runs-backend", "runs-db-connect")
	if err != nil {
		return err
	}

	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsMigrateSetup resolves the run store backend without creating any tables,
// so migrations can run against a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := backendFromViper("runs-backend", "runs-db-connect")
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend {
		connStr = sqliteFile(connStr, contract.GetRunsDBFilePath())
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// vaultCmd focused on report vault management.
//
// Note: Vault subcommands use minimal initialization (vaultSetup) instead of
// the full sharedSetup used by analysis commands.
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the report vault of latest analysis snapshots",
	Long: `Manage the report vault that keeps the latest result of every analysis section.

Each analysis saves its response under its section (drift, timeline, audio-shift, ...).
A newer run of the same section replaces the older snapshot.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status - Show vault statistics and connection info
  show   - Print the saved sections
  clear  - Remove all saved snapshots`,
}

// vaultStatusCmd shows vault status.
var vaultStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display vault statistics and connection details",
	PreRunE: vaultSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetVault().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get vault status", err)
		}
		iocache.PrintVaultStatus(status)
	},
}

// vaultShowCmd prints the saved sections.
var vaultShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Print the latest snapshot of every section",
	PreRunE: vaultSetup,
	Run: func(_ *cobra.Command, _ []string) {
		entries, err := iocache.Manager.GetVault().GetAll()
		if err != nil {
			contract.LogFatal("Failed to read vault", err)
		}
		iocache.PrintVaultSections(entries)
	},
}

// vaultClearCmd clears the vault.
var vaultClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved snapshots",
	Long: `Delete all saved snapshots from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the vault table

Examples:
  personalens vault clear
  PERSONALENS_VAULT_BACKEND=mysql PERSONALENS_VAULT_DB_CONNECT="..." personalens vault clear`,
	PreRunE: vaultSetup,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the open handle before removing the file
		iocache.CloseStores()
		dbFile := sqliteFile(cfg.VaultDBConnect, contract.GetVaultDBFilePath())
		if err := iocache.ClearVault(cfg.VaultBackend, dbFile, cfg.VaultDBConnect); err != nil {
			contract.LogFatal("Failed to clear vault", err)
		}
		fmt.Println("Vault cleared successfully.")
	},
}

// runsCmd focused on run tracking management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage tracked analysis runs and exports",
	Long: `Manage the history of tracked analysis runs.

When --runs-backend is set, every analysis stores:
- Run metadata (operation, modality, configuration, duration, consistency score)
- Per-segment scores of audio and video runs

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  personalens runs status --runs-backend sqlite
  personalens runs export --runs-backend sqlite --output-file runs`,
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		runs := iocache.Manager.GetRunStore()
		if runs == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is disabled"))
		}
		status, err := runs.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports tracked runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet for BI tools and analytics",
	Long: `Export all tracked runs and segment scores to Parquet.

Writes <output-file>.runs.parquet and <output-file>.segments.parquet.

Requires: --output-file parameter

Examples:
  personalens runs export --runs-backend sqlite --output-file personalens
  duckdb -c "SELECT * FROM read_parquet('personalens.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsClearCmd clears the run tracking data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs",
	Long: `Delete all tracked runs and segment scores.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		dbFile := sqliteFile(cfg.RunsDBConnect, contract.GetRunsDBFilePath())
		if err := iocache.ClearRuns(cfg.RunsBackend, dbFile, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear runs", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  personalens runs migrate --runs-backend sqlite

  # Rollback to initial state
  personalens runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
