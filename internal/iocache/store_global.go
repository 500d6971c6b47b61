package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetVaultDBFilePath returns the path to the SQLite DB file for the report vault.
func GetVaultDBFilePath() string {
	return contract.GetVaultDBFilePath()
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	return contract.GetRunsDBFilePath()
}

// InitStores initializes the global manager with separate vault and run stores.
// vaultBackend can be empty to skip the vault; runsBackend can be empty to disable run tracking.
func InitStores(vaultBackend schema.DatabaseBackend, vaultConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var vault contract.ReportVault
		if vaultBackend != "" {
			vault, err = NewVaultStore(vaultBackend, vaultConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize report vault: %w", err)
				return
			}
		}

		var runs contract.RunStore
		if runsBackend != "" {
			runs, err = NewRunStore(runsBackend, runsConnStr)
			if err != nil {
				if vault != nil {
					_ = vault.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.vault = vault
		Manager.runs = runs
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.vault != nil {
			_ = Manager.vault.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearVault clears the report vault for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearVault(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, vaultTable)
	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, vaultTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported vault backend for clearing: %s", backend)
	}
}

// ClearRuns clears the run tracking data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the run tables.
// For NoneBackend, it does nothing.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	tables := []string{runsTable, segmentScoresTable, "schema_migrations"}
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend:
		for _, table := range tables {
			if err := clearSQLTable("mysql", connStr, table); err != nil {
				return err
			}
		}
		return nil
	case schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable("pgx", connStr, table); err != nil {
				return err
			}
		}
		return nil
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported runs backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}
