package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// vaultTable is the name of the table for report snapshots.
const vaultTable = "report_vault"

// VaultStoreImpl keeps one JSON snapshot per section in a SQL table.
type VaultStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
	now     func() time.Time
}

var _ contract.ReportVault = &VaultStoreImpl{} // Compile-time check

// NewVaultStore initializes and returns a new ReportVault based on the backend type.
// The none backend keeps snapshots in process memory only.
func NewVaultStore(backend schema.DatabaseBackend, connStr string) (contract.ReportVault, error) {
	if backend == schema.NoneBackend {
		return NewMemoryVault(), nil
	}

	db, err := openDB(backend, connStr, GetVaultDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateVaultQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", vaultTable, err)
	}

	return &VaultStoreImpl{
		db:      db,
		backend: backend,
		connStr: connStr,
		now:     time.Now,
	}, nil
}

// getCreateVaultQuery returns the CREATE TABLE query for the given backend.
func getCreateVaultQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(vaultTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				section VARCHAR(64) PRIMARY KEY,
				payload LONGTEXT NOT NULL,
				saved_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				section TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				saved_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				section TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				saved_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Put replaces the snapshot of a section.
func (vs *VaultStoreImpl) Put(section schema.Section, snapshot any) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", section, err)
	}
	if _, err := vs.db.Exec(vs.getUpsertQuery(), string(section), string(payload), vs.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", section, err)
	}
	return nil
}

// getUpsertQuery returns the UPSERT query for the backend.
func (vs *VaultStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(vaultTable, vs.backend)
	switch vs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (section, payload, saved_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload, saved_at = new.saved_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (section, payload, saved_at) VALUES ($1, $2, $3)
			ON CONFLICT (section) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (section, payload, saved_at) VALUES (?, ?, ?)`, quotedTableName)
	}
}

// GetAll returns the latest snapshot of every saved section.
func (vs *VaultStoreImpl) GetAll() (map[schema.Section]schema.VaultEntry, error) {
	query := fmt.Sprintf("SELECT section, payload, saved_at FROM %s", quoteTableName(vaultTable, vs.backend))
	rows, err := vs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report vault: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[schema.Section]schema.VaultEntry)
	for rows.Next() {
		var section, payload string
		var savedAt int64
		if err := rows.Scan(&section, &payload, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vault entry: %w", err)
		}
		out[schema.Section(section)] = schema.VaultEntry{
			Section: schema.Section(section),
			SavedAt: time.UnixMilli(savedAt),
			Payload: json.RawMessage(payload),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vault entries: %w", err)
	}
	return out, nil
}

// GetStatus returns status information about the vault store.
func (vs *VaultStoreImpl) GetStatus() (schema.VaultStatus, error) {
	status := schema.VaultStatus{
		Backend:   string(vs.backend),
		Connected: vs.db != nil,
	}

	quotedTableName := quoteTableName(vaultTable, vs.backend)
	row := vs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalSections); err != nil {
		return status, fmt.Errorf("failed to get total sections: %w", err)
	}
	if status.TotalSections == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = vs.db.QueryRow(fmt.Sprintf("SELECT MAX(saved_at), MIN(saved_at) FROM %s", quotedTableName))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get saved times: %w", err)
	}
	status.LastSavedTime = time.UnixMilli(lastTs)
	status.OldestSavedTime = time.UnixMilli(oldestTs)

	// Estimate table size (approximate)
	switch vs.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := vs.db.QueryRow(sizeQuery).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.MySQLBackend:
		status.TableSizeBytes = int64(status.TotalSections) * 1000
		cfg, err := mysql.ParseDSN(vs.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := vs.db.QueryRow(sizeQuery, cfg.DBName, vaultTable).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = int64(status.TotalSections) * 1000
		}
	case schema.PostgreSQLBackend:
		if err := vs.db.QueryRow("SELECT pg_total_relation_size($1)", vaultTable).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = int64(status.TotalSections) * 1000
		}
	}

	return status, nil
}

// Close closes the underlying DB connection.
func (vs *VaultStoreImpl) Close() error {
	if vs.db != nil {
		return vs.db.Close()
	}
	return nil
}

// MemoryVault is a process-local ReportVault.
type MemoryVault struct {
	mu      sync.RWMutex
	entries map[schema.Section]schema.VaultEntry
	now     func() time.Time
}

var _ contract.ReportVault = &MemoryVault{} // Compile-time check

// NewMemoryVault returns an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		entries: make(map[schema.Section]schema.VaultEntry),
		now:     time.Now,
	}
}

// Put replaces the snapshot of a section.
func (mv *MemoryVault) Put(section schema.Section, snapshot any) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", section, err)
	}
	mv.mu.Lock()
	defer mv.mu.Unlock()
	mv.entries[section] = schema.VaultEntry{Section: section, SavedAt: mv.now(), Payload: payload}
	return nil
}

// GetAll returns a copy of every saved section.
func (mv *MemoryVault) GetAll() (map[schema.Section]schema.VaultEntry, error) {
	mv.mu.RLock()
	defer mv.mu.RUnlock()
	return maps.Clone(mv.entries), nil
}

// GetStatus returns status information about the in-memory vault.
func (mv *MemoryVault) GetStatus() (schema.VaultStatus, error) {
	mv.mu.RLock()
	defer mv.mu.RUnlock()
	status := schema.VaultStatus{Backend: string(schema.NoneBackend), TotalSections: len(mv.entries)}
	for _, e := range mv.entries {
		if status.LastSavedTime.IsZero() || e.SavedAt.After(status.LastSavedTime) {
			status.LastSavedTime = e.SavedAt
		}
		if status.OldestSavedTime.IsZero() || e.SavedAt.Before(status.OldestSavedTime) {
			status.OldestSavedTime = e.SavedAt
		}
	}
	return status, nil
}

// Close is a no-op.
func (mv *MemoryVault) Close() error {
	return nil
}

// sectionNames renders saved sections in display order.
func sectionNames(entries map[schema.Section]schema.VaultEntry) string {
	var names []string
	for _, s := range schema.AllSections {
		if _, ok := entries[s]; ok {
			names = append(names, string(s))
		}
	}
	return strings.Join(names, ", ")
}
