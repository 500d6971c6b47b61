package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteTableExists(t *testing.T, dbPath, table string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs_migration.db")

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.True(t, sqliteTableExists(t, dbPath, runsTable))
	assert.True(t, sqliteTableExists(t, dbPath, segmentScoresTable))

	// Already at the latest version
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	// Step down to the first version only
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))
	assert.True(t, sqliteTableExists(t, dbPath, runsTable))
	assert.False(t, sqliteTableExists(t, dbPath, segmentScoresTable))

	// Roll back everything
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))
	assert.False(t, sqliteTableExists(t, dbPath, runsTable))

	// And back up to a specific version
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 3))
	assert.True(t, sqliteTableExists(t, dbPath, segmentScoresTable))
}

func TestMigrateRuns_StoreOpensMigratedDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
}

func TestMigrateRuns_UnknownVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	err := MigrateRuns(schema.SQLiteBackend, dbPath, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to migrate to version 99")
}

func TestMigrationFilesPerBackend(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 6, "%s should have an up and down file for each of 3 versions", backend)
	}
}
