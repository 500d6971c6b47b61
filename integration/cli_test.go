//go:build basic

// Package integration contains end-to-end tests for the personalens binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv points both stores at files inside dir.
func sqliteEnv(dir string) []string {
	return []string{
		"HOME=" + dir,
		"PERSONALENS_VAULT_BACKEND=sqlite",
		"PERSONALENS_VAULT_DB_CONNECT=" + filepath.Join(dir, "vault.db"),
		"PERSONALENS_RUNS_BACKEND=sqlite",
		"PERSONALENS_RUNS_DB_CONNECT=" + filepath.Join(dir, "runs.db"),
	}
}

func TestCLIWithSQLite(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)

	out, err := runCommand(t, dir, env, "drift", "--text-a", "We ship weekly.", "--text-b", "We ship weekly.", "--output", "json")
	require.NoError(t, err)
	var drift map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &drift))
	assert.InDelta(t, 1.0, drift["similarity"], 1e-6)

	input := writeFile(t, dir, "items.yaml", timelineInput)
	_, err = runCommand(t, dir, env, "timeline", "--input", input, "--window", "2")
	require.NoError(t, err)

	_, err = runCommand(t, dir, env, "signals", "--text", "Revenue grew 20% in Q2, we always win.")
	require.NoError(t, err)

	out, err = runCommand(t, dir, env, "vault", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "timeline")

	out, err = runCommand(t, dir, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	exportBase := filepath.Join(dir, "export")
	_, err = runCommand(t, dir, env, "runs", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".runs.parquet")
	assert.FileExists(t, exportBase+".segments.parquet")

	_, err = runCommand(t, dir, env, "vault", "clear")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "vault.db"))
	assert.True(t, os.IsNotExist(statErr), "vault clear removes the SQLite file")
}

func TestCLIInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)

	_, err := runCommand(t, dir, env, "drift", "--text-a", "a", "--text-b", "b", "--output", "xml")
	assert.Error(t, err)

	_, err = runCommand(t, dir, env, "clusters", "--k", "0", "--input", writeFile(t, dir, "texts.yaml", "- a\n- b\n"))
	assert.Error(t, err)
}
