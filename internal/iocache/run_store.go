package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// Table names for run tracking.
const (
	runsTable          = "analysis_runs"
	segmentScoresTable = "segment_scores"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{db: nil, backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{segmentScoresTable, getCreateSegmentScoresQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for analysis_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				operation VARCHAR(32) NOT NULL,
				modality VARCHAR(16) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_items INT NOT NULL DEFAULT 0,
				consistency_score DOUBLE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				operation TEXT NOT NULL,
				modality TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_items INT NOT NULL DEFAULT 0,
				consistency_score DOUBLE PRECISION,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				operation TEXT NOT NULL,
				modality TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_items INTEGER NOT NULL DEFAULT 0,
				consistency_score REAL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateSegmentScoresQuery returns the CREATE TABLE query for segment_scores.
func getCreateSegmentScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(segmentScoresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				segment_index INT NOT NULL,
				start_ms INT NOT NULL,
				end_ms INT NOT NULL,
				raw_anomaly DOUBLE NOT NULL,
				z_score DOUBLE NOT NULL,
				percentile DOUBLE NOT NULL,
				is_spike BOOLEAN NOT NULL,
				is_baseline BOOLEAN NOT NULL,
				PRIMARY KEY (run_id, segment_index)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				segment_index INT NOT NULL,
				start_ms INT NOT NULL,
				end_ms INT NOT NULL,
				raw_anomaly DOUBLE PRECISION NOT NULL,
				z_score DOUBLE PRECISION NOT NULL,
				percentile DOUBLE PRECISION NOT NULL,
				is_spike BOOLEAN NOT NULL,
				is_baseline BOOLEAN NOT NULL,
				PRIMARY KEY (run_id, segment_index)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				segment_index INTEGER NOT NULL,
				start_ms INTEGER NOT NULL,
				end_ms INTEGER NOT NULL,
				raw_anomaly REAL NOT NULL,
				z_score REAL NOT NULL,
				percentile REAL NOT NULL,
				is_spike INTEGER NOT NULL,
				is_baseline INTEGER NOT NULL,
				PRIMARY KEY (run_id, segment_index)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its numeric ID.
func (rs *RunStoreImpl) BeginRun(operation string, modality schema.Modality, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	args := []any{uuid.New().String(), operation, string(modality), formatTime(startTime, rs.backend), string(configJSON)}
	cols := "run_uuid, operation, modality, start_time, config_params"
	values := strings.Join(placeholders(rs.backend, len(args)), ", ")

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING run_id`, quotedTableName, cols, values)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quotedTableName, cols, values)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalItems int, consistencyScore *float64) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	ph := placeholders(rs.backend, 5)

	start := timeScanner{backend: rs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, ph[0])
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	durationMs := endTime.Sub(*startTime).Milliseconds()

	var score any
	if consistencyScore != nil {
		score = *consistencyScore
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_items = %s, consistency_score = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4])
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalItems, score, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// RecordSegments stores the scored segments of a run in one transaction.
func (rs *RunStoreImpl) RecordSegments(runID int64, segments []schema.ScoredSegment) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil || len(segments) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, segment_index, start_ms, end_ms, raw_anomaly, z_score, percentile, is_spike, is_baseline)
		VALUES (%s)
	`, quoteTableName(segmentScoresTable, rs.backend), strings.Join(placeholders(rs.backend, 9), ", "))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range segments {
		if _, err := stmt.Exec(runID, s.Index, s.StartMs, s.EndMs, s.RawAnomaly, s.ZScore, s.PercentileVsBaseline, s.IsSpike, s.IsBaseline); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert segment %d: %w", s.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit segments: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: rs.backend}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		if lastTime != nil {
			status.LastRunTime = *lastTime
		}

		oldest := timeScanner{backend: rs.backend}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}
	}

	for _, table := range []string{runsTable, segmentScoresTable} {
		var count int64
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSegments = int(status.TableSizes[segmentScoresTable])

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, operation, modality, start_time, end_time,
		run_duration_ms, total_items, consistency_score, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := timeScanner{backend: rs.backend}
		end := timeScanner{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Operation, &record.Modality,
			start.dest(), end.dest(), &record.RunDurationMs, &record.TotalItems,
			&record.ConsistencyScore, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllSegments retrieves all segment scores from the store.
func (rs *RunStoreImpl) GetAllSegments() ([]schema.SegmentScoreRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, segment_index, start_ms, end_ms, raw_anomaly, z_score,
		percentile, is_spike, is_baseline
		FROM %s ORDER BY run_id, segment_index`, quoteTableName(segmentScoresTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SegmentScoreRecord
	for rows.Next() {
		var r schema.SegmentScoreRecord
		if err := rows.Scan(&r.RunID, &r.SegmentIndex, &r.StartMs, &r.EndMs, &r.RawAnomaly,
			&r.ZScore, &r.Percentile, &r.IsSpike, &r.IsBaseline); err != nil {
			return nil, fmt.Errorf("failed to scan segment score: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment scores: %w", err)
	}

	return results, nil
}
