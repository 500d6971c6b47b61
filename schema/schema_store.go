package schema

import (
	"encoding/json"
	"time"
)

// VaultEntry is the last snapshot saved for one section.
type VaultEntry struct {
	Section Section         `json:"section"`
	SavedAt time.Time       `json:"savedAt"`
	Payload json.RawMessage `json:"payload"`
}

// VaultStatus represents the status of the report vault.
type VaultStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalSections   int       `json:"total_sections"`
	LastSavedTime   time.Time `json:"last_saved_time"`
	OldestSavedTime time.Time `json:"oldest_saved_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the run tracking store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalSegments int              `json:"total_segments"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the analysis_runs table.
type RunRecord struct {
	RunID            int64
	RunUUID          string
	Operation        string
	Modality         string
	StartTime        time.Time
	EndTime          *time.Time
	RunDurationMs    *int32
	TotalItems       int32
	ConsistencyScore *float64
	ConfigParams     *string
}

// SegmentScoreRecord represents a row from the segment_scores table.
type SegmentScoreRecord struct {
	RunID        int64
	SegmentIndex int32
	StartMs      int32
	EndMs        int32
	RawAnomaly   float64
	ZScore       float64
	Percentile   float64
	IsSpike      bool
	IsBaseline   bool
}
