// Package parquet provides data structures and functions for exporting personalens
// run tracking data and scored segments to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/personalens/personalens/schema"
)

// RunRow represents a single tracked analysis run.
// This struct maps to the analysis_runs database table.
type RunRow struct {
	// RunID is the store-assigned identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier generated at run start
	RunUUID string `parquet:"run_uuid,snappy"`

	// Operation is the analysis that produced the run (drift, timeline, audio-shift, ...)
	Operation string `parquet:"operation,snappy"`

	// Modality is the input kind (text, audio, video)
	Modality string `parquet:"modality,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalItems is the number of texts or segments analyzed in this run
	TotalItems int32 `parquet:"total_items,snappy"`

	// ConsistencyScore is the 0..100 summary score, absent for operations without a summary
	ConsistencyScore *float64 `parquet:"consistency_score,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SegmentRow represents one persisted segment score of a tracked run.
// This struct maps to the segment_scores database table.
type SegmentRow struct {
	RunID        int64   `parquet:"run_id,snappy"`
	SegmentIndex int32   `parquet:"segment_index,snappy"`
	StartMs      int32   `parquet:"start_ms,snappy"`
	EndMs        int32   `parquet:"end_ms,snappy"`
	RawAnomaly   float64 `parquet:"raw_anomaly,snappy"`
	ZScore       float64 `parquet:"z_score,snappy"`
	Percentile   float64 `parquet:"percentile,snappy"`
	IsSpike      bool    `parquet:"is_spike,snappy"`
	IsBaseline   bool    `parquet:"is_baseline,snappy"`
}

// ScoredSegmentRow is a scored segment of a single shift result, written by the parquet output mode.
type ScoredSegmentRow struct {
	SegmentIndex     int32    `parquet:"segment_index,snappy"`
	StartMs          int32    `parquet:"start_ms,snappy"`
	EndMs            int32    `parquet:"end_ms,snappy"`
	RawAnomaly       float64  `parquet:"raw_anomaly,snappy"`
	ZScore           float64  `parquet:"z_score,snappy"`
	Percentile       float64  `parquet:"percentile,snappy"`
	IsSpike          bool     `parquet:"is_spike,snappy"`
	IsBaseline       bool     `parquet:"is_baseline,snappy"`
	ProsodyAnomaly   *float64 `parquet:"prosody_anomaly,optional,snappy"`
	EmbeddingAnomaly *float64 `parquet:"embedding_anomaly,optional,snappy"`
}

// writeRows writes rows of T to a new Parquet file at outputPath.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of RunRow structs to a Parquet file.
func WriteRunsParquet(data []RunRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteSegmentsParquet writes a slice of SegmentRow structs to a Parquet file.
func WriteSegmentsParquet(data []SegmentRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteScoredSegmentsParquet writes a slice of ScoredSegmentRow structs to a Parquet file.
func WriteScoredSegmentsParquet(data []ScoredSegmentRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to RunRow for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RunRow {
	result := make([]RunRow, len(records))
	for i, record := range records {
		result[i] = RunRow{
			RunID:            record.RunID,
			RunUUID:          record.RunUUID,
			Operation:        record.Operation,
			Modality:         record.Modality,
			StartTime:        record.StartTime,
			EndTime:          record.EndTime,
			RunDurationMs:    record.RunDurationMs,
			TotalItems:       record.TotalItems,
			ConsistencyScore: record.ConsistencyScore,
			ConfigParams:     record.ConfigParams,
		}
	}
	return result
}

// ConvertSegmentRecords converts schema.SegmentScoreRecord to SegmentRow for Parquet export.
func ConvertSegmentRecords(records []schema.SegmentScoreRecord) []SegmentRow {
	result := make([]SegmentRow, len(records))
	for i, record := range records {
		result[i] = SegmentRow(record)
	}
	return result
}

// ConvertScoredSegments converts the scored segments of a shift result to ScoredSegmentRow.
func ConvertScoredSegments(segments []schema.ScoredSegment) []ScoredSegmentRow {
	result := make([]ScoredSegmentRow, len(segments))
	for i, s := range segments {
		result[i] = ScoredSegmentRow{
			SegmentIndex:     int32(s.Index),
			StartMs:          int32(s.StartMs),
			EndMs:            int32(s.EndMs),
			RawAnomaly:       s.RawAnomaly,
			ZScore:           s.ZScore,
			Percentile:       s.PercentileVsBaseline,
			IsSpike:          s.IsSpike,
			IsBaseline:       s.IsBaseline,
			ProsodyAnomaly:   s.ProsodyAnomaly,
			EmbeddingAnomaly: s.EmbeddingAnomaly,
		}
	}
	return result
}
