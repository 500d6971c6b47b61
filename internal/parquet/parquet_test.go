package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err, "Should be able to open output file")
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	return rows[:n]
}

func sampleRuns() []schema.RunRecord {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	score := 71.5
	params := `{"window":3}`
	return []schema.RunRecord{
		{
			RunID:            1,
			RunUUID:          "5f0c4c1e-8d34-4a59-9a5e-0c6a1b1f7d11",
			Operation:        "audio-shift",
			Modality:         "audio",
			StartTime:        start,
			EndTime:          &end,
			RunDurationMs:    &duration,
			TotalItems:       12,
			ConsistencyScore: &score,
			ConfigParams:     &params,
		},
		{
			RunID:     2,
			RunUUID:   "0b0e6f83-7d8f-4b5c-a1f9-2b4c2f7e9a20",
			Operation: "clusters",
			Modality:  "text",
			StartTime: start.Add(time.Hour),
		},
	}
}

func TestRunRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RunRow))
	require.NotNil(t, s)

	expectedColumns := []string{
		"run_id",
		"run_uuid",
		"operation",
		"modality",
		"start_time",
		"end_time",
		"run_duration_ms",
		"total_items",
		"consistency_score",
		"config_params",
	}
	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestSegmentRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(SegmentRow))
	for _, colName := range []string{"run_id", "segment_index", "start_ms", "end_ms", "raw_anomaly", "z_score", "percentile", "is_spike", "is_baseline"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := ConvertRunRecords(sampleRuns())

	require.NoError(t, WriteRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	got := readAll[RunRow](t, outputPath)
	require.Len(t, got, len(data))

	assert.Equal(t, data[0].RunUUID, got[0].RunUUID)
	assert.Equal(t, "audio-shift", got[0].Operation)
	assert.Equal(t, int32(12), got[0].TotalItems)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].ConsistencyScore)
	assert.InDelta(t, 71.5, *got[0].ConsistencyScore, 1e-9)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, `{"window":3}`, *got[0].ConfigParams)

	// Nullable fields of an unfinished run stay nil
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConsistencyScore)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteSegmentsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "segments.parquet")
	records := []schema.SegmentScoreRecord{
		{RunID: 1, SegmentIndex: 0, StartMs: 0, EndMs: 4000, RawAnomaly: 0.2, ZScore: 0.5, Percentile: 50, IsBaseline: true},
		{RunID: 1, SegmentIndex: 1, StartMs: 2000, EndMs: 6000, RawAnomaly: 1.1, ZScore: 2.75, Percentile: 100, IsSpike: true},
	}

	require.NoError(t, WriteSegmentsParquet(ConvertSegmentRecords(records), outputPath))

	got := readAll[SegmentRow](t, outputPath)
	require.Len(t, got, 2)
	assert.Equal(t, SegmentRow(records[0]), got[0])
	assert.Equal(t, SegmentRow(records[1]), got[1])
}

func TestWriteScoredSegmentsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "scored.parquet")
	prosodyZ := 1.5
	segments := []schema.ScoredSegment{
		{
			Index:          3,
			Segment:        schema.Segment{StartMs: 6000, EndMs: 10000},
			AnomalyResult:  schema.AnomalyResult{RawAnomaly: 0.9, ZScore: 1.5, PercentileVsBaseline: 75, IsSpike: true},
			ProsodyAnomaly: &prosodyZ,
		},
	}

	require.NoError(t, WriteScoredSegmentsParquet(ConvertScoredSegments(segments), outputPath))

	got := readAll[ScoredSegmentRow](t, outputPath)
	require.Len(t, got, 1)
	assert.Equal(t, int32(3), got[0].SegmentIndex)
	assert.Equal(t, int32(6000), got[0].StartMs)
	assert.True(t, got[0].IsSpike)
	require.NotNil(t, got[0].ProsodyAnomaly)
	assert.InDelta(t, 1.5, *got[0].ProsodyAnomaly, 1e-9)
	assert.Nil(t, got[0].EmbeddingAnomaly)
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty_runs.parquet")

	require.NoError(t, WriteRunsParquet([]RunRow{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteRunsParquet(ConvertRunRecords(sampleRuns()), "/nonexistent/directory/output.parquet")
	require.Error(t, err)

	err = WriteSegmentsParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
