package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, output schema.OutputMode, name string) *contract.Config {
	t.Helper()
	return &contract.Config{
		Output:     output,
		OutputFile: filepath.Join(t.TempDir(), name),
		Precision:  2,
		Workers:    4,
		Width:      120,
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(content)
}

func sampleShift() schema.ShiftResult {
	prosodyZ, embedZ := 2.5, 1.5
	alpha := 0.5
	return schema.ShiftResult{
		Modality: schema.AudioModality,
		Segments: []schema.ScoredSegment{
			{
				Index:         0,
				Segment:       schema.Segment{StartMs: 0, EndMs: 4000},
				AnomalyResult: schema.AnomalyResult{RawAnomaly: 0.3, ZScore: 0.3, PercentileVsBaseline: 50, IsBaseline: true},
			},
			{
				Index:            1,
				Segment:          schema.Segment{StartMs: 2000, EndMs: 6000},
				AnomalyResult:    schema.AnomalyResult{RawAnomaly: 2, ZScore: 2, PercentileVsBaseline: 100, IsSpike: true},
				ProsodyAnomaly:   &prosodyZ,
				EmbeddingAnomaly: &embedZ,
			},
		},
		Summary: schema.RunSummary{
			ConsistencyScore: 61.67,
			TotalSegments:    2,
			SpikeCount:       1,
			SpikeRate:        0.5,
			PeakAnomaly:      2,
			Driver:           schema.DriverProsody,
			DriverShare:      0.6,
		},
		Baseline:      schema.BaselineInfo{Seconds: 20, SourceCount: 2, Dispersion: 0.1},
		Threshold:     schema.DefaultSpikeThreshold,
		Alpha:         &alpha,
		UseEmbeddings: true,
	}
}

func TestPrintDriftResult_JSON(t *testing.T) {
	cfg := newTestConfig(t, schema.JSONOut, "drift.json")
	result := schema.DriftResult{Similarity: 0.8123456, DriftScore: 0.1876544, EmbeddingModel: "hash-256"}

	require.NoError(t, PrintDriftResult(result, cfg, time.Second))

	var decoded schema.DriftResult
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
	// JSON keeps full precision
	assert.Equal(t, result, decoded)
}

func TestPrintDriftResult_CSV(t *testing.T) {
	cfg := newTestConfig(t, schema.CSVOut, "drift.csv")
	result := schema.DriftResult{Similarity: 0.8123, DriftScore: 0.1877, EmbeddingModel: "hash-256"}

	require.NoError(t, PrintDriftResult(result, cfg, time.Second))

	lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "similarity,drift_score,label,embedding_model", lines[0])
	assert.Equal(t, "0.81,0.19,Consistent,hash-256", lines[1])
}

func TestPrintDriftSetResult_Table(t *testing.T) {
	cfg := newTestConfig(t, schema.TextOut, "set.txt")
	result := schema.DriftSetResult{
		Count:                3,
		SimilarityToCentroid: []float64{0.9, 0.2, 0.85},
		MeanSimilarity:       0.65,
		MinSimilarity:        0.2,
		MaxSimilarity:        0.9,
		StdSimilarity:        0.32,
		DriftScore:           35,
		OutlierIndices:       []int{1},
		EmbeddingModel:       "hash-256",
	}

	require.NoError(t, PrintDriftSetResult(result, cfg, time.Second))

	out := readOutput(t, cfg)
	assert.Contains(t, out, "OUTLIER")
	assert.Contains(t, out, "Set drift 35.00")
	assert.Contains(t, out, "across 3 texts")
	assert.Contains(t, out, "Embedding model: hash-256")
}

func TestPrintTimelineResult_Table(t *testing.T) {
	cfg := newTestConfig(t, schema.TextOut, "timeline.txt")
	result := schema.TimelineResult{
		Count:  3,
		Window: 3,
		Stride: 1,
		Pairwise: []schema.DriftPair{
			{FromIndex: 0, ToIndex: 1, Similarity: 0.9, DriftScore: 0.1, FromDate: "2025-01-01", ToDate: "2025-02-01"},
			{FromIndex: 1, ToIndex: 2, Similarity: 0.4, DriftScore: 0.6, FromDate: "2025-02-01", ToDate: "2025-03-01"},
		},
		Windows: []schema.DriftWindow{
			{StartIndex: 0, EndIndex: 2, Count: 3, MeanSimilarity: 0.7, MinSimilarity: 0.4, DriftScore: 0.3, OutlierIndices: []int{}},
		},
		Summary: schema.RunSummary{ConsistencyScore: 85, TotalSegments: 3},
	}

	require.NoError(t, PrintTimelineResult(result, cfg, time.Second))

	out := readOutput(t, cfg)
	assert.Contains(t, out, "0 → 1")
	assert.Contains(t, out, "0..2")
	assert.Contains(t, out, "Consistency 85.00")
	assert.NotContains(t, out, "No full window")
}

func TestPrintTimelineResult_NoWindows(t *testing.T) {
	cfg := newTestConfig(t, schema.TextOut, "timeline.txt")
	result := schema.TimelineResult{
		Count:    2,
		Window:   3,
		Pairwise: []schema.DriftPair{{FromIndex: 0, ToIndex: 1, Similarity: 1}},
	}

	require.NoError(t, PrintTimelineResult(result, cfg, time.Second))
	assert.Contains(t, readOutput(t, cfg), "No full window of 3 items (have 2)")
}

func TestWriteCSVResultsForTimeline(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	result := schema.TimelineResult{
		Pairwise: []schema.DriftPair{{FromIndex: 0, ToIndex: 1, Similarity: 0.5, DriftScore: 0.5, FromDate: "2025-01-01", ToDate: "2025-01-02"}},
		Windows:  []schema.DriftWindow{{StartIndex: 0, EndIndex: 2, MeanSimilarity: 0.75, DriftScore: 0.25, OutlierIndices: []int{0, 2}}},
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, writeCSVResultsForTimeline(w, result, fmtFloat))
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "pair,0,1,2025-01-01,2025-01-02,0.50,0.50,", lines[0])
	assert.Equal(t, "window,0,2,,,0.75,0.25,0 2", lines[1])
}

func TestPrintClusterResult_CSV(t *testing.T) {
	cfg := newTestConfig(t, schema.CSVOut, "clusters.csv")
	result := schema.ClusterResult{
		Count: 3,
		K:     2,
		Clusters: []schema.Cluster{
			{ClusterID: 0, Size: 2, Label: "revenue / growth", AvgSimilarity: 0.91, RepresentativeIndex: 2, TopKeywords: []string{"revenue", "growth"}, MemberIndices: []int{0, 2}},
			{ClusterID: 1, Size: 1, Label: "hiring", AvgSimilarity: 1, RepresentativeIndex: 1, TopKeywords: []string{"hiring"}, MemberIndices: []int{1}},
		},
	}

	require.NoError(t, PrintClusterResult(result, cfg, time.Second))

	lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "cluster_id,size,label,avg_similarity,representative_index,top_keywords,member_indices", lines[0])
	assert.Equal(t, "0,2,revenue / growth,0.91,2,revenue|growth,0 2", lines[1])
}

func TestPrintClusterResult_TableTruncatesText(t *testing.T) {
	cfg := newTestConfig(t, schema.TextOut, "clusters.txt")
	cfg.Width = 80
	long := strings.Repeat("consistent messaging ", 10)
	result := schema.ClusterResult{
		Count:    1,
		K:        1,
		Clusters: []schema.Cluster{{ClusterID: 0, Size: 1, Label: "messaging", RepresentativeText: long}},
	}

	require.NoError(t, PrintClusterResult(result, cfg, time.Second))

	out := readOutput(t, cfg)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "Clustered 1 texts into 1 clusters")
}

func TestPrintShiftResult_CSV(t *testing.T) {
	cfg := newTestConfig(t, schema.CSVOut, "shift.csv")

	require.NoError(t, PrintShiftResult(sampleShift(), cfg, time.Second))

	lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "segment_index,start_ms,end_ms"))
	// Missing branch scores stay blank
	assert.Equal(t, "0,0,4000,0.30,0.30,50.00,false,true,,", lines[1])
	assert.Equal(t, "1,2000,6000,2.00,2.00,100.00,true,false,2.50,1.50", lines[2])
}

func TestPrintShiftResult_Table(t *testing.T) {
	cfg := newTestConfig(t, schema.TextOut, "shift.txt")

	require.NoError(t, PrintShiftResult(sampleShift(), cfg, time.Second))

	out := readOutput(t, cfg)
	assert.Contains(t, out, "SPIKE")
	// Fused runs show the branch scores
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "over 2 audio segments, 1 spikes")
	assert.Contains(t, out, "Driver: prosody (share 0.60)")
	assert.Contains(t, out, "Baseline: first 20s")
}

func TestPrintShiftResult_Parquet(t *testing.T) {
	cfg := newTestConfig(t, schema.ParquetOut, "shift.parquet")

	require.NoError(t, PrintShiftResult(sampleShift(), cfg, time.Second))

	info, err := os.Stat(cfg.OutputFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestDispatch_ParquetUnsupported(t *testing.T) {
	cfg := newTestConfig(t, schema.ParquetOut, "drift.parquet")

	err := PrintDriftResult(schema.DriftResult{}, cfg, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only supported by audio-shift and video-shift")
}

func TestPrintReasonsResult_CSV(t *testing.T) {
	cfg := newTestConfig(t, schema.CSVOut, "reasons.csv")
	sim := 0.42
	result := schema.ReasonsResult{
		Count: 1,
		Items: []schema.TextReason{{
			Index:              0,
			ReasonTags:         []string{"Very short (noisy signal)", "Semantic outlier vs timeline"},
			Keywords:           []string{"synergy"},
			Signals:            schema.LexicalCounts{Score: 56, WordCount: 4, BuzzwordHits: 1},
			SemanticSimilarity: &sim,
			SemanticOutlier:    true,
		}},
	}

	require.NoError(t, PrintReasonsResult(result, cfg, time.Second))

	lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0,56,4,0,1,0,0,Very short (noisy signal)|Semantic outlier vs timeline,synergy,0.42,true", lines[1])
}

func TestPrintSignals(t *testing.T) {
	counts := schema.LexicalCounts{Score: 64, WordCount: 25, SentenceCount: 2, MetricHits: 2, BuzzwordPer100Words: 4}

	t.Run("csv", func(t *testing.T) {
		cfg := newTestConfig(t, schema.CSVOut, "signals.csv")
		require.NoError(t, PrintSignals(counts, cfg))
		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
		require.Len(t, lines, 9)
		assert.Equal(t, "metric,value", lines[0])
		assert.Equal(t, "score,64", lines[1])
		assert.Equal(t, "buzzword_per_100_words,4.00", lines[8])
	})

	t.Run("json", func(t *testing.T) {
		cfg := newTestConfig(t, schema.JSONOut, "signals.json")
		require.NoError(t, PrintSignals(counts, cfg))
		var decoded schema.LexicalCounts
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, counts, decoded)
	})
}

func TestOutWriterDelegates(t *testing.T) {
	ow := NewOutWriter()
	cfg := newTestConfig(t, schema.JSONOut, "out.json")

	require.NoError(t, ow.WriteShift(sampleShift(), cfg, time.Second))
	var decoded schema.ShiftResult
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
	assert.Len(t, decoded.Segments, 2)
	require.NotNil(t, decoded.Alpha)
	assert.InDelta(t, 0.5, *decoded.Alpha, 1e-9)
}

func TestGetMaxTableTextWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		fixed    int
		expected int
	}{
		{name: "narrow terminal clamps to minimum", width: 60, fixed: 45, expected: 15},
		{name: "wide terminal clamps to maximum", width: 300, fixed: 45, expected: 70},
		{name: "remaining space", width: 100, fixed: 45, expected: 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, getMaxTableTextWidth(cfg, tt.fixed))
		})
	}
}

func TestSmallFormatters(t *testing.T) {
	assert.Equal(t, "-", joinInts(nil))
	assert.Equal(t, "1 4 7", joinInts([]int{1, 4, 7}))
	assert.Equal(t, "4.0s", formatMs(4000))
	assert.Equal(t, "2.5s", formatMs(2500))

	fmtFloat, _ := createFormatters(1)
	v := 1.26
	assert.Equal(t, "", fmtOptional(nil, fmtFloat))
	assert.Equal(t, "1.3", fmtOptional(&v, fmtFloat))
	assert.Equal(t, "", spikeMark(false))
	assert.Contains(t, spikeMark(true), "SPIKE")
}
