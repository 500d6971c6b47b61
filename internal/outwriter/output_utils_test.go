package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// driftFormatSet renders a drift result the way the result printers do.
func driftFormatSet(result schema.DriftResult) formatSet {
	fmtFloat, _ := createFormatters(2)
	return formatSet{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csv: func(w *csv.Writer) error {
			return w.Write([]string{fmtFloat(result.Similarity), fmtFloat(result.DriftScore), result.EmbeddingModel})
		},
		table: func(w io.Writer) error {
			return renderTable(w, []string{"Similarity", "Drift"}, [][]string{
				{fmtFloat(result.Similarity), fmtFloat(result.DriftScore)},
			})
		},
		csvHeader: []string{"similarity", "drift_score", "embedding_model"},
	}
}

func TestDispatch(t *testing.T) {
	result := schema.DriftResult{Similarity: 0.875, DriftScore: 12.5, EmbeddingModel: "feature-hash-64"}

	tests := []struct {
		output schema.OutputMode
		file   string
		check  func(t *testing.T, out string)
	}{
		{schema.JSONOut, "drift.json", func(t *testing.T, out string) {
			var decoded schema.DriftResult
			require.NoError(t, json.Unmarshal([]byte(out), &decoded))
			assert.Equal(t, result, decoded)
		}},
		{schema.CSVOut, "drift.csv", func(t *testing.T, out string) {
			assert.Equal(t, "similarity,drift_score,embedding_model\n0.88,12.50,feature-hash-64\n", out)
		}},
		{schema.TextOut, "drift.txt", func(t *testing.T, out string) {
			assert.Contains(t, strings.ToLower(out), "similarity")
			assert.Contains(t, out, "0.88")
			assert.Contains(t, out, "12.50")
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.output), func(t *testing.T) {
			cfg := newTestConfig(t, tt.output, tt.file)
			require.NoError(t, dispatch(cfg, driftFormatSet(result)))
			tt.check(t, readOutput(t, cfg))
		})
	}
}

func TestDispatch_RendererErrors(t *testing.T) {
	fs := formatSet{
		json:      func(io.Writer) error { return assert.AnError },
		csv:       func(*csv.Writer) error { return assert.AnError },
		table:     func(io.Writer) error { return assert.AnError },
		csvHeader: []string{"index"},
	}

	err := dispatch(newTestConfig(t, schema.JSONOut, "out.json"), fs)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "error writing JSON output")

	err = dispatch(newTestConfig(t, schema.CSVOut, "out.csv"), fs)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "error writing CSV output")

	err = dispatch(newTestConfig(t, schema.TextOut, "out.txt"), fs)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDispatch_UnwritableFile(t *testing.T) {
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(t.TempDir(), "missing", "out.csv")}
	err := dispatch(cfg, driftFormatSet(schema.DriftResult{}))
	require.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	err := renderTable(&buf, []string{"Index", "Z"}, [][]string{
		{"0", "0.41"},
		{"1", "2.30"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "INDEX")
	assert.Contains(t, out, "0.41")
	assert.Contains(t, out, "2.30")
	assert.Less(t, strings.Index(out, "0.41"), strings.Index(out, "2.30"), "rows keep their order")
}

func TestWriteFooter(t *testing.T) {
	cfg := &contract.Config{Workers: 3}

	var buf bytes.Buffer
	require.NoError(t, writeFooter(&buf, cfg, 1500*time.Millisecond, "text-embedding-3-small"))
	assert.Equal(t, "Analysis completed in 1.5s with 3 workers. Embedding model: text-embedding-3-small\n", buf.String())

	buf.Reset()
	require.NoError(t, writeFooter(&buf, cfg, time.Second, ""))
	assert.Equal(t, "Analysis completed in 1s with 3 workers.\n", buf.String())
}

func TestWriteJSON_ShiftSegmentsKeepFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleShift()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "audio", decoded["modality"])
	assert.Contains(t, decoded, "segments")
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  "), "output is indented")
}

func TestWriteJSON_Unencodable(t *testing.T) {
	err := writeJSON(io.Discard, map[string]any{"segment": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader_StopsOnRowError(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"section"}, func(w *csv.Writer) error {
		if err := w.Write([]string{"timeline"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "section\ntimeline\n", buf.String(), "rows written before the error are flushed")
}
