package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/parquet"
	"github.com/personalens/personalens/schema"
)

// PrintShiftResult outputs the scored segments and summary of an audio or video shift analysis.
func PrintShiftResult(result schema.ShiftResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	if cfg.Output == schema.ParquetOut {
		if err := parquet.WriteScoredSegmentsParquet(parquet.ConvertScoredSegments(result.Segments), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	}

	return dispatch(cfg, formatSet{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{
			"segment_index",
			"start_ms",
			"end_ms",
			"raw_anomaly",
			"z_score",
			"percentile",
			"is_spike",
			"is_baseline",
			"prosody_anomaly",
			"embedding_anomaly",
		},
		csv: func(w *csv.Writer) error {
			return writeCSVResultsForShift(w, result, fmtFloat)
		},
		table: func(w io.Writer) error {
			return writeShiftTable(w, result, cfg, fmtFloat, duration)
		},
	})
}

// writeCSVResultsForShift writes one row per scored segment.
func writeCSVResultsForShift(w *csv.Writer, result schema.ShiftResult, fmtFloat func(float64) string) error {
	for _, s := range result.Segments {
		row := []string{
			strconv.Itoa(s.Index),
			strconv.Itoa(s.StartMs),
			strconv.Itoa(s.EndMs),
			fmtFloat(s.RawAnomaly),
			fmtFloat(s.ZScore),
			fmtFloat(s.PercentileVsBaseline),
			strconv.FormatBool(s.IsSpike),
			strconv.FormatBool(s.IsBaseline),
			fmtOptional(s.ProsodyAnomaly, fmtFloat),
			fmtOptional(s.EmbeddingAnomaly, fmtFloat),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeShiftTable(w io.Writer, result schema.ShiftResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	headers := []string{"Seg", "Start", "End", "Raw", "Z", "Pct", "Base", "Spike"}
	fused := result.Alpha != nil
	if fused {
		headers = append(headers, "Prosody Z", "Embed Z")
	}

	var data [][]string
	for _, s := range result.Segments {
		base := ""
		if s.IsBaseline {
			base = "✓"
		}
		row := []string{
			strconv.Itoa(s.Index),
			formatMs(s.StartMs),
			formatMs(s.EndMs),
			fmtFloat(s.RawAnomaly),
			fmtFloat(s.ZScore),
			fmtFloat(s.PercentileVsBaseline),
			base,
			spikeMark(s.IsSpike),
		}
		if fused {
			row = append(row, fmtOptional(s.ProsodyAnomaly, fmtFloat), fmtOptional(s.EmbeddingAnomaly, fmtFloat))
		}
		data = append(data, row)
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(w, "Consistency %s (%s) over %d %s segments, %d spikes (rate %s), peak z %s\n",
		fmtFloat(s.ConsistencyScore), contract.GetColorLabel(s.ConsistencyScore), s.TotalSegments,
		result.Modality, s.SpikeCount, fmtFloat(s.SpikeRate), fmtFloat(s.PeakAnomaly)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Driver: %s (share %s). Baseline: first %ss, %d segments, dispersion %s. Threshold z >= %s\n",
		s.Driver, fmtFloat(s.DriverShare), strconv.FormatFloat(result.Baseline.Seconds, 'f', -1, 64),
		result.Baseline.SourceCount, fmtFloat(result.Baseline.Dispersion), fmtFloat(result.Threshold)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration, "")
}

// formatMs renders a millisecond offset as seconds, e.g. 4000 -> "4.0s".
func formatMs(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 1, 64) + "s"
}
