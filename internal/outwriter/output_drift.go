package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// PrintDriftResult outputs a two-text drift result.
func PrintDriftResult(result schema.DriftResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg, formatSet{
		json:      func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{"similarity", "drift_score", "label", "embedding_model"},
		csv: func(w *csv.Writer) error {
			return w.Write([]string{
				fmtFloat(result.Similarity),
				fmtFloat(result.DriftScore),
				contract.GetPlainLabel(result.Similarity * 100),
				result.EmbeddingModel,
			})
		},
		table: func(w io.Writer) error {
			return writeDriftTable(w, result, cfg, fmtFloat, duration)
		},
	})
}

func writeDriftTable(w io.Writer, result schema.DriftResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	data := [][]string{{
		fmtFloat(result.Similarity),
		fmtFloat(result.DriftScore),
		contract.GetColorLabel(result.Similarity * 100),
	}}
	if err := renderTable(w, []string{"Similarity", "Drift", "Label"}, data); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration, result.EmbeddingModel)
}

// PrintDriftSetResult outputs the similarity of every text of a set to the set centroid.
func PrintDriftSetResult(result schema.DriftSetResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	outliers := make(map[int]bool, len(result.OutlierIndices))
	for _, i := range result.OutlierIndices {
		outliers[i] = true
	}
	return dispatch(cfg, formatSet{
		json:      func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{"index", "similarity_to_centroid", "is_outlier"},
		csv: func(w *csv.Writer) error {
			for i, sim := range result.SimilarityToCentroid {
				if err := w.Write([]string{strconv.Itoa(i), fmtFloat(sim), strconv.FormatBool(outliers[i])}); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			var data [][]string
			for i, sim := range result.SimilarityToCentroid {
				mark := ""
				if outliers[i] {
					mark = contract.SpikeColor.Sprint("OUTLIER")
				}
				data = append(data, []string{strconv.Itoa(i), fmtFloat(sim), mark})
			}
			if err := renderTable(w, []string{"Index", "Similarity", "Outlier"}, data); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Set drift %s (mean %s, min %s, max %s, std %s) across %d texts\n",
				fmtFloat(result.DriftScore), fmtFloat(result.MeanSimilarity), fmtFloat(result.MinSimilarity),
				fmtFloat(result.MaxSimilarity), fmtFloat(result.StdSimilarity), result.Count); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration, result.EmbeddingModel)
		},
	})
}

// PrintTimelineResult outputs the pairwise and rolling window drift of a timeline.
func PrintTimelineResult(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg, formatSet{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{
			"kind",
			"start_index",
			"end_index",
			"start_date",
			"end_date",
			"similarity",
			"drift_score",
			"outliers",
		},
		csv: func(w *csv.Writer) error {
			return writeCSVResultsForTimeline(w, result, fmtFloat)
		},
		table: func(w io.Writer) error {
			return writeTimelineTable(w, result, cfg, fmtFloat, duration)
		},
	})
}

// writeCSVResultsForTimeline writes one row per pair followed by one row per window.
// Window rows carry the mean similarity of the window.
func writeCSVResultsForTimeline(w *csv.Writer, result schema.TimelineResult, fmtFloat func(float64) string) error {
	for _, p := range result.Pairwise {
		row := []string{
			"pair",
			strconv.Itoa(p.FromIndex),
			strconv.Itoa(p.ToIndex),
			p.FromDate,
			p.ToDate,
			fmtFloat(p.Similarity),
			fmtFloat(p.DriftScore),
			"",
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	for _, win := range result.Windows {
		row := []string{
			"window",
			strconv.Itoa(win.StartIndex),
			strconv.Itoa(win.EndIndex),
			win.StartDate,
			win.EndDate,
			fmtFloat(win.MeanSimilarity),
			fmtFloat(win.DriftScore),
			joinInts(win.OutlierIndices),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeTimelineTable(w io.Writer, result schema.TimelineResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	var pairs [][]string
	for _, p := range result.Pairwise {
		pairs = append(pairs, []string{
			fmt.Sprintf("%d → %d", p.FromIndex, p.ToIndex),
			p.FromDate,
			p.ToDate,
			fmtFloat(p.Similarity),
			fmtFloat(p.DriftScore),
		})
	}
	if err := renderTable(w, []string{"Pair", "From", "To", "Similarity", "Drift"}, pairs); err != nil {
		return err
	}

	if len(result.Windows) > 0 {
		var windows [][]string
		for _, win := range result.Windows {
			windows = append(windows, []string{
				fmt.Sprintf("%d..%d", win.StartIndex, win.EndIndex),
				win.StartDate,
				win.EndDate,
				fmtFloat(win.MeanSimilarity),
				fmtFloat(win.MinSimilarity),
				fmtFloat(win.DriftScore),
				joinInts(win.OutlierIndices),
			})
		}
		if err := renderTable(w, []string{"Window", "Start", "End", "Mean", "Min", "Drift", "Outliers"}, windows); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "No full window of %d items (have %d)\n", result.Window, result.Count); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(w, "Consistency %s (%s), %d of %d entries spike, peak z %s\n",
		fmtFloat(s.ConsistencyScore), contract.GetColorLabel(s.ConsistencyScore),
		s.SpikeCount, s.TotalSegments, fmtFloat(s.PeakAnomaly)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration, result.EmbeddingModel)
}
