package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// reasonsFixedWidth is the table width taken by every column except the reason tags.
const reasonsFixedWidth = 50

// PrintReasonsResult outputs the reason tags, keywords and signals of every text.
func PrintReasonsResult(result schema.ReasonsResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatSet{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{
			"index",
			"score",
			"word_count",
			"metric_hits",
			"buzzword_hits",
			"hedge_hits",
			"absolute_hits",
			"reason_tags",
			"keywords",
			"semantic_similarity",
			"semantic_outlier",
		},
		csv: func(w *csv.Writer) error {
			for _, r := range result.Items {
				row := []string{
					strconv.Itoa(r.Index),
					fmt.Sprintf(intFmt, r.Signals.Score),
					fmt.Sprintf(intFmt, r.Signals.WordCount),
					fmt.Sprintf(intFmt, r.Signals.MetricHits),
					fmt.Sprintf(intFmt, r.Signals.BuzzwordHits),
					fmt.Sprintf(intFmt, r.Signals.HedgeHits),
					fmt.Sprintf(intFmt, r.Signals.AbsoluteHits),
					strings.Join(r.ReasonTags, "|"),
					strings.Join(r.Keywords, "|"),
					fmtOptional(r.SemanticSimilarity, fmtFloat),
					strconv.FormatBool(r.SemanticOutlier),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			maxText := getMaxTableTextWidth(cfg, reasonsFixedWidth)
			var data [][]string
			for _, r := range result.Items {
				data = append(data, []string{
					strconv.Itoa(r.Index),
					fmt.Sprintf(intFmt, r.Signals.Score),
					fmt.Sprintf(intFmt, r.Signals.WordCount),
					fmtOptional(r.SemanticSimilarity, fmtFloat),
					contract.Truncate(strings.Join(r.ReasonTags, "; "), maxText),
				})
			}
			if err := renderTable(w, []string{"Index", "Score", "Words", "Semantic", "Reasons"}, data); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration, result.EmbeddingModel)
		},
	})
}

// signalRows lists the lexical signals in display order.
func signalRows(c schema.LexicalCounts, fmtFloat func(float64) string) [][]string {
	return [][]string{
		{"score", strconv.Itoa(c.Score)},
		{"word_count", strconv.Itoa(c.WordCount)},
		{"sentence_count", strconv.Itoa(c.SentenceCount)},
		{"metric_hits", strconv.Itoa(c.MetricHits)},
		{"buzzword_hits", strconv.Itoa(c.BuzzwordHits)},
		{"hedge_hits", strconv.Itoa(c.HedgeHits)},
		{"absolute_hits", strconv.Itoa(c.AbsoluteHits)},
		{"buzzword_per_100_words", fmtFloat(c.BuzzwordPer100Words)},
	}
}

// PrintSignals outputs the lexical signals of a single text as metric/value rows.
func PrintSignals(counts schema.LexicalCounts, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	rows := signalRows(counts, fmtFloat)
	return dispatch(cfg, formatSet{
		json:      func(w io.Writer) error { return writeJSON(w, counts) },
		csvHeader: []string{"metric", "value"},
		csv: func(w *csv.Writer) error {
			return w.WriteAll(rows)
		},
		table: func(w io.Writer) error {
			return renderTable(w, []string{"Signal", "Value"}, rows)
		},
	})
}
