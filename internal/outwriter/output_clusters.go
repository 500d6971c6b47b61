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

// clusterFixedWidth is the table width taken by every column except the representative text.
const clusterFixedWidth = 45

// PrintClusterResult outputs a clustering run, one row per cluster.
func PrintClusterResult(result schema.ClusterResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatSet{
		json: func(w io.Writer) error { return writeJSON(w, result) },
		csvHeader: []string{
			"cluster_id",
			"size",
			"label",
			"avg_similarity",
			"representative_index",
			"top_keywords",
			"member_indices",
		},
		csv: func(w *csv.Writer) error {
			for _, c := range result.Clusters {
				row := []string{
					strconv.Itoa(c.ClusterID),
					fmt.Sprintf(intFmt, c.Size),
					c.Label,
					fmtFloat(c.AvgSimilarity),
					strconv.Itoa(c.RepresentativeIndex),
					strings.Join(c.TopKeywords, "|"),
					joinInts(c.MemberIndices),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			return writeClusterTable(w, result, cfg, fmtFloat, intFmt, duration)
		},
	})
}

func writeClusterTable(w io.Writer, result schema.ClusterResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	maxText := getMaxTableTextWidth(cfg, clusterFixedWidth)
	var data [][]string
	for _, c := range result.Clusters {
		data = append(data, []string{
			strconv.Itoa(c.ClusterID),
			fmt.Sprintf(intFmt, c.Size),
			c.Label,
			fmtFloat(c.AvgSimilarity),
			contract.Truncate(c.RepresentativeText, maxText),
		})
	}
	if err := renderTable(w, []string{"ID", "Size", "Label", "Avg Sim", "Representative"}, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Clustered %d texts into %d clusters in %d iterations (seed %d)\n",
		result.Count, result.K, result.Iterations, result.Seed); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration, result.EmbeddingModel)
}
