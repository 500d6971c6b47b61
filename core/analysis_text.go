package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/personalens/personalens/core/algo"
	"github.com/personalens/personalens/core/lexical"
	"github.com/personalens/personalens/schema"
)

// cleanTexts trims every text and drops the blank ones.
func cleanTexts(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// AnalyzeDrift measures the semantic drift between two texts.
func (a *Analyzer) AnalyzeDrift(ctx context.Context, textA, textB string) (schema.DriftResult, error) {
	textA, textB = strings.TrimSpace(textA), strings.TrimSpace(textB)
	if textA == "" {
		return schema.DriftResult{}, schema.EmptyInput("textA")
	}
	if textB == "" {
		return schema.DriftResult{}, schema.EmptyInput("textB")
	}
	vecs, err := a.embed(ctx, []string{textA, textB})
	if err != nil {
		return schema.DriftResult{}, err
	}
	sim, err := algo.CosineSimilarity(vecs[0], vecs[1])
	if err != nil {
		return schema.DriftResult{}, err
	}
	return schema.DriftResult{
		Similarity:     sim,
		DriftScore:     1 - sim,
		EmbeddingModel: a.model(),
	}, nil
}

// AnalyzeDriftSet measures how far every text of a set sits from the set centroid.
// The drift score is (1 - mean similarity) on a 0..100 scale.
func (a *Analyzer) AnalyzeDriftSet(ctx context.Context, texts []string) (schema.DriftSetResult, error) {
	cleaned := cleanTexts(texts)
	if len(cleaned) < 2 {
		return schema.DriftSetResult{}, schema.InsufficientItems("texts", 2, len(cleaned))
	}
	vecs, err := a.embed(ctx, cleaned)
	if err != nil {
		return schema.DriftSetResult{}, err
	}
	win, sims, err := algo.NewDriftEngine(a.Workers).SetDrift(vecs)
	if err != nil {
		return schema.DriftSetResult{}, err
	}
	return schema.DriftSetResult{
		Count:                len(cleaned),
		EmbeddingDim:         len(vecs[0]),
		SimilarityToCentroid: sims,
		MeanSimilarity:       win.MeanSimilarity,
		MinSimilarity:        win.MinSimilarity,
		MaxSimilarity:        win.MaxSimilarity,
		StdSimilarity:        win.StdSimilarity,
		DriftScore:           min(100, max(0, (1-win.MeanSimilarity)*100)),
		OutlierIndices:       win.OutlierIndices,
		EmbeddingModel:       a.model(),
	}, nil
}

type datedItem struct {
	schema.TimelineItem
	at time.Time
}

// cleanTimeline drops entries without a date or text, parses the dates
// and stable-sorts the entries by date.
func cleanTimeline(items []schema.TimelineItem) ([]schema.TimelineItem, error) {
	dated := make([]datedItem, 0, len(items))
	for i, it := range items {
		d, t := strings.TrimSpace(it.Date), strings.TrimSpace(it.Text)
		if d == "" || t == "" {
			continue
		}
		at, err := time.Parse(schema.TimelineDateLayout, d)
		if err != nil {
			return nil, schema.InvalidParameter(fmt.Sprintf("items[%d].date", i), "invalid date %q, use YYYY-MM-DD", d)
		}
		dated = append(dated, datedItem{TimelineItem: schema.TimelineItem{Date: d, Text: t}, at: at})
	}
	slices.SortStableFunc(dated, func(x, y datedItem) int {
		return x.at.Compare(y.at)
	})
	out := make([]schema.TimelineItem, len(dated))
	for i, d := range dated {
		out[i] = d.TimelineItem
	}
	return out, nil
}

// AnalyzeTimeline computes pairwise and rolling-window drift over dated texts.
// The summary scores every entry against the first two entries.
func (a *Analyzer) AnalyzeTimeline(ctx context.Context, items []schema.TimelineItem, window, stride int) (schema.TimelineResult, error) {
	if err := algo.CheckWindow(window, stride); err != nil {
		return schema.TimelineResult{}, err
	}
	cleaned, err := cleanTimeline(items)
	if err != nil {
		return schema.TimelineResult{}, err
	}
	if len(cleaned) < 2 {
		return schema.TimelineResult{}, schema.InsufficientItems("items", 2, len(cleaned))
	}

	texts := make([]string, len(cleaned))
	for i, it := range cleaned {
		texts[i] = it.Text
	}
	vecs, err := a.embed(ctx, texts)
	if err != nil {
		return schema.TimelineResult{}, err
	}

	engine := algo.NewDriftEngine(a.Workers)
	pairs, err := engine.Pairwise(vecs)
	if err != nil {
		return schema.TimelineResult{}, err
	}
	for i := range pairs {
		pairs[i].FromDate = cleaned[pairs[i].FromIndex].Date
		pairs[i].ToDate = cleaned[pairs[i].ToIndex].Date
	}
	windows, err := engine.Windows(vecs, window, stride)
	if err != nil {
		return schema.TimelineResult{}, err
	}
	for i := range windows {
		windows[i].StartDate = cleaned[windows[i].StartIndex].Date
		windows[i].EndDate = cleaned[windows[i].EndIndex].Date
	}
	if windows == nil {
		windows = []schema.DriftWindow{}
	}

	summary, err := a.textSummary(vecs)
	if err != nil {
		return schema.TimelineResult{}, err
	}

	return schema.TimelineResult{
		Count:          len(cleaned),
		Window:         window,
		Stride:         stride,
		Items:          cleaned,
		Pairwise:       pairs,
		Windows:        windows,
		Summary:        summary,
		EmbeddingModel: a.model(),
	}, nil
}

// textSummary scores ordered text embeddings against a leading-entries baseline.
func (a *Analyzer) textSummary(vecs []schema.FeatureVector) (schema.RunSummary, error) {
	segments := make([]schema.Segment, len(vecs))
	for i, v := range vecs {
		segments[i] = schema.Segment{StartMs: i, EndMs: i + 1, Features: v}
	}
	baseline, idx, err := algo.EstimateBaseline(segments, algo.ByCount(schema.DefaultTimelineBase), schema.MinBaselineCount)
	if err != nil {
		return schema.RunSummary{}, err
	}
	report, err := algo.Scorer{Threshold: schema.DefaultSpikeThreshold, Workers: a.Workers}.Score(baseline, segments, idx)
	if err != nil {
		return schema.RunSummary{}, err
	}
	summary := report.Summary
	summary.Driver = schema.DriverText
	summary.DriverShare = 1
	return summary, nil
}

// AnalyzeClusters groups texts with seeded k-means and labels each cluster.
// Blank texts are dropped before clustering; item indices refer to the kept texts.
func (a *Analyzer) AnalyzeClusters(ctx context.Context, texts []string, k int, seed int64, maxIter int) (schema.ClusterResult, error) {
	cleaned := cleanTexts(texts)
	if len(cleaned) < 2 {
		return schema.ClusterResult{}, schema.InsufficientItems("texts", 2, len(cleaned))
	}
	km := algo.KMeans{K: k, Seed: seed, MaxIter: maxIter, Workers: a.Workers}
	// Check parameters before paying for embeddings
	if k < 1 || k > len(cleaned) {
		return schema.ClusterResult{}, schema.InvalidParameter("k", "must be within [1,%d], got %d", len(cleaned), k)
	}
	if maxIter < 1 {
		return schema.ClusterResult{}, schema.InvalidParameter("maxIter", "must be >= 1, got %d", maxIter)
	}

	vecs, err := a.embed(ctx, cleaned)
	if err != nil {
		return schema.ClusterResult{}, err
	}
	clusters, res, err := km.Clusters(vecs, cleaned)
	if err != nil {
		return schema.ClusterResult{}, err
	}

	items := make([]schema.ClusterAssignment, len(res.Assignments))
	for i, c := range res.Assignments {
		items[i] = schema.ClusterAssignment{Index: i, ClusterID: c}
	}
	return schema.ClusterResult{
		Count:          len(cleaned),
		K:              k,
		Seed:           seed,
		Iterations:     res.Iterations,
		Clusters:       clusters,
		Items:          items,
		EmbeddingModel: a.model(),
	}, nil
}

// AnalyzeTextReasons explains every text with reason tags, keywords and lexical signals.
func (a *Analyzer) AnalyzeTextReasons(ctx context.Context, texts []string) (schema.ReasonsResult, error) {
	return a.AnalyzeTextReasonsSubset(ctx, texts, nil)
}

// AnalyzeTextReasonsSubset is AnalyzeTextReasons restricted to the given indices.
// Out-of-range indices are ignored and a nil slice selects every text.
// With at least two selected texts every text is also compared with the
// centroid of the selection and flagged when it is a semantic outlier.
func (a *Analyzer) AnalyzeTextReasonsSubset(ctx context.Context, texts []string, indices []int) (schema.ReasonsResult, error) {
	if len(texts) == 0 {
		return schema.ReasonsResult{}, schema.EmptyInput("texts")
	}
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = strings.TrimSpace(t)
	}

	origin := indices
	if origin == nil {
		origin = make([]int, len(cleaned))
		for i := range origin {
			origin[i] = i
		}
	} else {
		origin = slices.DeleteFunc(slices.Clone(origin), func(i int) bool {
			return i < 0 || i >= len(cleaned)
		})
	}
	subset := make([]string, len(origin))
	for i, j := range origin {
		subset[i] = cleaned[j]
	}

	var sims []float64
	outliers := map[int]bool{}
	model := ""
	if len(subset) >= 2 {
		vecs, err := a.embed(ctx, subset)
		if err != nil {
			return schema.ReasonsResult{}, err
		}
		win, s, err := algo.NewDriftEngine(a.Workers).SetDrift(vecs)
		if err != nil {
			return schema.ReasonsResult{}, err
		}
		sims = s
		for _, i := range win.OutlierIndices {
			outliers[i] = true
		}
		model = a.model()
	}

	items := make([]schema.TextReason, len(subset))
	for i, t := range subset {
		counts := lexical.Extract(t)
		item := schema.TextReason{
			Index:           origin[i],
			Signals:         counts,
			Keywords:        lexical.Keywords([]string{t}, schema.DefaultKeywordCount),
			SemanticOutlier: outliers[i],
			ReasonTags:      lexical.ReasonTags(counts, outliers[i], schema.DefaultMaxReasonTags),
		}
		if sims != nil {
			sim := sims[i]
			item.SemanticSimilarity = &sim
		}
		items[i] = item
	}

	return schema.ReasonsResult{
		Count:          len(items),
		Items:          items,
		EmbeddingModel: model,
	}, nil
}

// AnalyzeTextSignals returns the lexical signals of a single text.
func AnalyzeTextSignals(text string) schema.LexicalCounts {
	return lexical.Extract(strings.TrimSpace(text))
}

