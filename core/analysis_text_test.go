package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/personalens/personalens/core/lexical"
	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

// fakeEmbedder maps known texts to fixed vectors; unknown texts get a constant vector.
type fakeEmbedder struct {
	vectors map[string]schema.FeatureVector
	err     error
	drop    bool // return one vector too few
	calls   int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([]schema.FeatureVector, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]schema.FeatureVector, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = schema.FeatureVector{0.5, 0.5}
		}
		out[i] = v.Clone()
	}
	if f.drop && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string { return "fake-2d" }

func newFake() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string]schema.FeatureVector{
		"alpha": {1, 0},
		"beta":  {0, 1},
		"gamma": {0, 1},
		"a1":    {1, 0},
		"a2":    {0.9, 0.1},
		"b1":    {0, 1},
		"b2":    {0.1, 0.9},
	}}
}

func TestAnalyzeDrift(t *testing.T) {
	a := NewAnalyzer(newFake(), 2)

	res, err := a.AnalyzeDrift(context.Background(), "alpha", "beta")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Similarity, delta)
	assert.InDelta(t, 1.0, res.DriftScore, delta)
	assert.Equal(t, "fake-2d", res.EmbeddingModel)

	same, err := a.AnalyzeDrift(context.Background(), "  alpha ", "alpha")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same.Similarity, delta)
	assert.InDelta(t, 0.0, same.DriftScore, delta)
}

func TestAnalyzeDriftEmptyInput(t *testing.T) {
	emb := newFake()
	a := NewAnalyzer(emb, 1)

	_, err := a.AnalyzeDrift(context.Background(), "alpha", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrEmptyInput)
	var ae *schema.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "textB", ae.Field)
	assert.Zero(t, emb.calls, "no embedding call for invalid input")
}

func TestEmbedFailures(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		analyzer *Analyzer
		kind     schema.ErrorKind
	}{
		{"nil embedder", NewAnalyzer(nil, 1), schema.KindInvalidParameter},
		{"upstream error", NewAnalyzer(&fakeEmbedder{err: cause}, 1), schema.KindUpstreamEmbeddingFailure},
		{"structured error kept", NewAnalyzer(&fakeEmbedder{err: schema.EmptyInput("texts")}, 1), schema.KindEmptyInput},
		{"missing vectors", NewAnalyzer(&fakeEmbedder{drop: true}, 1), schema.KindUpstreamEmbeddingFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.analyzer.AnalyzeDrift(context.Background(), "alpha", "beta")
			require.Error(t, err)
			assert.Equal(t, tt.kind, schema.KindOf(err))
		})
	}

	_, err := NewAnalyzer(&fakeEmbedder{err: cause}, 1).AnalyzeDrift(context.Background(), "alpha", "beta")
	assert.ErrorIs(t, err, cause, "upstream cause is kept")
}

func TestAnalyzeDriftSet(t *testing.T) {
	a := NewAnalyzer(newFake(), 4)

	res, err := a.AnalyzeDriftSet(context.Background(), []string{"alpha", "alpha", "  ", "beta"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count, "blank texts are dropped")
	assert.Equal(t, 2, res.EmbeddingDim)
	require.Len(t, res.SimilarityToCentroid, 3)
	assert.InDelta(t, 2/math.Sqrt(5), res.SimilarityToCentroid[0], delta)
	assert.InDelta(t, 1/math.Sqrt(5), res.SimilarityToCentroid[2], delta)
	assert.InDelta(t, math.Sqrt(5)/3, res.MeanSimilarity, delta)
	assert.InDelta(t, 100*(1-math.Sqrt(5)/3), res.DriftScore, delta)
	assert.Empty(t, res.OutlierIndices)
	assert.Equal(t, "fake-2d", res.EmbeddingModel)
}

func TestAnalyzeDriftSetInsufficient(t *testing.T) {
	_, err := NewAnalyzer(newFake(), 1).AnalyzeDriftSet(context.Background(), []string{"alpha", ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInsufficientItems)
	var ae *schema.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 2, ae.Required)
	assert.Equal(t, 1, ae.Available)
}

func timelineItems() []schema.TimelineItem {
	return []schema.TimelineItem{
		{Date: "2025-03-01", Text: "gamma"},
		{Date: "2025-01-01", Text: "alpha"},
		{Date: "", Text: "no date"},
		{Date: "2025-02-01", Text: "  alpha  "},
		{Date: "2025-04-01", Text: "   "},
	}
}

func TestAnalyzeTimeline(t *testing.T) {
	a := NewAnalyzer(newFake(), 2)

	res, err := a.AnalyzeTimeline(context.Background(), timelineItems(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []schema.TimelineItem{
		{Date: "2025-01-01", Text: "alpha"},
		{Date: "2025-02-01", Text: "alpha"},
		{Date: "2025-03-01", Text: "gamma"},
	}, res.Items, "entries are cleaned and sorted by date")

	require.Len(t, res.Pairwise, 2)
	assert.InDelta(t, 0.0, res.Pairwise[0].DriftScore, delta)
	assert.InDelta(t, 1.0, res.Pairwise[1].DriftScore, delta)
	assert.Equal(t, "2025-02-01", res.Pairwise[1].FromDate)
	assert.Equal(t, "2025-03-01", res.Pairwise[1].ToDate)

	require.Len(t, res.Windows, 2)
	assert.Equal(t, "2025-01-01", res.Windows[0].StartDate)
	assert.Equal(t, "2025-02-01", res.Windows[0].EndDate)
	assert.InDelta(t, 0.0, res.Windows[0].DriftScore, delta)
	assert.Greater(t, res.Windows[1].DriftScore, 0.0)

	assert.Equal(t, 3, res.Summary.TotalSegments)
	assert.Equal(t, schema.DriverText, res.Summary.Driver)
	assert.Equal(t, 1.0, res.Summary.DriverShare)
	assert.Equal(t, 1, res.Summary.SpikeCount, "the gamma entry departs from the opening entries")
}

func TestAnalyzeTimelineNoFullWindow(t *testing.T) {
	res, err := NewAnalyzer(newFake(), 1).AnalyzeTimeline(context.Background(), timelineItems(), 5, 1)
	require.NoError(t, err)
	assert.NotNil(t, res.Windows)
	assert.Empty(t, res.Windows)
	assert.Len(t, res.Pairwise, 2)
}

func TestAnalyzeTimelineErrors(t *testing.T) {
	a := NewAnalyzer(newFake(), 1)

	_, err := a.AnalyzeTimeline(context.Background(), []schema.TimelineItem{
		{Date: "2025-01-01", Text: "alpha"},
		{Date: "01/02/2025", Text: "beta"},
	}, 2, 1)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	_, err = a.AnalyzeTimeline(context.Background(), []schema.TimelineItem{{Date: "2025-01-01", Text: "alpha"}}, 2, 1)
	assert.ErrorIs(t, err, schema.ErrInsufficientItems)

}

func TestAnalyzeTimelineWindowCheckedBeforeEmbedding(t *testing.T) {
	emb := newFake()
	a := NewAnalyzer(emb, 1)

	_, err := a.AnalyzeTimeline(context.Background(), timelineItems(), 1, 1)
	require.ErrorIs(t, err, schema.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "window")

	_, err = a.AnalyzeTimeline(context.Background(), timelineItems(), 2, 0)
	require.ErrorIs(t, err, schema.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "stride")

	assert.Zero(t, emb.calls)
}

func TestAnalyzeClusters(t *testing.T) {
	a := NewAnalyzer(newFake(), 2)

	res, err := a.AnalyzeClusters(context.Background(), []string{"a1", "b1", "", "a2", "b2"}, 2, 42, 25)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, 2, res.K)
	assert.Equal(t, int64(42), res.Seed)
	require.Len(t, res.Clusters, 2)
	require.Len(t, res.Items, 4)
	assert.Equal(t, res.Items[0].ClusterID, res.Items[2].ClusterID, "a1 and a2 cluster together")
	assert.Equal(t, res.Items[1].ClusterID, res.Items[3].ClusterID, "b1 and b2 cluster together")
	assert.NotEqual(t, res.Items[0].ClusterID, res.Items[1].ClusterID)
	for _, c := range res.Clusters {
		assert.Equal(t, 2, c.Size)
	}

	again, err := a.AnalyzeClusters(context.Background(), []string{"a1", "b1", "", "a2", "b2"}, 2, 42, 25)
	require.NoError(t, err)
	assert.Equal(t, res.Items, again.Items, "same seed gives the same assignment")
}

func TestAnalyzeClustersParametersCheckedFirst(t *testing.T) {
	emb := newFake()
	a := NewAnalyzer(emb, 1)

	_, err := a.AnalyzeClusters(context.Background(), []string{"a1", "b1"}, 3, 42, 25)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)
	_, err = a.AnalyzeClusters(context.Background(), []string{"a1", "b1"}, 2, 42, 0)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)
	_, err = a.AnalyzeClusters(context.Background(), []string{"a1"}, 1, 42, 25)
	assert.ErrorIs(t, err, schema.ErrInsufficientItems)
	assert.Zero(t, emb.calls)
}

func TestAnalyzeTextReasons(t *testing.T) {
	emb := newFake()
	for _, s := range []string{"one", "two", "three", "four"} {
		emb.vectors[s] = schema.FeatureVector{1, 0}
	}
	a := NewAnalyzer(emb, 2)

	res, err := a.AnalyzeTextReasons(context.Background(), []string{"one", "two", "three", "four", "beta"})
	require.NoError(t, err)
	require.Equal(t, 5, res.Count)
	assert.Equal(t, "fake-2d", res.EmbeddingModel)

	odd := res.Items[4]
	assert.Equal(t, 4, odd.Index)
	assert.True(t, odd.SemanticOutlier)
	assert.Contains(t, odd.ReasonTags, lexical.TagSemanticOutlier)
	require.NotNil(t, odd.SemanticSimilarity)
	assert.Less(t, *odd.SemanticSimilarity, 0.5)

	first := res.Items[0]
	assert.False(t, first.SemanticOutlier)
	assert.Contains(t, first.ReasonTags, lexical.TagVeryShort)
	assert.Equal(t, []string{"one"}, first.Keywords)
	assert.Equal(t, 1, first.Signals.WordCount)
}

func TestAnalyzeTextReasonsSubset(t *testing.T) {
	emb := newFake()
	a := NewAnalyzer(emb, 1)
	texts := []string{"alpha", "beta", "gamma"}

	res, err := a.AnalyzeTextReasonsSubset(context.Background(), texts, []int{2, 7, -1})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count, "out-of-range indices are ignored")
	assert.Equal(t, 2, res.Items[0].Index)
	assert.Nil(t, res.Items[0].SemanticSimilarity, "a single text has no semantic comparison")
	assert.Empty(t, res.EmbeddingModel)
	assert.Zero(t, emb.calls)

	_, err = a.AnalyzeTextReasons(context.Background(), nil)
	assert.ErrorIs(t, err, schema.ErrEmptyInput)
}

func TestAnalyzeTextSignals(t *testing.T) {
	counts := AnalyzeTextSignals("  We grew revenue 40% in 2 quarters.  ")
	assert.Equal(t, lexical.Extract("We grew revenue 40% in 2 quarters."), counts)
	assert.Equal(t, 7, counts.WordCount)
	assert.Positive(t, counts.MetricHits)
}
