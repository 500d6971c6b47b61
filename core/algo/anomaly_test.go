package algo

import (
	"math"
	"testing"

	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorerScore(t *testing.T) {
	segments := []schema.Segment{seg(0, 0, 0), seg(1, 2, 0), seg(2, 1, 0), seg(3, 1, 3)}
	b, idx, err := EstimateBaseline(segments, BySeconds(12), schema.MinBaselineCount)
	require.NoError(t, err)

	report, err := Scorer{Threshold: schema.DefaultSpikeThreshold, Workers: 4}.Score(b, segments, idx)
	require.NoError(t, err)
	require.Len(t, report.Results, 4)

	centre := report.Results[2]
	assert.Equal(t, 0.0, centre.ZScore, "segment at the centroid has zero z-score")
	assert.False(t, centre.IsSpike)
	assert.Equal(t, 25.0, centre.PercentileVsBaseline)

	far := report.Results[3]
	assert.InDelta(t, 3.0, far.RawAnomaly, delta)
	assert.InDelta(t, 3.0/b.Dispersion, far.ZScore, delta)
	assert.True(t, far.IsSpike)
	assert.False(t, far.IsBaseline)
	assert.Equal(t, 100.0, far.PercentileVsBaseline)

	for _, i := range idx {
		assert.True(t, report.Results[i].IsBaseline)
	}

	s := report.Summary
	assert.Equal(t, 4, s.TotalSegments)
	assert.Equal(t, 3, s.SpikeCount)
	assert.InDelta(t, 0.75, s.SpikeRate, delta)
	assert.InDelta(t, far.ZScore, s.PeakAnomaly, delta)
	meanZ := (2*(1/b.Dispersion) + 3/b.Dispersion) / 4
	assert.InDelta(t, meanZ, s.MeanAnomaly, 1e-9)
	assert.InDelta(t, 100*math.Max(0, 1-meanZ/3), s.ConsistencyScore, 1e-9)
}

func TestScorerThresholdBoundary(t *testing.T) {
	b := schema.Baseline{Centroid: schema.FeatureVector{0}, Dispersion: 1, SourceCount: 2}
	segments := []schema.Segment{seg(0, 1.25), seg(1, 1.2)}

	report, err := Scorer{Threshold: 1.25}.Score(b, segments, nil)
	require.NoError(t, err)
	assert.True(t, report.Results[0].IsSpike, "z equal to the threshold is a spike")
	assert.False(t, report.Results[1].IsSpike)
}

func TestScorerErrors(t *testing.T) {
	b := schema.Baseline{Centroid: schema.FeatureVector{0, 0}, Dispersion: 1, SourceCount: 2}

	_, err := Scorer{Threshold: 0}.Score(b, []schema.Segment{seg(0, 1, 1)}, nil)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	_, err = Scorer{Threshold: 1}.Score(b, []schema.Segment{seg(0, 1)}, nil)
	assert.ErrorIs(t, err, schema.ErrDimensionMismatch)

	_, err = Scorer{Threshold: 1}.Score(b, nil, nil)
	assert.ErrorIs(t, err, schema.ErrInsufficientItems)
}

func TestScoreSeries(t *testing.T) {
	report, err := Scorer{Threshold: 1.25}.ScoreSeries([]float64{0.5, 2, 1}, []int{0})
	require.NoError(t, err)
	assert.True(t, report.Results[0].IsBaseline)
	assert.True(t, report.Results[1].IsSpike)
	assert.InDelta(t, 100.0/3, report.Results[0].PercentileVsBaseline, delta)
	assert.Equal(t, 1, report.Summary.SpikeCount)
	assert.InDelta(t, 2.0, report.Summary.PeakAnomaly, delta)
}

func TestConsistencyScore(t *testing.T) {
	assert.Equal(t, 100.0, ConsistencyScore(0))
	assert.InDelta(t, 50.0, ConsistencyScore(1.5), delta)
	assert.Equal(t, 0.0, ConsistencyScore(3))
	assert.Equal(t, 0.0, ConsistencyScore(10))
}
