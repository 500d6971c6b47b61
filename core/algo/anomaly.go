package algo

import (
	"github.com/personalens/personalens/schema"
)

// AnomalyReport holds per-segment results and the run-level summary.
type AnomalyReport struct {
	Results []schema.AnomalyResult
	Summary schema.RunSummary
}

// Scorer scores segments against a fixed baseline.
type Scorer struct {
	Threshold float64
	Workers   int
}

// Score computes the distance, z-score, percentile and spike flag of every segment.
// Segments whose index is in baselineIdx are flagged as baseline members.
func (s Scorer) Score(b schema.Baseline, segments []schema.Segment, baselineIdx []int) (AnomalyReport, error) {
	if s.Threshold <= 0 {
		return AnomalyReport{}, schema.InvalidParameter("threshold", "must be > 0, got %g", s.Threshold)
	}
	if b.Dispersion <= 0 {
		return AnomalyReport{}, schema.InvalidParameter("baseline", "dispersion must be > 0, got %g", b.Dispersion)
	}
	if len(segments) == 0 {
		return AnomalyReport{}, schema.InsufficientItems("segments", 1, 0)
	}

	dists := make([]float64, len(segments))
	err := parallelForErr(len(segments), s.Workers, func(i int) error {
		d, err := EuclideanDistance(segments[i].Features, b.Centroid)
		dists[i] = d
		return err
	})
	if err != nil {
		return AnomalyReport{}, err
	}

	z := make([]float64, len(dists))
	for i, d := range dists {
		z[i] = d / b.Dispersion
	}
	results := s.classify(dists, z, dists)
	markBaseline(results, baselineIdx)
	return AnomalyReport{Results: results, Summary: Summarize(results)}, nil
}

// ScoreSeries classifies a precomputed anomaly series, such as a fused one.
// The series values are used both as raw anomaly and as z-score.
func (s Scorer) ScoreSeries(series []float64, baselineIdx []int) (AnomalyReport, error) {
	if s.Threshold <= 0 {
		return AnomalyReport{}, schema.InvalidParameter("threshold", "must be > 0, got %g", s.Threshold)
	}
	if len(series) == 0 {
		return AnomalyReport{}, schema.InsufficientItems("segments", 1, 0)
	}
	results := s.classify(series, series, series)
	markBaseline(results, baselineIdx)
	return AnomalyReport{Results: results, Summary: Summarize(results)}, nil
}

// classify fills results from raw anomalies, z-scores and the values ranked for percentiles.
func (s Scorer) classify(raw, z, ranked []float64) []schema.AnomalyResult {
	results := make([]schema.AnomalyResult, len(raw))
	parallelFor(len(raw), s.Workers, func(i int) {
		results[i] = schema.AnomalyResult{
			RawAnomaly:           raw[i],
			ZScore:               z[i],
			PercentileVsBaseline: PercentileRank(ranked, ranked[i]),
			IsSpike:              z[i] >= s.Threshold,
		}
	})
	return results
}

func markBaseline(results []schema.AnomalyResult, idx []int) {
	for _, i := range idx {
		if i >= 0 && i < len(results) {
			results[i].IsBaseline = true
		}
	}
}

// Summarize builds the run summary of scored segments. Driver fields are left for the caller.
func Summarize(results []schema.AnomalyResult) schema.RunSummary {
	if len(results) == 0 {
		return schema.RunSummary{}
	}
	var sum, peak float64
	spikes := 0
	for i, r := range results {
		sum += r.ZScore
		if i == 0 || r.ZScore > peak {
			peak = r.ZScore
		}
		if r.IsSpike {
			spikes++
		}
	}
	mean := sum / float64(len(results))
	return schema.RunSummary{
		ConsistencyScore: ConsistencyScore(mean),
		TotalSegments:    len(results),
		SpikeCount:       spikes,
		SpikeRate:        float64(spikes) / float64(len(results)),
		PeakAnomaly:      peak,
		MeanAnomaly:      mean,
	}
}

// ConsistencyScore maps a mean z-score onto 0..100 using the ConsistencyZCeiling calibration.
func ConsistencyScore(meanZ float64) float64 {
	return 100 * clamp(1-meanZ/schema.ConsistencyZCeiling, 0, 1)
}
