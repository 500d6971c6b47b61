package core

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/personalens/personalens/core/algo"
	"github.com/personalens/personalens/core/prosody"
	"github.com/personalens/personalens/core/segment"
	"github.com/personalens/personalens/schema"
)

// ShiftOptions are the parameters of an audio or video shift analysis.
type ShiftOptions struct {
	BaselineSec   float64
	Threshold     float64
	Alpha         float64 // weight of the prosody branch when embeddings are fused
	UseEmbeddings bool
}

// DefaultShiftOptions returns the calibrated defaults: a 20 s baseline,
// spikes at z >= 1.25 and an even prosody/embedding split.
func DefaultShiftOptions() ShiftOptions {
	return ShiftOptions{
		BaselineSec: schema.DefaultBaselineSec,
		Threshold:   schema.DefaultSpikeThreshold,
		Alpha:       schema.DefaultAlpha,
	}
}

func (o ShiftOptions) validate() error {
	if o.BaselineSec <= 0 {
		return schema.InvalidParameter("baselineSec", "must be > 0, got %g", o.BaselineSec)
	}
	if o.Threshold <= 0 {
		return schema.InvalidParameter("threshold", "must be > 0, got %g", o.Threshold)
	}
	if o.Alpha < 0 || o.Alpha > 1 {
		return schema.InvalidParameter("alpha", "must be within [0,1], got %g", o.Alpha)
	}
	return nil
}

// sortSegments returns the segments ordered by start time, keeping input order for ties.
func sortSegments(segments []schema.Segment) []schema.Segment {
	sorted := slices.Clone(segments)
	slices.SortStableFunc(sorted, func(a, b schema.Segment) int {
		return cmp.Compare(a.StartMs, b.StartMs)
	})
	return sorted
}

// prosodyOf reads the prosody of a segment from its typed field or its raw metrics.
func prosodyOf(s schema.Segment, i int) (schema.ProsodyFeatures, error) {
	if s.Prosody != nil {
		return *s.Prosody, nil
	}
	if p, ok := prosody.FromMetrics(s.RawMetrics); ok {
		return p, nil
	}
	return schema.ProsodyFeatures{}, schema.InvalidParameter(fmt.Sprintf("segments[%d].prosody", i), "segment has no prosody features")
}

// featureStats is the baseline mean and std of one prosody feature.
type featureStats struct {
	mean, std float64
	ok        bool
}

func (f featureStats) z(v float64) float64 {
	if !f.ok {
		return 0
	}
	return (v - f.mean) / (f.std + schema.FeatureEpsilon)
}

func statsOf(values []float64) featureStats {
	if len(values) == 0 {
		return featureStats{}
	}
	mean, std := algo.MeanStd(values)
	return featureStats{mean: mean, std: std, ok: true}
}

// standardizeProsody turns raw prosody into z-scores against the baseline segments.
// Unvoiced segments (pitch 0) are left out of the pitch statistics and get a pitch z of 0.
func standardizeProsody(features []schema.ProsodyFeatures, baselineIdx []int) []schema.FeatureVector {
	var rms, zcr, pause, pitch []float64
	for _, i := range baselineIdx {
		f := features[i]
		rms = append(rms, f.RMS)
		zcr = append(zcr, f.ZCR)
		pause = append(pause, f.PauseRatio)
		if f.PitchHz > 0 {
			pitch = append(pitch, f.PitchHz)
		}
	}
	sRMS, sZCR, sPause, sPitch := statsOf(rms), statsOf(zcr), statsOf(pause), statsOf(pitch)

	out := make([]schema.FeatureVector, len(features))
	for i, f := range features {
		pz := 0.0
		if f.PitchHz > 0 {
			pz = sPitch.z(f.PitchHz)
		}
		out[i] = schema.FeatureVector{sRMS.z(f.RMS), sZCR.z(f.ZCR), sPause.z(f.PauseRatio), pz}
	}
	return out
}

// scoreBranch scores feature vectors against a baseline of the leading segments.
func (a *Analyzer) scoreBranch(template []schema.Segment, features []schema.FeatureVector, opts ShiftOptions) (algo.AnomalyReport, schema.Baseline, []int, error) {
	segments := make([]schema.Segment, len(template))
	for i, s := range template {
		segments[i] = schema.Segment{StartMs: s.StartMs, EndMs: s.EndMs, Features: features[i]}
	}
	baseline, idx, err := algo.EstimateBaseline(segments, algo.BySeconds(opts.BaselineSec), schema.MinBaselineCount)
	if err != nil {
		return algo.AnomalyReport{}, schema.Baseline{}, nil, err
	}
	report, err := algo.Scorer{Threshold: opts.Threshold, Workers: a.Workers}.Score(baseline, segments, idx)
	if err != nil {
		return algo.AnomalyReport{}, schema.Baseline{}, nil, err
	}
	return report, baseline, idx, nil
}

func zSeries(results []schema.AnomalyResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.ZScore
	}
	return out
}

// AnalyzeAudioShift scores audio segments against their own opening baseline.
// The prosody branch is always scored. With UseEmbeddings the embedding branch is
// scored too and both z-series are fused as alpha*prosody + (1-alpha)*embedding.
func (a *Analyzer) AnalyzeAudioShift(segments []schema.Segment, opts ShiftOptions) (schema.ShiftResult, error) {
	if len(segments) == 0 {
		return schema.ShiftResult{}, schema.EmptyInput("segments")
	}
	if err := opts.validate(); err != nil {
		return schema.ShiftResult{}, err
	}
	sorted := sortSegments(segments)

	features := make([]schema.ProsodyFeatures, len(sorted))
	for i, s := range sorted {
		p, err := prosodyOf(s, i)
		if err != nil {
			return schema.ShiftResult{}, err
		}
		features[i] = p
	}
	if opts.UseEmbeddings {
		for i, s := range sorted {
			if len(s.Embedding) == 0 {
				return schema.ShiftResult{}, schema.InvalidParameter(fmt.Sprintf("segments[%d].embedding", i), "useEmbeddings requires an embedding on every segment")
			}
		}
	}

	baselineIdx, err := algo.BySeconds(opts.BaselineSec).Select(sorted)
	if err != nil {
		return schema.ShiftResult{}, err
	}
	if len(baselineIdx) < schema.MinBaselineCount {
		return schema.ShiftResult{}, schema.InsufficientBaseline(schema.MinBaselineCount, len(baselineIdx))
	}

	prosodyReport, baseline, idx, err := a.scoreBranch(sorted, standardizeProsody(features, baselineIdx), opts)
	if err != nil {
		return schema.ShiftResult{}, err
	}

	result := schema.ShiftResult{
		Modality: schema.AudioModality,
		Baseline: schema.BaselineInfo{
			Seconds:     opts.BaselineSec,
			SourceCount: baseline.SourceCount,
			Dispersion:  baseline.Dispersion,
		},
		Threshold:     opts.Threshold,
		UseEmbeddings: opts.UseEmbeddings,
	}

	if !opts.UseEmbeddings {
		result.Segments = attachScores(sorted, prosodyReport.Results)
		for i := range result.Segments {
			result.Segments[i].Prosody = &features[i]
		}
		result.Summary = prosodyReport.Summary
		result.Summary.Driver = schema.DriverProsody
		result.Summary.DriverShare = 1
		return result, nil
	}

	embeddings := make([]schema.FeatureVector, len(sorted))
	for i, s := range sorted {
		embeddings[i] = algo.Normalize(s.Embedding)
	}
	embedReport, _, _, err := a.scoreBranch(sorted, embeddings, opts)
	if err != nil {
		return schema.ShiftResult{}, err
	}

	prosodyZ, embedZ := zSeries(prosodyReport.Results), zSeries(embedReport.Results)
	fusion, err := algo.Fuse(prosodyZ, embedZ, opts.Alpha)
	if err != nil {
		return schema.ShiftResult{}, err
	}
	fusedReport, err := algo.Scorer{Threshold: opts.Threshold, Workers: a.Workers}.ScoreSeries(fusion.Fused, idx)
	if err != nil {
		return schema.ShiftResult{}, err
	}

	result.Segments = attachScores(sorted, fusedReport.Results)
	for i := range result.Segments {
		result.Segments[i].Prosody = &features[i]
		result.Segments[i].ProsodyAnomaly = &prosodyZ[i]
		result.Segments[i].EmbeddingAnomaly = &embedZ[i]
	}
	result.Summary = fusedReport.Summary
	result.Summary.Driver = schema.DriverEmbedding
	if fusion.DominantA {
		result.Summary.Driver = schema.DriverProsody
	}
	result.Summary.DriverShare = fusion.Share
	alpha := opts.Alpha
	result.Alpha = &alpha
	return result, nil
}

// AnalyzeVideoShift scores visual segment embeddings against the opening baseline.
// Features are taken from the segment features, or from the embedding when features are empty,
// and unit-normalized before scoring.
func (a *Analyzer) AnalyzeVideoShift(segments []schema.Segment, baselineSec, thr float64) (schema.ShiftResult, error) {
	if len(segments) == 0 {
		return schema.ShiftResult{}, schema.EmptyInput("segments")
	}
	opts := ShiftOptions{BaselineSec: baselineSec, Threshold: thr}
	if err := opts.validate(); err != nil {
		return schema.ShiftResult{}, err
	}
	sorted := sortSegments(segments)

	features := make([]schema.FeatureVector, len(sorted))
	for i, s := range sorted {
		v := s.Features
		if len(v) == 0 {
			v = s.Embedding
		}
		if len(v) == 0 {
			return schema.ShiftResult{}, schema.InvalidParameter(fmt.Sprintf("segments[%d].features", i), "segment has no embedding")
		}
		features[i] = algo.Normalize(v)
	}

	report, baseline, _, err := a.scoreBranch(sorted, features, opts)
	if err != nil {
		return schema.ShiftResult{}, err
	}
	summary := report.Summary
	summary.Driver = schema.DriverEmbedding
	summary.DriverShare = 1
	return schema.ShiftResult{
		Modality: schema.VideoModality,
		Segments: attachScores(sorted, report.Results),
		Summary:  summary,
		Baseline: schema.BaselineInfo{
			Seconds:     baselineSec,
			SourceCount: baseline.SourceCount,
			Dispersion:  baseline.Dispersion,
		},
		Threshold: thr,
	}, nil
}

// AnalyzeVideoFrames pools per-frame embeddings into 4 s segments every 2 s
// and scores them with AnalyzeVideoShift.
func (a *Analyzer) AnalyzeVideoFrames(frames []schema.FrameEmbedding, baselineSec, thr float64) (schema.ShiftResult, error) {
	segments, err := segment.PoolFrames(frames, schema.DefaultSegmentWindowMs, schema.DefaultSegmentHopMs)
	if err != nil {
		return schema.ShiftResult{}, err
	}
	return a.AnalyzeVideoShift(segments, baselineSec, thr)
}

// AudioSegmentsFromPCM decodes raw 16-bit PCM, resamples it to 16 kHz, caps it at
// 180 s and cuts it into 4 s prosody segments every 2 s.
func AudioSegmentsFromPCM(data []byte, sampleRate, channels int) ([]schema.Segment, error) {
	sig, err := prosody.DecodePCM16(data, sampleRate, channels)
	if err != nil {
		return nil, err
	}
	sig = prosody.Truncate(sig, schema.MaxAudioSeconds)
	sig, err = prosody.Resample(sig, schema.DefaultTargetSampleRate)
	if err != nil {
		return nil, err
	}
	return prosody.Segments(sig, schema.DefaultSegmentWindowMs, schema.DefaultSegmentHopMs), nil
}

// attachScores pairs each segment with its anomaly result.
func attachScores(segments []schema.Segment, results []schema.AnomalyResult) []schema.ScoredSegment {
	out := make([]schema.ScoredSegment, len(segments))
	for i, s := range segments {
		out[i] = schema.ScoredSegment{Index: i, Segment: s, AnomalyResult: results[i]}
	}
	return out
}
