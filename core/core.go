package core

import (
	"context"
	"strings"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/outwriter"
	"github.com/personalens/personalens/schema"
)

// ExecutorFunc defines the function signature for executing the different analyses.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error

// runEmbedded builds the configured embedder, runs fn with it and releases it afterwards.
func runEmbedded(cfg *contract.Config, fn func(emb contract.TextEmbedder) error) error {
	emb, closeFn, err := NewEmbedder(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(emb)
}

// ExecuteDrift runs a two-text drift analysis, or a set drift analysis when the
// input carries a list of texts instead, and prints the result.
func ExecuteDrift(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	start := time.Now()
	return runEmbedded(cfg, func(emb contract.TextEmbedder) error {
		if input.TextA == "" && input.TextB == "" && len(input.Texts) > 0 {
			result, err := GetDriftSetResults(ctx, cfg, mgr, emb, input.Texts)
			if err != nil {
				return err
			}
			return outwriter.NewOutWriter().WriteDriftSet(result, cfg, time.Since(start))
		}
		result, err := GetDriftResults(ctx, cfg, mgr, emb, input.TextA, input.TextB)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteDrift(result, cfg, time.Since(start))
	})
}

// ExecuteTimeline runs the timeline drift analysis and prints the result.
func ExecuteTimeline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	start := time.Now()
	return runEmbedded(cfg, func(emb contract.TextEmbedder) error {
		result, err := GetTimelineResults(ctx, cfg, mgr, emb, input.Items)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteTimeline(result, cfg, time.Since(start))
	})
}

// ExecuteClusters runs the k-means text clustering and prints the result.
func ExecuteClusters(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	start := time.Now()
	return runEmbedded(cfg, func(emb contract.TextEmbedder) error {
		result, err := GetClustersResults(ctx, cfg, mgr, emb, input.Texts)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteClusters(result, cfg, time.Since(start))
	})
}

// ExecuteAudioShift runs the audio shift analysis and prints the result.
func ExecuteAudioShift(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	start := time.Now()
	result, err := GetAudioShiftResults(ctx, cfg, mgr, input.Segments)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteShift(result, cfg, time.Since(start))
}

// ExecuteVideoShift runs the video shift analysis on segments or per-frame embeddings and prints the result.
func ExecuteVideoShift(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	start := time.Now()
	result, err := GetVideoShiftResults(ctx, cfg, mgr, input.Segments, input.Frames)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteShift(result, cfg, time.Since(start))
}

// ExecuteReasons runs the text reasons analysis and prints the result.
func ExecuteReasons(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	start := time.Now()
	return runEmbedded(cfg, func(emb contract.TextEmbedder) error {
		result, err := GetReasonsResults(ctx, cfg, mgr, emb, input.Texts, input.Indices)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteReasons(result, cfg, time.Since(start))
	})
}

// ExecuteSignals prints the lexical signals of input.TextA.
func ExecuteSignals(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, input *schema.AnalysisInput) error {
	counts, err := GetSignalsResults(ctx, cfg, mgr, input.TextA)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSignals(counts, cfg)
}

// GetDriftResults measures the drift between two texts with run tracking and vault snapshot.
func GetDriftResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, emb contract.TextEmbedder, textA, textB string) (schema.DriftResult, error) {
	plan := runPlan{section: schema.SectionDrift, modality: schema.TextModality, items: 2}
	return runTracked(ctx, cfg, mgr, plan, func(ctx context.Context) (schema.DriftResult, error) {
		return NewAnalyzer(emb, cfg.Workers).AnalyzeDrift(ctx, textA, textB)
	}, func(r schema.DriftResult) runOutcome {
		score := r.Similarity * 100
		return runOutcome{items: 2, score: &score}
	})
}

// GetDriftSetResults measures the drift of a set of texts against their centroid.
func GetDriftSetResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, emb contract.TextEmbedder, texts []string) (schema.DriftSetResult, error) {
	plan := runPlan{section: schema.SectionDriftSet, modality: schema.TextModality, items: len(texts)}
	return runTracked(ctx, cfg, mgr, plan, func(ctx context.Context) (schema.DriftSetResult, error) {
		return NewAnalyzer(emb, cfg.Workers).AnalyzeDriftSet(ctx, texts)
	}, func(r schema.DriftSetResult) runOutcome {
		score := 100 - r.DriftScore
		return runOutcome{items: r.Count, score: &score}
	})
}

// GetTimelineResults computes the timeline drift with the configured window and stride.
func GetTimelineResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, emb contract.TextEmbedder, items []schema.TimelineItem) (schema.TimelineResult, error) {
	plan := runPlan{
		section:  schema.SectionTimeline,
		modality: schema.TextModality,
		items:    len(items),
		params:   map[string]any{"window": cfg.Window, "stride": cfg.Stride},
	}
	return runTracked(ctx, cfg, mgr, plan, func(ctx context.Context) (schema.TimelineResult, error) {
		return NewAnalyzer(emb, cfg.Workers).AnalyzeTimeline(ctx, items, cfg.Window, cfg.Stride)
	}, func(r schema.TimelineResult) runOutcome {
		score := r.Summary.ConsistencyScore
		return runOutcome{items: r.Count, score: &score}
	})
}

// GetClustersResults clusters texts with the configured k, seed and iteration cap.
func GetClustersResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, emb contract.TextEmbedder, texts []string) (schema.ClusterResult, error) {
	plan := runPlan{
		section:  schema.SectionClusters,
		modality: schema.TextModality,
		items:    len(texts),
		params:   map[string]any{"k": cfg.K, "seed": cfg.Seed, "maxIter": cfg.MaxIter},
	}
	return runTracked(ctx, cfg, mgr, plan, func(ctx context.Context) (schema.ClusterResult, error) {
		return NewAnalyzer(emb, cfg.Workers).AnalyzeClusters(ctx, texts, cfg.K, cfg.Seed, cfg.MaxIter)
	}, func(r schema.ClusterResult) runOutcome {
		return runOutcome{items: r.Count}
	})
}

// GetAudioShiftResults scores audio segments against their opening baseline.
func GetAudioShiftResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, segments []schema.Segment) (schema.ShiftResult, error) {
	opts := ShiftOptions{
		BaselineSec:   cfg.BaselineSec,
		Threshold:     cfg.Threshold,
		Alpha:         cfg.Alpha,
		UseEmbeddings: cfg.UseEmbeddings,
	}
	plan := runPlan{
		section:  schema.SectionAudioShift,
		modality: schema.AudioModality,
		items:    len(segments),
		params: map[string]any{
			"baselineSec":   opts.BaselineSec,
			"threshold":     opts.Threshold,
			"alpha":         opts.Alpha,
			"useEmbeddings": opts.UseEmbeddings,
		},
	}
	return runTracked(ctx, cfg, mgr, plan, func(context.Context) (schema.ShiftResult, error) {
		return NewAnalyzer(nil, cfg.Workers).AnalyzeAudioShift(segments, opts)
	}, shiftOutcome)
}

// GetVideoShiftResults scores video segments against their opening baseline.
// When no segments are given, they are pooled from the per-frame embeddings.
func GetVideoShiftResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, segments []schema.Segment, frames []schema.FrameEmbedding) (schema.ShiftResult, error) {
	plan := runPlan{
		section:  schema.SectionVideoShift,
		modality: schema.VideoModality,
		items:    max(len(segments), len(frames)),
		params:   map[string]any{"baselineSec": cfg.BaselineSec, "threshold": cfg.Threshold},
	}
	return runTracked(ctx, cfg, mgr, plan, func(context.Context) (schema.ShiftResult, error) {
		a := NewAnalyzer(nil, cfg.Workers)
		if len(segments) == 0 && len(frames) > 0 {
			return a.AnalyzeVideoFrames(frames, cfg.BaselineSec, cfg.Threshold)
		}
		return a.AnalyzeVideoShift(segments, cfg.BaselineSec, cfg.Threshold)
	}, shiftOutcome)
}

// GetReasonsResults explains texts with reason tags, optionally restricted to indices.
func GetReasonsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, emb contract.TextEmbedder, texts []string, indices []int) (schema.ReasonsResult, error) {
	plan := runPlan{section: schema.SectionReasons, modality: schema.TextModality, items: len(texts)}
	return runTracked(ctx, cfg, mgr, plan, func(ctx context.Context) (schema.ReasonsResult, error) {
		return NewAnalyzer(emb, cfg.Workers).AnalyzeTextReasonsSubset(ctx, texts, indices)
	}, func(r schema.ReasonsResult) runOutcome {
		return runOutcome{items: r.Count}
	})
}

// GetSignalsResults returns the lexical signals of one text.
func GetSignalsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, text string) (schema.LexicalCounts, error) {
	plan := runPlan{section: schema.SectionSignals, modality: schema.TextModality, items: 1}
	return runTracked(ctx, cfg, mgr, plan, func(context.Context) (schema.LexicalCounts, error) {
		if strings.TrimSpace(text) == "" {
			return schema.LexicalCounts{}, schema.EmptyInput("text")
		}
		return AnalyzeTextSignals(text), nil
	}, func(r schema.LexicalCounts) runOutcome {
		score := float64(r.Score)
		return runOutcome{items: 1, score: &score}
	})
}

// shiftOutcome reports the segments and consistency score of a shift run.
func shiftOutcome(r schema.ShiftResult) runOutcome {
	score := r.Summary.ConsistencyScore
	return runOutcome{items: len(r.Segments), score: &score, segments: r.Segments}
}
