// Package segment cuts timelines into fixed window/hop spans and pools frame
// embeddings into segments.
package segment

import (
	"cmp"
	"slices"

	"github.com/personalens/personalens/schema"
	"gonum.org/v1/gonum/floats"
)

// Span is a half-open [Start, End) range in timeline units.
type Span struct {
	Start int
	End   int
}

// Spans returns windows of size window starting every hop units while they fit in total.
// A timeline shorter than one window yields a single span covering it.
func Spans(total, window, hop int) []Span {
	window = max(1, window)
	hop = max(1, hop)
	var out []Span
	for start := 0; start+window <= total; start += hop {
		out = append(out, Span{Start: start, End: start + window})
	}
	if len(out) == 0 && total > 0 {
		out = append(out, Span{Start: 0, End: total})
	}
	return out
}

// PoolFrames averages per-frame embeddings into window/hop segments. Windows start
// every hop until the last frame time, so every frame lands in some segment.
// A window without frames takes the frame nearest to its midpoint.
func PoolFrames(frames []schema.FrameEmbedding, windowMs, hopMs int) ([]schema.Segment, error) {
	if len(frames) == 0 {
		return nil, schema.EmptyInput("frames")
	}
	windowMs = max(1, windowMs)
	hopMs = max(1, hopMs)
	sorted := slices.Clone(frames)
	slices.SortStableFunc(sorted, func(a, b schema.FrameEmbedding) int {
		return cmp.Compare(a.TimeMs, b.TimeMs)
	})
	dim := len(sorted[0].Embedding)
	for _, f := range sorted {
		if len(f.Embedding) != dim {
			return nil, schema.DimensionMismatch(dim, len(f.Embedding))
		}
	}

	origin := sorted[0].TimeMs
	last := sorted[len(sorted)-1].TimeMs
	var out []schema.Segment
	for start := origin; start <= last; start += hopMs {
		end := start + windowMs
		sum := make(schema.FeatureVector, dim)
		n := 0
		for _, f := range sorted {
			if f.TimeMs >= start && f.TimeMs < end {
				floats.Add(sum, f.Embedding)
				n++
			}
		}
		if n == 0 {
			floats.Add(sum, nearestFrame(sorted, start+windowMs/2).Embedding)
		} else {
			floats.Scale(1/float64(n), sum)
		}
		out = append(out, schema.Segment{
			StartMs:    start,
			EndMs:      end,
			Features:   sum,
			RawMetrics: map[string]float64{"frames": float64(n)},
		})
	}
	return out, nil
}

// nearestFrame returns the first frame closest to ms.
func nearestFrame(sorted []schema.FrameEmbedding, ms int) schema.FrameEmbedding {
	best := sorted[0]
	for _, f := range sorted[1:] {
		if abs(f.TimeMs-ms) < abs(best.TimeMs-ms) {
			best = f
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
