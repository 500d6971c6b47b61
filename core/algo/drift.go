package algo

import (
	"slices"

	"github.com/personalens/personalens/schema"
)

// OutlierPolicy decides which window members are outliers.
type OutlierPolicy struct {
	StdMultiplier float64 // std below the mean for windows of at least MinMembers
	MinMembers    int     // smallest window that uses the std rule
	Floor         float64 // absolute similarity cutoff for smaller windows
}

// DefaultOutlierPolicy flags members 1.5 population std below the window mean,
// and members under similarity 0.5 in windows smaller than 3.
var DefaultOutlierPolicy = OutlierPolicy{
	StdMultiplier: schema.OutlierStdMultiplier,
	MinMembers:    schema.MinStatWindow,
	Floor:         schema.OutlierSimilarityFloor,
}

// Outliers returns the local positions of outlying similarities.
func (p OutlierPolicy) Outliers(sims []float64) []int {
	out := []int{}
	if len(sims) < p.MinMembers {
		for i, s := range sims {
			if s < p.Floor {
				out = append(out, i)
			}
		}
		return out
	}
	mean, std := MeanStd(sims)
	if std == 0 {
		return out
	}
	threshold := mean - p.StdMultiplier*std
	for i, s := range sims {
		if s < threshold {
			out = append(out, i)
		}
	}
	return out
}

// DriftEngine computes pairwise and rolling-window drift over ordered embeddings.
type DriftEngine struct {
	Outliers OutlierPolicy
	Workers  int
}

// NewDriftEngine returns an engine with the default outlier policy.
func NewDriftEngine(workers int) DriftEngine {
	return DriftEngine{Outliers: DefaultOutlierPolicy, Workers: workers}
}

// Pairwise returns the drift between every adjacent pair of items.
func (e DriftEngine) Pairwise(vecs []schema.FeatureVector) ([]schema.DriftPair, error) {
	if len(vecs) < 2 {
		return nil, schema.InsufficientItems("items", 2, len(vecs))
	}
	if _, err := checkDims(vecs); err != nil {
		return nil, err
	}
	pairs := make([]schema.DriftPair, len(vecs)-1)
	err := parallelForErr(len(pairs), e.Workers, func(i int) error {
		sim, err := CosineSimilarity(vecs[i], vecs[i+1])
		if err != nil {
			return err
		}
		pairs[i] = schema.DriftPair{
			FromIndex:  i,
			ToIndex:    i + 1,
			Similarity: sim,
			DriftScore: 1 - sim,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// CheckWindow validates a rolling window size and stride.
func CheckWindow(w, s int) error {
	if w < 2 {
		return schema.InvalidParameter("window", "must be >= 2, got %d", w)
	}
	if s < 1 {
		return schema.InvalidParameter("stride", "must be >= 1, got %d", s)
	}
	return nil
}

// Windows returns one DriftWindow per full window of size w starting every s items.
// Fewer items than w yields an empty list.
func (e DriftEngine) Windows(vecs []schema.FeatureVector, w, s int) ([]schema.DriftWindow, error) {
	if err := CheckWindow(w, s); err != nil {
		return nil, err
	}
	if _, err := checkDims(vecs); err != nil {
		return nil, err
	}
	var starts []int
	for start := 0; start+w <= len(vecs); start += s {
		starts = append(starts, start)
	}
	windows := make([]schema.DriftWindow, len(starts))
	err := parallelForErr(len(starts), e.Workers, func(i int) error {
		win, err := e.window(vecs, starts[i], starts[i]+w)
		windows[i] = win
		return err
	})
	if err != nil {
		return nil, err
	}
	return windows, nil
}

// window summarizes vecs[start:end] against its own centroid.
func (e DriftEngine) window(vecs []schema.FeatureVector, start, end int) (schema.DriftWindow, error) {
	members := vecs[start:end]
	sims, err := SimilarityToCentroid(members)
	if err != nil {
		return schema.DriftWindow{}, err
	}
	mean, std := MeanStd(sims)
	outliers := e.Outliers.Outliers(sims)
	for i := range outliers {
		outliers[i] += start
	}
	return schema.DriftWindow{
		StartIndex:     start,
		EndIndex:       end - 1,
		Count:          len(members),
		MeanSimilarity: mean,
		MinSimilarity:  slices.Min(sims),
		MaxSimilarity:  slices.Max(sims),
		StdSimilarity:  std,
		DriftScore:     1 - mean,
		OutlierIndices: outliers,
	}, nil
}

// SimilarityToCentroid returns each vector's cosine similarity to the set centroid.
func SimilarityToCentroid(vecs []schema.FeatureVector) ([]float64, error) {
	centroid, err := Centroid(vecs)
	if err != nil {
		return nil, err
	}
	sims := make([]float64, len(vecs))
	for i, v := range vecs {
		if sims[i], err = CosineSimilarity(v, centroid); err != nil {
			return nil, err
		}
	}
	return sims, nil
}

// SetDrift summarizes a whole set against its centroid as a single window.
func (e DriftEngine) SetDrift(vecs []schema.FeatureVector) (schema.DriftWindow, []float64, error) {
	if len(vecs) < 2 {
		return schema.DriftWindow{}, nil, schema.InsufficientItems("texts", 2, len(vecs))
	}
	if _, err := checkDims(vecs); err != nil {
		return schema.DriftWindow{}, nil, err
	}
	win, err := e.window(vecs, 0, len(vecs))
	if err != nil {
		return schema.DriftWindow{}, nil, err
	}
	sims, err := SimilarityToCentroid(vecs)
	if err != nil {
		return schema.DriftWindow{}, nil, err
	}
	return win, sims, nil
}
