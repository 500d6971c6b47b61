// Package algo implements the numeric core: vector math, baselines, anomaly scoring,
// drift, fusion and clustering.
package algo

import (
	"math"

	"github.com/personalens/personalens/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CosineSimilarity returns the cosine of the angle between a and b.
// It returns 0 when either vector has zero norm.
func CosineSimilarity(a, b schema.FeatureVector) (float64, error) {
	if len(a) != len(b) {
		return 0, schema.DimensionMismatch(len(a), len(b))
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	sim := floats.Dot(a, b) / (na * nb)
	return clamp(sim, -1, 1), nil
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b schema.FeatureVector) (float64, error) {
	if len(a) != len(b) {
		return 0, schema.DimensionMismatch(len(a), len(b))
	}
	return floats.Distance(a, b, 2), nil
}

// Centroid returns the mean vector of the set.
func Centroid(vectors []schema.FeatureVector) (schema.FeatureVector, error) {
	if len(vectors) == 0 {
		return nil, schema.EmptyInput("vectors")
	}
	dim := len(vectors[0])
	out := make(schema.FeatureVector, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, schema.DimensionMismatch(dim, len(v))
		}
		floats.Add(out, v)
	}
	floats.Scale(1/float64(len(vectors)), out)
	return out, nil
}

// MeanStd returns the mean and population standard deviation of values.
// A single value has std 0 and an empty set returns (0, 0).
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Normalize returns v scaled to unit length. A zero vector is returned as a copy.
func Normalize(v schema.FeatureVector) schema.FeatureVector {
	out := v.Clone()
	n := floats.Norm(out, 2)
	if n == 0 {
		return out
	}
	floats.Scale(1/n, out)
	return out
}

// NormalizeAll returns unit-length copies of every vector.
func NormalizeAll(vectors []schema.FeatureVector) []schema.FeatureVector {
	out := make([]schema.FeatureVector, len(vectors))
	for i, v := range vectors {
		out[i] = Normalize(v)
	}
	return out
}

// PercentileRank returns the share of values less than or equal to v, as a percentage.
func PercentileRank(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, x := range values {
		if x <= v {
			n++
		}
	}
	return 100 * float64(n) / float64(len(values))
}

// checkDims verifies every vector has the same length and returns it.
func checkDims(vectors []schema.FeatureVector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return 0, schema.DimensionMismatch(dim, len(v))
		}
	}
	return dim, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
