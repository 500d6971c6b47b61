package algo

import (
	"fmt"

	"github.com/personalens/personalens/schema"
)

// BaselinePolicy selects the leading segments that form a baseline.
type BaselinePolicy struct {
	seconds float64
	count   int
}

// BySeconds selects leading segments that end within the first k seconds.
func BySeconds(k float64) BaselinePolicy {
	return BaselinePolicy{seconds: k}
}

// ByCount selects the first k segments.
func ByCount(k int) BaselinePolicy {
	return BaselinePolicy{count: k}
}

// String describes the policy.
func (p BaselinePolicy) String() string {
	if p.count > 0 {
		return fmt.Sprintf("first %d segments", p.count)
	}
	return fmt.Sprintf("first %gs", p.seconds)
}

// Select returns the indices of the leading segments inside the policy window.
func (p BaselinePolicy) Select(segments []schema.Segment) ([]int, error) {
	if p.count <= 0 && p.seconds <= 0 {
		return nil, schema.InvalidParameter("baseline", "window must be positive, got %s", p)
	}
	var idx []int
	if p.count > 0 {
		for i := range min(p.count, len(segments)) {
			idx = append(idx, i)
		}
		return idx, nil
	}
	limitMs := p.seconds * 1000
	for i, s := range segments {
		if float64(s.EndMs) > limitMs {
			break
		}
		idx = append(idx, i)
	}
	return idx, nil
}

// EstimateBaseline computes the centroid and dispersion of the leading segments.
// Fewer than minCount selected segments fails with InsufficientBaseline.
func EstimateBaseline(segments []schema.Segment, policy BaselinePolicy, minCount int) (schema.Baseline, []int, error) {
	if minCount < schema.MinBaselineCount {
		minCount = schema.MinBaselineCount
	}
	idx, err := policy.Select(segments)
	if err != nil {
		return schema.Baseline{}, nil, err
	}
	if len(idx) < minCount {
		return schema.Baseline{}, nil, schema.InsufficientBaseline(minCount, len(idx))
	}

	vecs := make([]schema.FeatureVector, len(idx))
	for i, j := range idx {
		vecs[i] = segments[j].Features
	}
	b, err := BaselineFromVectors(vecs)
	if err != nil {
		return schema.Baseline{}, nil, err
	}
	return b, idx, nil
}

// BaselineFromVectors computes a baseline directly from a set of feature vectors.
func BaselineFromVectors(vecs []schema.FeatureVector) (schema.Baseline, error) {
	if len(vecs) < schema.MinBaselineCount {
		return schema.Baseline{}, schema.InsufficientBaseline(schema.MinBaselineCount, len(vecs))
	}
	centroid, err := Centroid(vecs)
	if err != nil {
		return schema.Baseline{}, err
	}
	dists := make([]float64, len(vecs))
	for i, v := range vecs {
		if dists[i], err = EuclideanDistance(v, centroid); err != nil {
			return schema.Baseline{}, err
		}
	}
	_, std := MeanStd(dists)
	if std < schema.BaselineEpsilon {
		std = schema.BaselineEpsilon
	}
	return schema.Baseline{
		Centroid:    centroid,
		Dispersion:  std,
		SourceCount: len(vecs),
	}, nil
}
