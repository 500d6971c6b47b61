package algo

import (
	"github.com/personalens/personalens/schema"
	"gonum.org/v1/gonum/floats"
)

// Fusion is the weighted combination of two aligned anomaly series.
type Fusion struct {
	Fused         []float64
	ContributionA float64
	ContributionB float64
	DominantA     bool
	Share         float64
}

// Fuse combines series a and b as alpha*a + (1-alpha)*b.
// Driver ties go to A when alpha >= 0.5 and to B otherwise.
func Fuse(a, b []float64, alpha float64) (Fusion, error) {
	if alpha < 0 || alpha > 1 {
		return Fusion{}, schema.InvalidParameter("alpha", "must be within [0,1], got %g", alpha)
	}
	if len(a) != len(b) {
		return Fusion{}, schema.LengthMismatch("series", len(a), len(b))
	}

	fused := make([]float64, len(a))
	for i := range a {
		fused[i] = alpha*a[i] + (1-alpha)*b[i]
	}
	ca := alpha * floats.Sum(a)
	cb := (1 - alpha) * floats.Sum(b)

	dominantA := ca > cb || (ca == cb && alpha >= 0.5)
	winner := cb
	if dominantA {
		winner = ca
	}
	share := 0.0
	if total := floats.Sum(fused); total > 0 {
		share = clamp(winner/total, 0, 1)
	}
	return Fusion{
		Fused:         fused,
		ContributionA: ca,
		ContributionB: cb,
		DominantA:     dominantA,
		Share:         share,
	}, nil
}
