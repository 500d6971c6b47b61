package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/personalens/personalens/core/lexical"
	"github.com/personalens/personalens/schema"
	"gonum.org/v1/gonum/floats"
)

// pcgStream decorrelates the two PCG words derived from a single seed.
const pcgStream = 0x9e3779b97f4a7c15

// KMeans is a seeded Lloyd's k-means over unit-normalized vectors.
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int
	Workers int
}

// KMeansResult is the outcome of one clustering fit.
type KMeansResult struct {
	Assignments []int
	Centroids   []schema.FeatureVector
	Iterations  int
}

// Fit clusters the vectors. The same seed and input always produce the same result.
func (km KMeans) Fit(vecs []schema.FeatureVector) (KMeansResult, []schema.FeatureVector, error) {
	n := len(vecs)
	if n < 2 {
		return KMeansResult{}, nil, schema.InsufficientItems("texts", 2, n)
	}
	if km.K < 1 || km.K > n {
		return KMeansResult{}, nil, schema.InvalidParameter("k", "must be within [1,%d], got %d", n, km.K)
	}
	if km.MaxIter < 1 {
		return KMeansResult{}, nil, schema.InvalidParameter("maxIter", "must be >= 1, got %d", km.MaxIter)
	}
	if _, err := checkDims(vecs); err != nil {
		return KMeansResult{}, nil, err
	}

	units := NormalizeAll(vecs)
	rng := rand.New(rand.NewPCG(uint64(km.Seed), uint64(km.Seed)^pcgStream))
	centroids := km.seed(units, rng)

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	iterations := 0
	for iter := 1; iter <= km.MaxIter; iter++ {
		iterations = iter
		next := make([]int, n)
		parallelFor(n, km.Workers, func(i int) {
			next[i] = nearest(units[i], centroids)
		})
		changed := false
		for i := range next {
			if next[i] != assign[i] {
				changed = true
				break
			}
		}
		assign = next
		if !changed {
			break
		}
		centroids = km.update(units, assign, centroids)
	}

	return KMeansResult{
		Assignments: assign,
		Centroids:   memberMeans(units, assign, centroids),
		Iterations:  iterations,
	}, units, nil
}

// seed picks K initial centroids with k-means++. When every remaining point
// coincides with a chosen centroid, the lowest unchosen index is used.
func (km KMeans) seed(units []schema.FeatureVector, rng *rand.Rand) []schema.FeatureVector {
	n := len(units)
	chosen := make([]bool, n)
	first := rng.IntN(n)
	chosen[first] = true
	centroids := []schema.FeatureVector{units[first].Clone()}

	d2 := make([]float64, n)
	for i := range units {
		d2[i] = sqDist(units[i], centroids[0])
	}
	for len(centroids) < km.K {
		total := 0.0
		for i, d := range d2 {
			if !chosen[i] {
				total += d
			}
		}
		pick := -1
		if total > 0 {
			r := rng.Float64() * total
			cum := 0.0
			for i, d := range d2 {
				if chosen[i] || d == 0 {
					continue
				}
				cum += d
				pick = i
				if r < cum {
					break
				}
			}
		}
		if pick < 0 {
			for i := range chosen {
				if !chosen[i] {
					pick = i
					break
				}
			}
		}
		chosen[pick] = true
		c := units[pick].Clone()
		centroids = append(centroids, c)
		for i := range units {
			d2[i] = min(d2[i], sqDist(units[i], c))
		}
	}
	return centroids
}

// update recomputes centroids as member means. An empty cluster takes the
// point farthest from its current centroid.
func (km KMeans) update(units []schema.FeatureVector, assign []int, prev []schema.FeatureVector) []schema.FeatureVector {
	centroids := memberMeans(units, assign, prev)
	counts := make([]int, len(centroids))
	for _, c := range assign {
		counts[c]++
	}
	taken := make([]bool, len(units))
	for c := range centroids {
		if counts[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, v := range units {
			if taken[i] || counts[assign[i]] <= 1 {
				continue
			}
			if d := sqDist(v, centroids[assign[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}
		taken[far] = true
		counts[assign[far]]--
		counts[c]++
		assign[far] = c
		centroids[c] = units[far].Clone()
	}
	return centroids
}

// memberMeans returns the mean of each cluster's members, keeping prev for empty clusters.
func memberMeans(units []schema.FeatureVector, assign []int, prev []schema.FeatureVector) []schema.FeatureVector {
	dim := len(units[0])
	sums := make([]schema.FeatureVector, len(prev))
	counts := make([]int, len(prev))
	for c := range sums {
		sums[c] = make(schema.FeatureVector, dim)
	}
	for i, c := range assign {
		floats.Add(sums[c], units[i])
		counts[c]++
	}
	for c := range sums {
		if counts[c] == 0 {
			sums[c] = prev[c].Clone()
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
	}
	return sums
}

// nearest returns the closest centroid; exact ties go to the lowest index.
func nearest(v schema.FeatureVector, centroids []schema.FeatureVector) int {
	best, bestDist := 0, sqDist(v, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := sqDist(v, centroids[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDist(a, b schema.FeatureVector) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// Clusters fits k-means and labels every cluster with keywords from its member texts.
func (km KMeans) Clusters(vecs []schema.FeatureVector, texts []string) ([]schema.Cluster, KMeansResult, error) {
	if len(texts) != len(vecs) {
		return nil, KMeansResult{}, schema.LengthMismatch("texts", len(texts), len(vecs))
	}
	res, units, err := km.Fit(vecs)
	if err != nil {
		return nil, KMeansResult{}, err
	}

	members := make([][]int, km.K)
	for i, c := range res.Assignments {
		members[c] = append(members[c], i)
	}
	clusters := make([]schema.Cluster, km.K)
	for c := range clusters {
		cl, err := describeCluster(c, members[c], res.Centroids[c], units, texts)
		if err != nil {
			return nil, KMeansResult{}, err
		}
		clusters[c] = cl
	}
	return clusters, res, nil
}

func describeCluster(id int, idx []int, centroid schema.FeatureVector, units []schema.FeatureVector, texts []string) (schema.Cluster, error) {
	fallback := fmt.Sprintf("Cluster %d", id)
	cl := schema.Cluster{
		ClusterID:           id,
		Size:                len(idx),
		Label:               fallback,
		Centroid:            centroid,
		MemberIndices:       idx,
		TopKeywords:         []string{},
		RepresentativeIndex: -1,
	}
	if len(idx) == 0 {
		cl.MemberIndices = []int{}
		return cl, nil
	}

	memberTexts := make([]string, len(idx))
	bestSim, sum := -2.0, 0.0
	for j, i := range idx {
		memberTexts[j] = texts[i]
		sim, err := CosineSimilarity(units[i], centroid)
		if err != nil {
			return schema.Cluster{}, err
		}
		sum += sim
		if sim > bestSim {
			bestSim = sim
			cl.RepresentativeIndex = i
		}
	}
	cl.AvgSimilarity = sum / float64(len(idx))
	cl.RepresentativeText = texts[cl.RepresentativeIndex]
	cl.TopKeywords = lexical.Keywords(memberTexts, schema.DefaultKeywordCount)
	cl.Label = lexical.Label(cl.TopKeywords, schema.DefaultLabelKeywords, fallback)
	return cl, nil
}
