package algo

import (
	"testing"

	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroups() ([]schema.FeatureVector, []string) {
	vecs := []schema.FeatureVector{
		{1, 0.1, 0}, {0.9, 0.05, 0}, {1, 0, 0.05},
		{0, 0.1, 1}, {0.05, 0, 0.9}, {0, 0.05, 1},
	}
	texts := []string{
		"billing latency improved", "billing errors fixed", "billing invoices shipped",
		"hiring plan approved", "hiring pipeline grew", "hiring interviews scheduled",
	}
	return vecs, texts
}

func TestKMeansSingletons(t *testing.T) {
	vecs := []schema.FeatureVector{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	texts := []string{"alpha report", "beta review", "gamma audit"}

	for _, seed := range []int64{0, 1, 42, 1234} {
		clusters, res, err := KMeans{K: 3, Seed: seed, MaxIter: 25}.Clusters(vecs, texts)
		require.NoError(t, err)
		require.Len(t, clusters, 3)
		seen := map[int]bool{}
		for _, c := range clusters {
			assert.Equal(t, 1, c.Size, "seed %d", seed)
			assert.InDelta(t, 1.0, c.AvgSimilarity, delta)
			assert.Equal(t, c.MemberIndices[0], c.RepresentativeIndex)
			seen[c.MemberIndices[0]] = true
		}
		assert.Len(t, seen, 3)
		assert.Len(t, res.Assignments, 3)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	vecs, _ := twoGroups()
	km := KMeans{K: 2, Seed: 7, MaxIter: 25, Workers: 4}

	first, _, err := km.Fit(vecs)
	require.NoError(t, err)
	second, _, err := km.Fit(vecs)
	require.NoError(t, err)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Centroids, second.Centroids)
}

func TestKMeansSeparatesGroups(t *testing.T) {
	vecs, texts := twoGroups()
	clusters, res, err := KMeans{K: 2, Seed: schema.DefaultClusterSeed, MaxIter: schema.DefaultClusterIter}.Clusters(vecs, texts)
	require.NoError(t, err)

	a := res.Assignments
	assert.Equal(t, a[0], a[1])
	assert.Equal(t, a[0], a[2])
	assert.Equal(t, a[3], a[4])
	assert.Equal(t, a[3], a[5])
	assert.NotEqual(t, a[0], a[3])
	assert.GreaterOrEqual(t, res.Iterations, 1)

	billing := clusters[a[0]]
	assert.Equal(t, 3, billing.Size)
	assert.Equal(t, "billing", billing.TopKeywords[0])
	assert.Contains(t, billing.Label, "billing")
	assert.Contains(t, []int{0, 1, 2}, billing.RepresentativeIndex)
	assert.Equal(t, texts[billing.RepresentativeIndex], billing.RepresentativeText)
	assert.Greater(t, billing.AvgSimilarity, 0.9)

	hiring := clusters[a[3]]
	assert.Equal(t, "hiring", hiring.TopKeywords[0])
}

func TestKMeansSingleCluster(t *testing.T) {
	vecs, texts := twoGroups()
	clusters, res, err := KMeans{K: 1, Seed: 1, MaxIter: 5}.Clusters(vecs, texts)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 6, clusters[0].Size)
	for _, c := range res.Assignments {
		assert.Equal(t, 0, c)
	}
}

func TestKMeansErrors(t *testing.T) {
	vecs, texts := twoGroups()

	_, _, err := KMeans{K: 7, Seed: 1, MaxIter: 5}.Fit(vecs)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	_, _, err = KMeans{K: 0, Seed: 1, MaxIter: 5}.Fit(vecs)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	_, _, err = KMeans{K: 2, Seed: 1, MaxIter: 0}.Fit(vecs)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	_, _, err = KMeans{K: 1, Seed: 1, MaxIter: 5}.Fit(vecs[:1])
	assert.ErrorIs(t, err, schema.ErrInsufficientItems)

	_, _, err = KMeans{K: 2, Seed: 1, MaxIter: 5}.Clusters(vecs, texts[:2])
	assert.ErrorIs(t, err, schema.ErrLengthMismatch)
}

func TestKMeansDuplicatePoints(t *testing.T) {
	vecs := []schema.FeatureVector{{1, 0}, {1, 0}, {1, 0}}
	res, _, err := KMeans{K: 2, Seed: 3, MaxIter: 10}.Fit(vecs)
	require.NoError(t, err)
	assert.Len(t, res.Centroids, 2)
	assert.Len(t, res.Assignments, 3)
}

func TestDescribeCluster(t *testing.T) {
	units := []schema.FeatureVector{{1, 0}, {0.8, 0.6}}
	texts := []string{"billing latency", "billing errors"}

	cl, err := describeCluster(0, []int{0, 1}, schema.FeatureVector{1, 0}, units, texts)
	require.NoError(t, err)
	assert.Equal(t, 0, cl.RepresentativeIndex)
	assert.InDelta(t, 0.9, cl.AvgSimilarity, 1e-9)

	empty, err := describeCluster(1, nil, schema.FeatureVector{1, 0}, units, texts)
	require.NoError(t, err)
	assert.Equal(t, -1, empty.RepresentativeIndex)
	assert.Empty(t, empty.MemberIndices)

	_, err = describeCluster(0, []int{0}, schema.FeatureVector{1, 0, 0}, units, texts)
	assert.ErrorIs(t, err, schema.ErrDimensionMismatch)
}
