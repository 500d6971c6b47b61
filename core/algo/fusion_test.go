package algo

import (
	"testing"

	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse(t *testing.T) {
	f, err := Fuse([]float64{2, 0, 4}, []float64{1, 1, 1}, 0.5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.5, 0.5, 2.5}, f.Fused, delta)
	assert.InDelta(t, 3.0, f.ContributionA, delta)
	assert.InDelta(t, 1.5, f.ContributionB, delta)
	assert.True(t, f.DominantA)
	assert.InDelta(t, 3.0/4.5, f.Share, delta)
}

func TestFuseAlphaOne(t *testing.T) {
	f, err := Fuse([]float64{0.2, 0.1}, []float64{5, 9}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.ContributionB)
	assert.True(t, f.DominantA)
	assert.InDelta(t, 1.0, f.Share, delta)
}

func TestFuseAlphaZero(t *testing.T) {
	f, err := Fuse([]float64{5, 9}, []float64{0.2, 0.1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.ContributionA)
	assert.False(t, f.DominantA)
	assert.InDelta(t, 1.0, f.Share, delta)
}

func TestFuseTies(t *testing.T) {
	f, err := Fuse([]float64{1}, []float64{1}, 0.5)
	require.NoError(t, err)
	assert.True(t, f.DominantA, "ties favour A at alpha >= 0.5")

	f, err = Fuse([]float64{3}, []float64{1}, 0.25)
	require.NoError(t, err)
	assert.False(t, f.DominantA, "ties favour B at alpha < 0.5")
	assert.InDelta(t, 0.5, f.Share, delta)
}

func TestFuseZeroTotal(t *testing.T) {
	f, err := Fuse([]float64{0, 0}, []float64{0, 0}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Share)
}

func TestFuseErrors(t *testing.T) {
	_, err := Fuse([]float64{1, 2}, []float64{1}, 0.5)
	assert.ErrorIs(t, err, schema.ErrLengthMismatch)

	_, err = Fuse([]float64{1}, []float64{1}, 1.5)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)

	_, err = Fuse([]float64{1}, []float64{1}, -0.1)
	assert.ErrorIs(t, err, schema.ErrInvalidParameter)
}
