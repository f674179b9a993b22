package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineToL2(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		want       float64
	}{
		{"orthogonal", 0, math.Sqrt2},
		{"identical", 1, 0},
		{"opposite", -1, 2},
		{"threshold 0.3", 0.3, math.Sqrt(1.4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineToL2(tt.similarity), 1e-12)
		})
	}
}

func TestCosineToL2_ClampsFloatDrift(t *testing.T) {
	// A similarity marginally above 1 must not produce NaN.
	got := CosineToL2(1 + 1e-15)
	assert.False(t, math.IsNaN(got))
	assert.Equal(t, 0.0, got)
}

func TestCosineToL2_RoundTripsTrueDistance(t *testing.T) {
	// For unit vectors, converting the measured cosine similarity must
	// reproduce the measured L2 distance.
	pairs := [][2][]float32{
		{{1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {1, 0, 0}},
		{{0.6, 0.8, 0}, {0, 0.6, 0.8}},
	}

	for _, pair := range pairs {
		similarity, err := CosineSimilarity(pair[0], pair[1])
		require.NoError(t, err)
		distance, err := L2Distance(pair[0], pair[1])
		require.NoError(t, err)
		assert.InDelta(t, distance, CosineToL2(similarity), 1e-6)
	}
}

func TestCosineSimilarity_Errors(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")

	_, err = CosineSimilarity([]float32{0, 0}, []float32{1, 0})
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 1.0, Norm(v), 1e-6)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestMean(t *testing.T) {
	mean, err := Mean([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, mean)

	_, err = Mean(nil)
	require.Error(t, err)

	_, err = Mean([][]float32{{1, 0}, {1}})
	require.Error(t, err)
}
