// Package vector implements the small amount of embedding geometry the
// recommendation engine depends on. All reference embeddings (user, flavour)
// are unit-normalized; the identities below assume that invariant.
package vector

import (
	"math"

	"github.com/pkg/errors"
)

// CosineToL2 converts a cosine similarity between two unit vectors into the
// equivalent Euclidean distance: d = sqrt(2 - 2s). The radicand is clamped at
// zero so that s == 1 does not produce a negative root from floating-point
// drift.
func CosineToL2(similarity float64) float64 {
	radicand := 2 - 2*similarity
	if radicand < 0 {
		radicand = 0
	}
	return math.Sqrt(radicand)
}

// CosineSimilarity returns the cosine similarity between a and b.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, errors.New("cosine similarity undefined for zero vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// L2Distance returns the Euclidean distance between a and b.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize scales v to unit length in place and returns it. A zero vector is
// returned unchanged rather than dividing by zero.
func Normalize(v []float32) []float32 {
	norm := Norm(v)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Mean returns the component-wise arithmetic mean of the given vectors.
// All vectors must share the same dimension.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, errors.New("mean of zero vectors")
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, errors.Errorf("dimension mismatch: %d vs %d", len(v), dim)
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}
	mean := make([]float32, dim)
	for i := range sum {
		mean[i] = float32(sum[i] / float64(len(vectors)))
	}
	return mean, nil
}
