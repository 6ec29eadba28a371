package embedding

import (
	"fmt"
	"math"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// Cosine returns the cosine similarity of two equal-length vectors. Two
// zero-norm vectors are similar only when they are identical.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", models.ErrShapeMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", models.ErrShapeMismatch)
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		if na == nb {
			return 1, nil
		}
		return 0, nil
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// clamp rounding drift
	return math.Max(-1, math.Min(1, sim)), nil
}

// Concat joins two vectors into a new one
func Concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Variance is the population variance of the vector's components
func Variance(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))

	var sum float64
	for _, x := range v {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(v))
}

// normalizeL2 scales v to unit length in place. Zero vectors are left alone.
func normalizeL2(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

// normalizeL1 scales v so its components sum to one
func normalizeL1(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += math.Abs(x)
	}
	if sum == 0 {
		return v
	}
	for i := range v {
		v[i] /= sum
	}
	return v
}
