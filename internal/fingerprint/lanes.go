package fingerprint

import "math"

const (
	// digestLanes is one appended component per bit of the xxh3 content sum
	digestLanes = 64

	// digestWeight is the norm of the appended lanes relative to the
	// embedding. One differing bit lowers the cosine by about 3e-4.
	digestWeight = 0.1
)

// withDigestLanes appends ±lane components derived from the content sum so
// that byte-level edits move the fingerprint even when the embedding does
// not notice them. Identical content keeps an identical vector.
func withDigestLanes(vector []float64, sum uint64) []float64 {
	var norm float64
	for _, x := range vector {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}

	lane := digestWeight * norm / math.Sqrt(digestLanes)
	out := make([]float64, len(vector), len(vector)+digestLanes)
	copy(out, vector)
	for i := 0; i < digestLanes; i++ {
		if sum&(1<<uint(i)) != 0 {
			out = append(out, lane)
		} else {
			out = append(out, -lane)
		}
	}
	return out
}
