package embedding

import "github.com/zeebo/xxh3"

// hashedVector accumulates features into a fixed number of buckets using
// signed feature hashing
type hashedVector struct {
	values []float64
}

func newHashedVector(dims int) *hashedVector {
	return &hashedVector{values: make([]float64, dims)}
}

func (h *hashedVector) add(feature string, weight float64) {
	sum := xxh3.HashString(feature)
	idx := sum % uint64(len(h.values))
	if sum>>63 == 1 {
		weight = -weight
	}
	h.values[idx] += weight
}

func (h *hashedVector) vector() []float64 {
	return normalizeL2(h.values)
}
