package ai

import (
	"math"

	"skillsync/internal/matching"
)

// normalizeL2 scales v to unit length. A zero vector is returned unchanged.
func normalizeL2[T float32 | float64](v []T) matching.EmbeddingVector {
	out := make(matching.EmbeddingVector, len(v))
	var sum float64
	for i, x := range v {
		out[i] = float64(x)
		sum += out[i] * out[i]
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i := range out {
		out[i] /= norm
	}
	return out
}
