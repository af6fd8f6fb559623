package matching

import (
	"fmt"

	"skillsync/internal/errors"
)

// Similarity is the dot product of two unit-norm embeddings, which equals their cosine
func Similarity(a, b EmbeddingVector) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.NewScoringError(errors.ErrCodeEmbeddingMismatch,
			fmt.Sprintf("embedding dimensions differ: %d vs %d", len(a), len(b)), nil)
	}
	if len(a) == 0 {
		return 0, errors.NewScoringError(errors.ErrCodeEmbeddingMismatch, "embedding is empty", nil)
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot, nil
}

// NormalizedScore maps a similarity in [-1, 1] to a base score in [0, 100]
func NormalizedScore(similarity float64) float64 {
	return (similarity + 1.0) * 50.0
}
