package ai

import (
	"context"

	"skillsync/internal/matching"
)

// EmbeddingProvider turns texts into unit-norm vectors.
// The returned slice matches texts 1:1 in order.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([]matching.EmbeddingVector, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ModelInfo represents information about the embedding model
type ModelInfo struct {
	Provider    string `json:"provider"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Dimensions  int    `json:"dimensions,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
