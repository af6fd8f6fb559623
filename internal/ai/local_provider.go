package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"skillsync/internal/config"
	"skillsync/internal/errors"
	"skillsync/internal/matching"
)

// LocalModelName identifies vectors produced by LocalProvider
const LocalModelName = "local-hashing-v1"

// LocalProvider is an offline bag-of-words hashing embedder. Vectors from
// different dimensions are not comparable.
type LocalProvider struct {
	dim    int
	logger *errors.Logger
}

var _ EmbeddingProvider = (*LocalProvider)(nil)

// NewLocalProvider creates a hashing embedder with cfg.Dimensions buckets
func NewLocalProvider(cfg *config.EmbeddingConfig, logger *errors.Logger) (*LocalProvider, error) {
	if cfg.Dimensions < 1 {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"local embedding provider needs positive dimensions", nil).
			WithContext("dimensions", cfg.Dimensions)
	}
	return &LocalProvider{dim: cfg.Dimensions, logger: logger}, nil
}

// Embed hashes every token of each text into a fixed bucket and L2 normalises
// the counts. Text without tokens yields the zero vector.
func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([]matching.EmbeddingVector, error) {
	out := make([]matching.EmbeddingVector, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		counts := make([]float64, p.dim)
		for _, token := range tokenize(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			counts[h.Sum32()%uint32(p.dim)]++
		}
		out[i] = normalizeL2(counts)
	}
	p.logger.Debug("Local embeddings computed", "texts", len(texts), "dimensions", p.dim)
	return out, nil
}

// GetModelInfo always reports the local model as available
func (p *LocalProvider) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{
		Provider:    "local",
		Name:        LocalModelName,
		DisplayName: fmt.Sprintf("hashing bag-of-words (%d)", p.dim),
		Dimensions:  p.dim,
		Available:   true,
	}
}

// Close is a no-op
func (p *LocalProvider) Close() error { return nil }

// tokenize lowercases text and splits it into words, keeping symbols that
// belong to skill names such as "c++", "c#" and "node.js".
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'`*-/")
		if f == "" || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "at": true,
	"by": true, "from": true, "as": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "i": true, "we": true, "you": true,
	"our": true, "my": true, "your": true, "this": true, "that": true, "it": true,
	"will": true, "have": true, "has": true,
}
