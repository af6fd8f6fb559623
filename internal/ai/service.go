package ai

import (
	"context"
	"fmt"

	"skillsync/internal/config"
	"skillsync/internal/errors"
	"skillsync/internal/matching"
)

// Service owns the configured embedding provider
type Service struct {
	Provider EmbeddingProvider
	config   *config.EmbeddingConfig
	logger   *errors.Logger
}

// NewService creates the provider selected by cfg.Provider
func NewService(ctx context.Context, cfg *config.EmbeddingConfig, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing embedding service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"dimensions", cfg.Dimensions,
		"batch_size", cfg.BatchSize,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	var provider EmbeddingProvider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(ctx, cfg, logger)
	case "local":
		provider, err = NewLocalProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported embedding provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}

	return &Service{Provider: provider, config: cfg, logger: logger}, nil
}

// Embed delegates to the provider
func (s *Service) Embed(ctx context.Context, texts []string) ([]matching.EmbeddingVector, error) {
	return s.Provider.Embed(ctx, texts)
}

// GetModelInfo returns information about the model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// ModelName is the configured model, or the local model name
func (s *Service) ModelName() string {
	if s.config.Provider == "local" {
		return LocalModelName
	}
	return s.config.Model
}

// CircuitBreakerStats reports breaker state when the provider has one
func (s *Service) CircuitBreakerStats() map[string]any {
	if g, ok := s.Provider.(*GeminiProvider); ok {
		return g.GetCircuitBreakerStats()
	}
	return map[string]any{"enabled": false}
}

// Close releases the provider
func (s *Service) Close() error {
	return s.Provider.Close()
}

var _ EmbeddingProvider = (*Service)(nil)
