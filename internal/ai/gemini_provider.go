package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"skillsync/internal/config"
	skillsyncErrors "skillsync/internal/errors"
	"skillsync/internal/matching"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// modelsAPI is the part of *genai.Models the provider calls
type modelsAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiProvider implements EmbeddingProvider for the Gemini embedding models
type GeminiProvider struct {
	models         modelsAPI
	config         *config.EmbeddingConfig
	circuitBreaker *EmbeddingCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *skillsyncErrors.Logger
	backoffBase    time.Duration
}

var _ EmbeddingProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini embedding provider
func NewGeminiProvider(ctx context.Context, cfg *config.EmbeddingConfig, logger *skillsyncErrors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, skillsyncErrors.NewConfigError(skillsyncErrors.ErrCodeMissingAPIKey,
			"Gemini embedding provider requires an API key", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, skillsyncErrors.NewAIError(skillsyncErrors.ErrCodeEmbeddingFailed,
			"Failed to create Gemini client", err)
	}
	return newGeminiProvider(client.Models, cfg, logger), nil
}

func newGeminiProvider(models modelsAPI, cfg *config.EmbeddingConfig, logger *skillsyncErrors.Logger) *GeminiProvider {
	return &GeminiProvider{
		models:         models,
		config:         cfg,
		circuitBreaker: NewEmbeddingCircuitBreaker(cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(cfg, logger),
		logger:         logger,
		backoffBase:    time.Second,
	}
}

// Embed embeds texts in batches of embedding.batchSize. Each batch is retried
// and guarded by the circuit breaker; any batch failure fails the whole call.
func (g *GeminiProvider) Embed(ctx context.Context, texts []string) ([]matching.EmbeddingVector, error) {
	tracer := otel.Tracer("skillsync.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("ai.texts", len(texts)),
		attribute.Int("ai.batch_size", g.config.BatchSize),
	)

	vectors := make([]matching.EmbeddingVector, 0, len(texts))
	for start := 0; start < len(texts); start += g.config.BatchSize {
		end := min(start+g.config.BatchSize, len(texts))
		batch, err := g.embedBatch(ctx, texts[start:end])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "embedding failed")
			span.SetAttributes(attribute.Bool("success", false))
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return vectors, nil
}

func (g *GeminiProvider) embedBatch(ctx context.Context, texts []string) ([]matching.EmbeddingVector, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	embedConfig := &genai.EmbedContentConfig{TaskType: g.config.TaskType}
	if g.config.Dimensions > 0 {
		dims := int32(g.config.Dimensions)
		embedConfig.OutputDimensionality = &dims
	}

	resp, err := g.circuitBreaker.Execute(func() (*genai.EmbedContentResponse, error) {
		return executeWithRetry(ctx, g, "embed_content", func() (*genai.EmbedContentResponse, error) {
			callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
			defer cancel()
			return g.models.EmbedContent(callCtx, g.config.Model, contents, embedConfig)
		})
	})
	if err != nil {
		return nil, skillsyncErrors.NewAIError(skillsyncErrors.ErrCodeEmbeddingFailed,
			"Failed to embed texts", err).WithContext("texts", len(texts))
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, skillsyncErrors.NewAIError(skillsyncErrors.ErrCodeEmbeddingMismatch,
			fmt.Sprintf("embedding count mismatch: sent %d texts, received %d vectors", len(texts), got), nil)
	}

	out := make([]matching.EmbeddingVector, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, skillsyncErrors.NewAIError(skillsyncErrors.ErrCodeEmbeddingMismatch,
				fmt.Sprintf("empty embedding returned for text %d", i), nil)
		}
		out[i] = normalizeL2(e.Values)
	}
	return out, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{
		Provider:   "gemini",
		Name:       g.config.Model,
		Dimensions: g.config.Dimensions,
	}

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.models.Get(ctx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", info.DisplayName,
		"version", info.Version)
	return info
}

// GetCircuitBreakerStats returns statistics for both breakers
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"embedding": g.circuitBreaker.GetStats(),
		"model":     g.modelBreaker.GetModelStats(),
	}
}

// Close releases provider resources. The genai client holds none.
func (g *GeminiProvider) Close() error {
	return nil
}

// executeWithRetry retries fn with exponential backoff and jitter while the
// error is retryable
func executeWithRetry[T any](ctx context.Context, g *GeminiProvider, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying embedding operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoffDelay(g.backoffBase, attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Embedding operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "Embedding operation failed after all retry attempts",
		"operation", operation,
		"max_retries", g.config.MaxRetries)
	return zero, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// backoffDelay is base*2^(attempt-1) plus up to 10% jitter, capped at 30s
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * base
	if jitterMax := int64(float64(delay) * 0.1); jitterMax > 0 {
		if j, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			delay += time.Duration(j.Int64())
		}
	}
	return min(delay, 30*time.Second)
}

// isRetryableError reports whether err is a network failure or a transient
// HTTP status from the API
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
