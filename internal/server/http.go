package server

import (
	"context"
	"time"

	"skillsync/internal/ai"
	"skillsync/internal/classifier"
	"skillsync/internal/config"
	"skillsync/internal/errors"
	"skillsync/internal/observability"
	"skillsync/internal/types"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// JobProcessor ranks the CVs of one job
type JobProcessor interface {
	ProcessJob(ctx context.Context, req types.JobRequest) (*types.JobResponse, error)
	Describe() map[string]any
}

// ModelReporter exposes embedding model health
type ModelReporter interface {
	GetModelInfo(ctx context.Context) *ai.ModelInfo
	CircuitBreakerStats() map[string]any
}

// Components are the collaborators the server exposes over HTTP.
// Classifier and Observability may be nil.
type Components struct {
	Engine        JobProcessor
	Models        ModelReporter
	Classifier    *classifier.Model
	Observability *observability.ObservabilityManager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config
	TLSConfig config.TLSConfig

	CertificateManager *CertificateManager

	// API Authentication. Empty disables authentication.
	APIKeys map[string]bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	engine     JobProcessor
	models     ModelReporter
	classifier *classifier.Model
	om         *observability.ObservabilityManager

	Logger *errors.Logger
}

// NewServer creates a Server from the application configuration
func NewServer(appCfg *config.Config, version string, comps Components, logger *errors.Logger) *Server {
	apiKeyMap := make(map[string]bool, len(appCfg.Server.APIKeys))
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	rateLimit := appCfg.Server.RateLimit
	var limiter *LimiterManager
	if rateLimit.Enabled {
		limiter = NewRateLimiter(rateLimit, logger)
	}

	return &Server{
		Host:            appCfg.Server.Host,
		Port:            appCfg.Server.Port,
		Version:         version,
		AppConfig:       appCfg,
		TLSConfig:       appCfg.Server.TLS,
		APIKeys:         apiKeyMap,
		ReadTimeout:     appCfg.Server.ReadTimeout,
		WriteTimeout:    appCfg.Server.WriteTimeout,
		IdleTimeout:     appCfg.Server.IdleTimeout,
		ShutdownTimeout: appCfg.Server.ShutdownTimeout,
		MaxRequestSize:  appCfg.Server.MaxRequestSize,
		RateLimit:       &rateLimit,
		RateLimiter:     limiter,
		engine:          comps.Engine,
		models:          comps.Models,
		classifier:      comps.Classifier,
		om:              comps.Observability,
		Logger:          logger,
	}
}
