package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
embedding:
  provider: local
  dimensions: 256
  batchSize: 20
classifier:
  path: /models/classifier.json
matching:
  workers: 4
  lexiconFile: /etc/skillsync/skills.txt
server:
  port: "9000"
  apiKeys: ["alpha", "beta"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Equal(t, 256, cfg.Embedding.Dimensions)
	assert.Equal(t, 20, cfg.Embedding.BatchSize)
	assert.Equal(t, "/models/classifier.json", cfg.Classifier.Path)
	assert.False(t, cfg.Classifier.Required)
	assert.Equal(t, 4, cfg.Matching.Workers)
	assert.Equal(t, "/etc/skillsync/skills.txt", cfg.Matching.LexiconFile)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)

	// untouched defaults survive
	assert.Equal(t, 2*time.Minute, cfg.Matching.JobTimeout)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("SKILLSYNC_EMBEDDING_MODEL", "text-embedding-005")
	t.Setenv("SKILLSYNC_MATCHING_WORKERS", "3")
	t.Setenv("SKILLSYNC_SERVER_APIKEYS", "k1, k2 ,k3")
	t.Setenv("GEMINI_API_KEY", "legacy-key")

	cfg, err := LoadConfig(writeConfigFile(t, "app:\n  logLevel: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-005", cfg.Embedding.Model)
	assert.Equal(t, 3, cfg.Matching.Workers)
	assert.Equal(t, []string{"k1", "k2", "k3"}, cfg.Server.APIKeys)
	assert.Equal(t, "legacy-key", cfg.Embedding.APIKey)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.NoError(t, cfg.ValidateSecrets())
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfigFile(t, "embedding:\n  provider: openai\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}

func validConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "gemini",
			Model:      "text-embedding-004",
			Timeout:    time.Minute,
			MaxRetries: 3,
			BatchSize:  50,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 0.6,
			},
		},
		Matching: MatchingConfig{Workers: 2, MaxCandidates: 10},
		Server:   ServerConfig{Port: "8080", TLS: TLSConfig{Mode: "disabled"}},
		App:      AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "text"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Embedding.Provider = "bert" }, wantErr: "unsupported embedding provider"},
		{name: "zero timeout", mutate: func(c *Config) { c.Embedding.Timeout = 0 }, wantErr: "timeout must be positive"},
		{name: "batch too large", mutate: func(c *Config) { c.Embedding.BatchSize = 101 }, wantErr: "batchSize"},
		{name: "local without dimensions", mutate: func(c *Config) { c.Embedding.Provider = "local" }, wantErr: "dimensions are required"},
		{name: "bad breaker threshold", mutate: func(c *Config) { c.Embedding.CircuitBreaker.FailureThreshold = 1.5 }, wantErr: "failureThreshold"},
		{name: "no workers", mutate: func(c *Config) { c.Matching.Workers = 0 }, wantErr: "workers"},
		{name: "no candidates", mutate: func(c *Config) { c.Matching.MaxCandidates = 0 }, wantErr: "maxCandidates"},
		{name: "negative job timeout", mutate: func(c *Config) { c.Matching.JobTimeout = -time.Second }, wantErr: "jobTimeout"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "port"},
		{name: "unsupported format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, wantErr: "invalid default format"},
		{name: "bad tls mode", mutate: func(c *Config) { c.Server.TLS.Mode = "on" }, wantErr: "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSecrets(t *testing.T) {
	cfg := validConfig()
	assert.Error(t, cfg.ValidateSecrets())

	cfg.Embedding.APIKey = "set"
	assert.NoError(t, cfg.ValidateSecrets())

	cfg.Embedding.APIKey = ""
	cfg.Embedding.Provider = "local"
	assert.NoError(t, cfg.ValidateSecrets())
}
