package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Embedding API key precedence order:
// 1. Vault (if configured) - Highest priority
// 2. Config file values
// 3. Environment variables (SKILLSYNC_EMBEDDING_APIKEY, then GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Classifier    ClassifierConfig    `mapstructure:"classifier"`
	Matching      MatchingConfig      `mapstructure:"matching"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider       string               `mapstructure:"provider"` // "gemini" or "local"
	Model          string               `mapstructure:"model"`
	APIKey         string               `mapstructure:"apiKey"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxRetries     int                  `mapstructure:"maxRetries"`
	BatchSize      int                  `mapstructure:"batchSize"`  // Texts per provider call
	Dimensions     int                  `mapstructure:"dimensions"` // 0 keeps the model default
	TaskType       string               `mapstructure:"taskType"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Open state duration before half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0]
}

// ClassifierConfig locates the optional trained classifier artifact
type ClassifierConfig struct {
	Path     string `mapstructure:"path"`
	Required bool   `mapstructure:"required"` // Fail startup when the artifact is absent
}

// MatchingConfig tunes the ranking engine
type MatchingConfig struct {
	Workers       int           `mapstructure:"workers"`       // Concurrent candidate pipelines per job
	LexiconFile   string        `mapstructure:"lexiconFile"`   // Replaces the built-in skill lexicon
	JobTimeout    time.Duration `mapstructure:"jobTimeout"`    // 0 disables the per-job deadline
	MaxCandidates int           `mapstructure:"maxCandidates"` // Per request
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	MaxRequestSize  int64         `mapstructure:"maxRequestSize"` // Bytes; 0 disables the limit

	TLS TLSConfig `mapstructure:"tls"`

	// Valid API keys for authentication. Empty disables authentication.
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`

	// PEM content, used when loaded from Vault instead of files
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string   `mapstructure:"minVersion"` // "1.2", "1.3"
	CipherSuites     []string `mapstructure:"cipherSuites"`
	ClientAuthPolicy string   `mapstructure:"clientAuthPolicy"` // "require", "request", "verify"

	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig controls certificate hot reload. Files are watched with
// fsnotify; certificates read from Vault are polled for new secret versions.
type AutoReloadConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	DebounceDelay     time.Duration `mapstructure:"debounceDelay"`
	VaultPollInterval time.Duration `mapstructure:"vaultPollInterval"` // 0 disables Vault polling
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	IdleTTL        time.Duration `mapstructure:"idleTTL"` // Evict limiters unused for this long
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console exporter configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig switches groups of application metrics
type CustomMetricsConfig struct {
	Embedding      EmbeddingMetricsConfig      `mapstructure:"embedding"`
	Scoring        ScoringMetricsConfig        `mapstructure:"scoring"`
	Infrastructure InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// EmbeddingMetricsConfig holds embedding call metrics configuration
type EmbeddingMetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TrackDuration bool `mapstructure:"trackDuration"`
}

// ScoringMetricsConfig holds ranking outcome metrics configuration
type ScoringMetricsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	TrackScores bool `mapstructure:"trackScores"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	TrackRateLimits  bool `mapstructure:"trackRateLimits"`
	TrackCertReloads bool `mapstructure:"trackCertReloads"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	ModelCheckTimeout time.Duration `mapstructure:"modelCheckTimeout"`
}

const envPrefix = "SKILLSYNC"

// LoadConfig loads configuration from defaults, an optional config file and
// environment variables. An explicit configFile skips the search path.
func LoadConfig(configFile string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", envPrefix)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/skillsync/")
		v.AddConfigPath("$HOME/.skillsync")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. The embedding API key is
// checked separately by ValidateSecrets because Vault may supply it later.
func (c *Config) Validate() error {
	if err := c.validateEmbedding(); err != nil {
		return err
	}

	if c.Matching.Workers < 1 {
		return fmt.Errorf("matching workers must be at least 1")
	}
	if c.Matching.MaxCandidates < 1 {
		return fmt.Errorf("matching maxCandidates must be at least 1")
	}
	if c.Matching.JobTimeout < 0 {
		return fmt.Errorf("matching jobTimeout must not be negative")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	switch e.Provider {
	case "gemini", "local":
	default:
		return fmt.Errorf("unsupported embedding provider: %s (must be 'gemini' or 'local')", e.Provider)
	}
	if e.Timeout <= 0 {
		return fmt.Errorf("embedding timeout must be positive")
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("embedding maxRetries must not be negative")
	}
	if e.BatchSize < 1 || e.BatchSize > maxEmbeddingBatch {
		return fmt.Errorf("embedding batchSize must be between 1 and %d", maxEmbeddingBatch)
	}
	if e.Dimensions < 0 {
		return fmt.Errorf("embedding dimensions must not be negative")
	}
	if e.Provider == "local" && e.Dimensions == 0 {
		return fmt.Errorf("embedding dimensions are required for the local provider")
	}
	if cb := e.CircuitBreaker; cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failureThreshold must be in (0, 1]")
	}
	return nil
}

// ValidateSecrets checks secrets that may only be resolved after Vault has been applied
func (c *Config) ValidateSecrets() error {
	if c.Embedding.Provider == "gemini" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding API key is required for the gemini provider (set %s_EMBEDDING_APIKEY or GEMINI_API_KEY)", envPrefix)
	}
	return nil
}

// maxEmbeddingBatch is the largest batch the Gemini embedding endpoint accepts
const maxEmbeddingBatch = 100
