package observability

import (
	"skillsync/internal/config"
)

// GetObservabilityConfig derives the manager configuration. A nil cfg yields
// tracing and metrics without exporters.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:     "skillsync",
			ServiceVersion:  version,
			ServiceInstance: "skillsync-1",
			Enabled:         true,
			SampleRate:      1.0,
			Prometheus:      GetPrometheusConfig(nil),
			CustomMetrics:   defaultCustomMetrics(),
		}
	}

	obs := cfg.Observability
	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	return ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         obs.SampleRate,
		CollectionInterval: obs.Metrics.CollectionInterval,
		Prometheus:         GetPrometheusConfig(cfg),
		OTLP:               obs.OTLP,
		CustomMetrics:      obs.CustomMetrics,
	}
}

func defaultCustomMetrics() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		Embedding:      config.EmbeddingMetricsConfig{Enabled: true, TrackDuration: true},
		Scoring:        config.ScoringMetricsConfig{Enabled: true, TrackScores: true},
		Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true, TrackCertReloads: true},
	}
}
