package observability

import (
	"context"
	"fmt"
	"time"

	"skillsync/internal/config"
	"skillsync/internal/matching"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	settings config.CustomMetricsConfig

	// Embedding provider calls
	EmbeddingDuration metric.Float64Histogram
	EmbeddingRequests metric.Int64Counter
	EmbeddingErrors   metric.Int64Counter
	EmbeddedTexts     metric.Int64Counter

	// Ranking outcomes
	JobsProcessed         metric.Int64Counter
	JobDuration           metric.Float64Histogram
	CandidatesScored      metric.Int64Counter
	CandidatesDegraded    metric.Int64Counter
	CandidatesShortlisted metric.Int64Counter
	MatchScores           metric.Float64Histogram

	// Infrastructure
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge
	RateLimitHits   metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}
	var err error

	float64Histograms := []struct {
		target     *metric.Float64Histogram
		name, desc string
		unit       string
		boundaries []float64
	}{
		{&m.EmbeddingDuration, "skillsync_embedding_duration_seconds", "Time spent in embedding provider calls", "s", nil},
		{&m.JobDuration, "skillsync_job_duration_seconds", "Time spent ranking one job", "s", nil},
		{&m.MatchScores, "skillsync_match_score", "Distribution of final candidate scores", "1",
			[]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
	}
	for _, h := range float64Histograms {
		opts := []metric.Float64HistogramOption{metric.WithDescription(h.desc), metric.WithUnit(h.unit)}
		if h.boundaries != nil {
			opts = append(opts, metric.WithExplicitBucketBoundaries(h.boundaries...))
		}
		if *h.target, err = meter.Float64Histogram(h.name, opts...); err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", h.name, err)
		}
	}

	counters := []struct {
		target     *metric.Int64Counter
		name, desc string
	}{
		{&m.EmbeddingRequests, "skillsync_embedding_requests_total", "Total number of embedding provider calls"},
		{&m.EmbeddingErrors, "skillsync_embedding_errors_total", "Total number of failed embedding provider calls"},
		{&m.EmbeddedTexts, "skillsync_embedded_texts_total", "Total number of texts sent for embedding"},
		{&m.JobsProcessed, "skillsync_jobs_processed_total", "Total number of ranking jobs"},
		{&m.CandidatesScored, "skillsync_candidates_scored_total", "Total number of candidates scored"},
		{&m.CandidatesDegraded, "skillsync_candidates_degraded_total", "Candidates scored zero because no text could be read"},
		{&m.CandidatesShortlisted, "skillsync_candidates_shortlisted_total", "Candidates at or above the shortlist threshold"},
		{&m.CertReloadCount, "skillsync_cert_reloads_total", "Total number of certificate reloads"},
		{&m.RateLimitHits, "skillsync_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
	}

	m.CertExpiryTime, err = meter.Float64Gauge(
		"skillsync_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate expiry time metric: %w", err)
	}

	return m, nil
}

// TrackEmbedding wraps one embedding call with a span and call metrics
func (m *Metrics) TrackEmbedding(ctx context.Context, provider string, texts int, fn func(context.Context) error) error {
	ctx, span := otel.Tracer("skillsync.embedding").Start(ctx, "embedding.embed")
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.Bool("success", err == nil),
	}
	span.SetAttributes(append(attrs, attribute.Int("texts", texts))...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
	}

	if m == nil || !m.settings.Embedding.Enabled {
		return err
	}
	opt := metric.WithAttributes(attrs...)
	if m.settings.Embedding.TrackDuration {
		m.EmbeddingDuration.Record(ctx, duration, opt)
	}
	m.EmbeddingRequests.Add(ctx, 1, opt)
	m.EmbeddedTexts.Add(ctx, int64(texts), opt)
	if err != nil {
		m.EmbeddingErrors.Add(ctx, 1, opt)
	}
	return err
}

// RecordJob records the outcome of one ranking job
func (m *Metrics) RecordJob(ctx context.Context, results []matching.MatchResult, duration time.Duration, err error) {
	if m == nil || !m.settings.Scoring.Enabled {
		return
	}

	m.JobsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	m.JobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", err == nil)))
	if err != nil {
		return
	}

	m.CandidatesScored.Add(ctx, int64(len(results)))
	for _, r := range results {
		if r.Degraded {
			m.CandidatesDegraded.Add(ctx, 1)
		}
		if r.Status == matching.StatusShortlisted {
			m.CandidatesShortlisted.Add(ctx, 1)
		}
		if m.settings.Scoring.TrackScores {
			m.MatchScores.Record(ctx, r.Score)
		}
	}
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attrs ...attribute.KeyValue) {
	if m == nil || !m.infrastructure(m.settings.Infrastructure.TrackRateLimits) {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCertReload counts a certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil || !m.infrastructure(m.settings.Infrastructure.TrackCertReloads) {
		return
	}
	m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordCertExpiry records the time left on the serving certificate
func (m *Metrics) RecordCertExpiry(ctx context.Context, remaining time.Duration) {
	if m == nil || !m.infrastructure(m.settings.Infrastructure.TrackCertReloads) {
		return
	}
	m.CertExpiryTime.Record(ctx, remaining.Seconds())
}

func (m *Metrics) infrastructure(track bool) bool {
	return m.settings.Infrastructure.Enabled && track
}
