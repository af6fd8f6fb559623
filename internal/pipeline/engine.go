// Package pipeline runs ranking jobs: it resolves candidate texts, embeds them
// in one batch, scores every candidate concurrently and ranks once.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"skillsync/internal/errors"
	"skillsync/internal/matching"
	"skillsync/internal/observability"
	"skillsync/internal/types"
)

// Embedder turns texts into unit-norm vectors, 1:1 with the input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]matching.EmbeddingVector, error)
}

// TextSource resolves a CV to plain text. Unreadable CVs resolve to "".
type TextSource interface {
	Text(ctx context.Context, cv types.CVInput) string
}

// Models are the read-only collaborators loaded once at startup and shared
// by every job. Classifier and Lexicon are optional.
type Models struct {
	Embedder     Embedder
	EmbedderName string
	Classifier   matching.Classifier
	Lexicon      *matching.Lexicon
	TextSource   TextSource
}

// Options bound the work done per job
type Options struct {
	Workers       int
	MaxCandidates int
	JobTimeout    time.Duration // 0 disables the deadline
}

// Engine is safe for concurrent use
type Engine struct {
	models   Models
	scorer   *matching.Scorer
	opts     Options
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *errors.Logger
}

// NewEngine checks models and opts and builds the scorer. metrics may be nil.
func NewEngine(models Models, opts Options, metrics *observability.Metrics, logger *errors.Logger) (*Engine, error) {
	if models.Embedder == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "ranking engine needs an embedding provider", nil)
	}
	if models.TextSource == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "ranking engine needs a text source", nil)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if models.EmbedderName == "" {
		models.EmbedderName = "unknown"
	}

	scorer := matching.NewScorer(models.Lexicon, models.Classifier)
	logger.Info("Ranking engine ready",
		"embedder", models.EmbedderName,
		"classifier", scorer.HasClassifier(),
		"lexicon_terms", scorer.Lexicon().Len(),
		"workers", opts.Workers,
		"max_candidates", opts.MaxCandidates)

	return &Engine{
		models:   models,
		scorer:   scorer,
		opts:     opts,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Scorer exposes the engine's scorer for feature inspection
func (e *Engine) Scorer() *matching.Scorer {
	return e.scorer
}

// Describe summarises the engine configuration for status endpoints
func (e *Engine) Describe() map[string]any {
	return map[string]any{
		"embedder":       e.models.EmbedderName,
		"classifier":     e.scorer.HasClassifier(),
		"lexicon_terms":  e.scorer.Lexicon().Len(),
		"workers":        e.opts.Workers,
		"max_candidates": e.opts.MaxCandidates,
		"job_timeout":    e.opts.JobTimeout.String(),
	}
}

// ProcessJob ranks every CV in req against its job description. A CV whose
// text cannot be read scores 0 without affecting the others. Invalid
// requests, embedding failures and malformed features fail the whole job.
func (e *Engine) ProcessJob(ctx context.Context, req types.JobRequest) (*types.JobResponse, error) {
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}

	if e.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.JobTimeout)
		defer cancel()
	}

	ctx, span := otel.Tracer("skillsync.pipeline").Start(ctx, "pipeline.process_job")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.id", req.JobID),
		attribute.Int("job.candidates", len(req.CVs)),
	)

	start := time.Now()
	results, err := e.run(ctx, req)
	e.metrics.RecordJob(ctx, results, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "job failed")
		e.logger.LogError(err, "Ranking job failed", "job_id", req.JobID, "candidates", len(req.CVs))
		return nil, err
	}

	resp := &types.JobResponse{JobID: req.JobID, Results: make([]types.CVResult, len(results))}
	degraded, shortlisted := 0, 0
	for i, r := range results {
		resp.Results[i] = types.CVResult{
			CVID:        r.CandidateID,
			Score:       round2(r.Score),
			Rank:        r.Rank,
			Status:      string(r.Status),
			Explanation: r.Explanation,
		}
		if r.Degraded {
			degraded++
		}
		if r.Status == matching.StatusShortlisted {
			shortlisted++
		}
	}

	span.SetAttributes(
		attribute.Int("job.degraded", degraded),
		attribute.Int("job.shortlisted", shortlisted),
	)
	e.logger.Info("Ranking job completed",
		"job_id", req.JobID,
		"candidates", len(results),
		"shortlisted", shortlisted,
		"degraded", degraded,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func (e *Engine) run(ctx context.Context, req types.JobRequest) ([]matching.MatchResult, error) {
	texts := e.resolveTexts(ctx, req.CVs)
	if err := ctx.Err(); err != nil {
		return nil, jobAborted(err)
	}

	// Index 0 is the job; unreadable candidates are not sent to the provider.
	inputs := []string{req.JobDescriptionText}
	slot := make([]int, len(texts))
	for i, text := range texts {
		slot[i] = -1
		if matching.Readable(text) {
			slot[i] = len(inputs)
			inputs = append(inputs, text)
		}
	}

	vectors, err := e.embed(ctx, inputs)
	if err != nil {
		return nil, err
	}

	job := e.scorer.Profile(req.JobDescriptionText, vectors[0])
	scored := make([]matching.Scored, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, cv := range req.CVs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidate := matching.Candidate{ID: cv.CVID, Text: texts[i]}
			if slot[i] >= 0 {
				candidate.Embedding = vectors[slot[i]]
			}
			s, err := e.scorer.Score(job, candidate)
			if err != nil {
				return fmt.Errorf("candidate %s: %w", cv.CVID, err)
			}
			scored[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, jobAborted(ctxErr)
		}
		return nil, err
	}

	return matching.Rank(scored), nil
}

// resolveTexts reads every CV concurrently, bounded by the worker count
func (e *Engine) resolveTexts(ctx context.Context, cvs []types.CVInput) []string {
	texts := make([]string, len(cvs))
	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i, cv := range cvs {
		g.Go(func() error {
			texts[i] = e.models.TextSource.Text(ctx, cv)
			return nil
		})
	}
	_ = g.Wait()
	return texts
}

func (e *Engine) embed(ctx context.Context, inputs []string) ([]matching.EmbeddingVector, error) {
	var vectors []matching.EmbeddingVector
	err := e.metrics.TrackEmbedding(ctx, e.models.EmbedderName, len(inputs), func(ctx context.Context) error {
		var err error
		vectors, err = e.models.Embedder.Embed(ctx, inputs)
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, jobAborted(ctxErr)
		}
		if errors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed, "Failed to embed job and candidate texts", err)
	}
	if len(vectors) != len(inputs) {
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingMismatch,
			fmt.Sprintf("embedding provider returned %d vectors for %d texts", len(vectors), len(inputs)), nil)
	}
	return vectors, nil
}

func (e *Engine) validateRequest(req types.JobRequest) error {
	if err := e.validate.Struct(req); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, describeValidation(err), err)
	}
	if !matching.Readable(req.JobDescriptionText) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "job_description_text must not be blank", nil)
	}
	if e.opts.MaxCandidates > 0 && len(req.CVs) > e.opts.MaxCandidates {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("too many cvs: %d (limit %d)", len(req.CVs), e.opts.MaxCandidates), nil)
	}

	seen := make(map[string]struct{}, len(req.CVs))
	for _, cv := range req.CVs {
		if _, dup := seen[cv.CVID]; dup {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("duplicate cv_id: %s", cv.CVID), nil)
		}
		seen[cv.CVID] = struct{}{}
	}
	return nil
}

// describeValidation reports the first failing field
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return fmt.Sprintf("invalid request: %s failed %s", ve.Namespace(), ve.Tag())
	}
	return "invalid request"
}

func jobAborted(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "ranking job timed out", err)
	}
	return errors.NewInternalError(errors.ErrCodeJobCancelled, "ranking job cancelled", err)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
