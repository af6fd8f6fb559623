package cli

import (
	"context"
	"fmt"

	"skillsync/internal/ai"
	"skillsync/internal/classifier"
	"skillsync/internal/common"
	"skillsync/internal/config"
	"skillsync/internal/errors"
	"skillsync/internal/formatters"
	"skillsync/internal/matching"
	"skillsync/internal/observability"
	"skillsync/internal/pipeline"
	"skillsync/internal/textextract"

	"github.com/spf13/cobra"
)

// rankingRuntime holds the models loaded once per process
type rankingRuntime struct {
	service    *ai.Service
	classifier *classifier.Model
	extractor  *textextract.Extractor
	engine     *pipeline.Engine
}

// buildRankingRuntime resolves secrets and loads the embedding provider,
// classifier and lexicon. metrics may be nil.
func buildRankingRuntime(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *errors.Logger) (*rankingRuntime, error) {
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}
	if err := cfg.ValidateSecrets(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, err.Error(), nil)
	}

	service, err := ai.NewService(ctx, &cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	model, err := classifier.Load(cfg.Classifier.Path, cfg.Classifier.Required, service.ModelName(), logger)
	if err != nil {
		_ = service.Close()
		return nil, err
	}

	lexicon, err := loadLexicon(cfg.Matching.LexiconFile, logger)
	if err != nil {
		_ = service.Close()
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load skill lexicon", err)
	}

	extractor := textextract.New(cfg.App.MaxFileSize, logger)
	models := pipeline.Models{
		Embedder:     service,
		EmbedderName: service.ModelName(),
		Lexicon:      lexicon,
		TextSource:   extractor,
	}
	if model != nil {
		models.Classifier = model
	}

	engine, err := pipeline.NewEngine(models, pipeline.Options{
		Workers:       cfg.Matching.Workers,
		MaxCandidates: cfg.Matching.MaxCandidates,
		JobTimeout:    cfg.Matching.JobTimeout,
	}, metrics, logger)
	if err != nil {
		_ = service.Close()
		return nil, err
	}

	return &rankingRuntime{
		service:    service,
		classifier: model,
		extractor:  extractor,
		engine:     engine,
	}, nil
}

func (r *rankingRuntime) Close() error {
	return r.service.Close()
}

// loadLexicon returns nil for the built-in lexicon
func loadLexicon(path string, logger *errors.Logger) (*matching.Lexicon, error) {
	if path == "" {
		return nil, nil
	}
	lexicon, err := matching.LoadLexiconFile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded skill lexicon", "path", path, "terms", lexicon.Len())
	return lexicon, nil
}

// newRunner builds the shared file and output helpers for one-shot commands
func newRunner(extractor *textextract.Extractor, logger *errors.Logger) *common.Runner {
	return common.NewRunner(common.NewFileProcessor(extractor, logger), logger)
}

// outputFlags registers --output and --format on cmd
func outputFlags(cmd *cobra.Command, target *common.CommandConfig) {
	cmd.Flags().StringVarP(&target.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&target.OutputFormat, "format", "", "Output format: json, text, or markdown (default from config)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveFormat applies the configured default format and validates it
func resolveFormat(cmd *cobra.Command, target *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	format, err := common.ResolveOutputFormat(target.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return err
	}
	target.OutputFormat = format
	return nil
}
