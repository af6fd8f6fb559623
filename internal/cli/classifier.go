package cli

import (
	"context"

	"skillsync/internal/classifier"
	"skillsync/internal/common"
	"skillsync/internal/errors"
	"skillsync/internal/textextract"
	"skillsync/internal/types"

	"github.com/spf13/cobra"
)

var classifierCmd = &cobra.Command{
	Use:   "classifier [artifact-file]",
	Short: "Validate and describe a shortlist classifier artifact",
	Long: `Load a classifier artifact, validate it against the artifact schema and
print its feature weights and training metrics. Without an argument the
configured classifier.path is used.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &classifierConfig)
	},
	RunE: runClassifier,
}

var classifierConfig common.CommandConfig

func init() {
	outputFlags(classifierCmd, &classifierConfig)
}

func runClassifier(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if len(args) == 0 {
		args = []string{cfg.Classifier.Path}
	}

	createInput := func(_ *common.FileProcessor, args []string) (string, error) {
		return args[0], nil
	}

	operation := func(_ context.Context, path string) (types.ClassifierSummary, error) {
		if path == "" {
			return types.ClassifierSummary{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"no classifier artifact given and classifier.path is not configured", nil)
		}
		model, err := classifier.LoadFile(path)
		if err != nil {
			return types.ClassifierSummary{}, err
		}
		return summarizeClassifier(model), nil
	}

	logDetails := func(path string, _ common.CommandConfig) {
		logger.Debug("Loading classifier artifact", "path", path)
	}

	extractor := textextract.New(cfg.App.MaxFileSize, logger)
	return common.RunCommand(cmd.Context(), newRunner(extractor, logger), classifierConfig, args, createInput, operation, logDetails)
}

func summarizeClassifier(model *classifier.Model) types.ClassifierSummary {
	a := model.Artifact()
	return types.ClassifierSummary{
		Source:         model.Source(),
		Kind:           a.Kind,
		Version:        a.Version,
		EmbeddingModel: a.EmbeddingModel,
		TrainedAt:      a.TrainedAt,
		FeatureColumns: a.FeatureColumns,
		Coefficients:   a.Coefficients,
		Intercept:      a.Intercept,
		Metrics:        a.Metrics,
	}
}
