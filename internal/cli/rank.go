package cli

import (
	"context"

	"skillsync/internal/common"
	"skillsync/internal/types"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank <job-description-file> <cv-file>...",
	Short: "Rank CV files against a job description",
	Long: `Rank one or more CVs (PDF, text or markdown) against a job description file.

Every CV receives a score from 0 to 100, a rank, a shortlist status and a
one-line explanation. A CV with no extractable text scores 0 and is reported
as unreadable without affecting the others. CV ids are the file names.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &rankConfig)
	},
	RunE: runRank,
}

var rankConfig common.CommandConfig

func init() {
	outputFlags(rankCmd, &rankConfig)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rt, err := buildRankingRuntime(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Failed to close embedding provider", "error", err)
		}
	}()

	createInput := func(fp *common.FileProcessor, args []string) (types.JobRequest, error) {
		return fp.BuildJobRequest(args[0], args[1:])
	}

	logDetails := func(req types.JobRequest, cmdCfg common.CommandConfig) {
		logger.Info("Ranking CVs",
			"job_id", req.JobID,
			"candidates", len(req.CVs),
			"embedder", rt.service.ModelName(),
			"classifier", rt.classifier != nil,
			"format", cmdCfg.OutputFormat)
	}

	operation := func(ctx context.Context, req types.JobRequest) (*types.JobResponse, error) {
		return rt.engine.ProcessJob(ctx, req)
	}

	return common.RunCommand(cmd.Context(), newRunner(rt.extractor, logger), rankConfig, args, createInput, operation, logDetails)
}
