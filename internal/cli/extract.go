package cli

import (
	"context"
	"strings"
	"unicode/utf8"

	"skillsync/internal/common"
	"skillsync/internal/errors"
	"skillsync/internal/matching"
	"skillsync/internal/textextract"
	"skillsync/internal/types"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Show the skills and experience found in a CV or job description",
	Long: `Extract text from a PDF, text or markdown document and report the lexicon
skills and years of experience the ranking engine would see. Useful for checking
why a CV scored the way it did, or whether a scanned PDF has a text layer.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &extractConfig)
	},
	RunE: runExtract,
}

var extractConfig common.CommandConfig

func init() {
	outputFlags(extractCmd, &extractConfig)
}

type extractInput struct {
	source string
	text   string
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	lexicon, err := loadLexicon(cfg.Matching.LexiconFile, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load skill lexicon", err)
	}
	if lexicon == nil {
		lexicon = matching.DefaultLexicon()
	}

	createInput := func(fp *common.FileProcessor, args []string) (extractInput, error) {
		text, err := fp.ReadDocument(args[0])
		if err != nil {
			return extractInput{}, err
		}
		return extractInput{source: args[0], text: text}, nil
	}

	logDetails := func(in extractInput, cmdCfg common.CommandConfig) {
		logger.Debug("Extracting features", "source", in.source, "format", cmdCfg.OutputFormat)
	}

	operation := func(_ context.Context, in extractInput) (types.ExtractionOutput, error) {
		return extractFeatures(in.source, in.text, lexicon), nil
	}

	extractor := textextract.New(cfg.App.MaxFileSize, logger)
	return common.RunCommand(cmd.Context(), newRunner(extractor, logger), extractConfig, args, createInput, operation, logDetails)
}

// extractFeatures reports what the scorer extracts from text. Blank text is
// unreadable.
func extractFeatures(source, text string, lexicon *matching.Lexicon) types.ExtractionOutput {
	out := types.ExtractionOutput{Source: source, Skills: []string{}}
	if strings.TrimSpace(text) == "" {
		return out
	}
	out.Readable = true
	out.Characters = utf8.RuneCountInString(text)
	out.Skills = lexicon.ExtractSkills(text).Sorted()
	out.ExperienceYears = matching.ExtractExperienceYears(text)
	return out
}
