package cli

import (
	"fmt"

	"skillsync/internal/ai"
	"skillsync/internal/classifier"

	"github.com/spf13/cobra"
)

var (
	// Version information - can be set during build with ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information for skillsync",
	// No configuration needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "skillsync version %s\n", Version)
		fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Build date: %s\n", BuildDate)
		fmt.Fprintf(out, "Classifier artifacts: %s v%s (%s)\n", classifier.SchemaTag, classifier.SupportedVersion, classifier.KindLogisticRegression)
		fmt.Fprintf(out, "Offline embedder: %s\n", ai.LocalModelName)
	},
}
