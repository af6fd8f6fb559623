package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/internal/classifier"
	"skillsync/internal/common"
	"skillsync/internal/config"
	"skillsync/internal/matching"
	"skillsync/internal/types"
)

const localConfig = `embedding:
  provider: local
  dimensions: 256
app:
  logLevel: error
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRankCommand(t *testing.T) {
	t.Cleanup(func() { rankConfig = common.CommandConfig{} })
	dir := t.TempDir()
	cfgFile := writeTestFile(t, dir, "config.yaml", localConfig)
	jobText := "Backend engineer with 5+ years of Go, Kubernetes, PostgreSQL and AWS experience."
	job := writeTestFile(t, dir, "backend.txt", jobText)
	match := writeTestFile(t, dir, "match.txt", jobText)
	blank := writeTestFile(t, dir, "blank.txt", "   ")
	out := filepath.Join(dir, "out", "ranking.json")

	_, err := execute(t, "rank", "--config", cfgFile, "--format", "json", "-o", out, job, blank, match)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var resp types.JobResponse
	require.NoError(t, json.Unmarshal(content, &resp))

	assert.Equal(t, "backend", resp.JobID)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "match.txt", resp.Results[0].CVID)
	assert.Equal(t, 1, resp.Results[0].Rank)
	assert.Greater(t, resp.Results[0].Score, 0.0)

	assert.Equal(t, "blank.txt", resp.Results[1].CVID)
	assert.Equal(t, 2, resp.Results[1].Rank)
	assert.Equal(t, 0.0, resp.Results[1].Score)
	assert.Equal(t, string(matching.StatusNotShortlisted), resp.Results[1].Status)
	assert.Equal(t, matching.UnreadableExplanation, resp.Results[1].Explanation)
}

func TestRankCommandRejectsUnknownFormat(t *testing.T) {
	t.Cleanup(func() { rankConfig = common.CommandConfig{} })
	dir := t.TempDir()
	cfgFile := writeTestFile(t, dir, "config.yaml", localConfig)
	job := writeTestFile(t, dir, "job.txt", "Go")
	cv := writeTestFile(t, dir, "cv.txt", "Go")

	_, err := execute(t, "rank", "--config", cfgFile, "--format", "xml", job, cv)
	assert.ErrorContains(t, err, "unsupported output format 'xml'")
}

func TestExtractFeatures(t *testing.T) {
	lexicon := matching.DefaultLexicon()

	tests := []struct {
		name         string
		text         string
		wantReadable bool
		wantYears    float64
	}{
		{"blank", " \n\t", false, 0},
		{"with experience", "Python developer with 6 years of experience", true, 6},
		{"no experience stated", "Python developer", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFeatures("cv.txt", tt.text, lexicon)
			assert.Equal(t, "cv.txt", got.Source)
			assert.Equal(t, tt.wantReadable, got.Readable)
			assert.Equal(t, tt.wantYears, got.ExperienceYears)
			assert.NotNil(t, got.Skills)
			if tt.wantReadable {
				assert.Contains(t, got.Skills, "python")
				assert.Equal(t, len([]rune(tt.text)), got.Characters)
			}
		})
	}
}

func TestApplyServeFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().StringP("port", "p", "", "")
	cmd.Flags().String("host", "", "")
	cmd.Flags().String("tls-mode", "", "")
	cmd.Flags().String("cert-file", "", "")
	cmd.Flags().String("key-file", "", "")
	cmd.Flags().String("ca-file", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"-p", "9443", "--tls-mode", "server", "--cert-file", "/tls/tls.crt"}))

	cfg := &config.Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8080"
	cfg.Server.TLS.KeyFile = "/etc/key.pem"

	applyServeFlags(cmd, cfg)

	assert.Equal(t, "9443", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset flags keep the configured value")
	assert.Equal(t, "server", cfg.Server.TLS.Mode)
	assert.Equal(t, "/tls/tls.crt", cfg.Server.TLS.CertFile)
	assert.Equal(t, "/etc/key.pem", cfg.Server.TLS.KeyFile)
}

func TestSummarizeClassifier(t *testing.T) {
	model := classifier.New(&classifier.Artifact{
		Schema:         classifier.SchemaTag,
		Version:        classifier.SupportedVersion,
		Kind:           classifier.KindLogisticRegression,
		EmbeddingModel: "text-embedding-004",
		FeatureColumns: []string{"similarity", "skill_overlap", "experience_gap"},
		Coefficients:   []float64{3, 2, -1},
		Intercept:      -1.5,
		Metrics:        map[string]float64{"roc_auc": 0.88},
	}, "models/clf.json")

	got := summarizeClassifier(model)
	assert.Equal(t, "models/clf.json", got.Source)
	assert.Equal(t, classifier.KindLogisticRegression, got.Kind)
	assert.Equal(t, []float64{3, 2, -1}, got.Coefficients)
	assert.Equal(t, -1.5, got.Intercept)
	assert.Equal(t, 0.88, got.Metrics["roc_auc"])
}

func TestVersionCommandSkipsConfig(t *testing.T) {
	t.Setenv("SKILLSYNC_EMBEDDING_PROVIDER", "nonsense")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "skillsync version dev")
	assert.Contains(t, out, classifier.SchemaTag)
}
