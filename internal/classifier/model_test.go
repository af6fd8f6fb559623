package classifier

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/internal/errors"
	"skillsync/internal/matching"
)

const validArtifact = `{
  "schema": "skillsync.classifier",
  "version": "2.0",
  "kind": "logistic_regression",
  "embeddingModel": "text-embedding-004",
  "featureColumns": ["cosine_similarity", "skill_overlap", "experience_gap"],
  "coefficients": [4.0, 2.0, 0.1],
  "intercept": -3.0
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classifier.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseArtifactValid(t *testing.T) {
	a, err := ParseArtifact([]byte(validArtifact))
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-004", a.EmbeddingModel)
	assert.Equal(t, []float64{4, 2, 0.1}, a.Coefficients)
}

func TestParseArtifactRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "not json",
			content: "{",
			wantMsg: "not valid JSON",
		},
		{
			name:    "wrong tag",
			content: strings.Replace(validArtifact, `"skillsync.classifier"`, `"sklearn.pickle"`, 1),
			wantMsg: "unrecognised artifact schema",
		},
		{
			name:    "unknown version",
			content: strings.Replace(validArtifact, `"2.0"`, `"1.0"`, 1),
			wantMsg: "unsupported artifact version",
		},
		{
			name:    "unknown kind",
			content: strings.Replace(validArtifact, `"logistic_regression"`, `"random_forest"`, 1),
			wantMsg: "unsupported classifier kind",
		},
		{
			name:    "reordered features",
			content: strings.Replace(validArtifact, `["cosine_similarity", "skill_overlap", "experience_gap"]`, `["skill_overlap", "cosine_similarity", "experience_gap"]`, 1),
			wantMsg: "do not match required order",
		},
		{
			name:    "wrong coefficient count",
			content: strings.Replace(validArtifact, `[4.0, 2.0, 0.1]`, `[4.0, 2.0]`, 1),
			wantMsg: "schema validation",
		},
		{
			name:    "missing intercept",
			content: strings.Replace(validArtifact, `,
  "intercept": -3.0`, "", 1),
			wantMsg: "intercept",
		},
		{
			name:    "unknown field",
			content: strings.Replace(validArtifact, `"kind"`, `"classifier": "blob", "kind"`, 1),
			wantMsg: "schema validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArtifact([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestPredictProba(t *testing.T) {
	a, err := ParseArtifact([]byte(validArtifact))
	require.NoError(t, err)
	m := New(a, "inline")

	p, err := m.PredictProba(matching.NewFeatureVector(0.5, 0.5, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = m.PredictProba(matching.NewFeatureVector(1, 1, 10))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-4)), p, 1e-12)

	p, err = m.PredictProba(matching.NewFeatureVector(-1, 0, -1e6))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)

	_, err = m.PredictProba(matching.NewFeatureVector(math.NaN(), 0, 0))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScoring))
}

func TestLoad(t *testing.T) {
	logger := errors.Discard()

	t.Run("no path configured", func(t *testing.T) {
		m, err := Load("", false, "", logger)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("no path but required", func(t *testing.T) {
		_, err := Load("", true, "", logger)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("missing file is optional", func(t *testing.T) {
		m, err := Load(filepath.Join(t.TempDir(), "absent.json"), false, "", logger)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("missing file when required", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"), true, "", logger)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeFileNotFound, errors.CodeOf(err))
	})

	t.Run("rejected artifact is never optional", func(t *testing.T) {
		path := writeArtifact(t, strings.Replace(validArtifact, `"2.0"`, `"9.9"`, 1))
		_, err := Load(path, false, "", logger)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeClassifierRejected, errors.CodeOf(err))
	})

	t.Run("valid artifact", func(t *testing.T) {
		path := writeArtifact(t, validArtifact)
		m, err := Load(path, true, "other-model", logger)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, path, m.Source())
		assert.Equal(t, KindLogisticRegression, m.Artifact().Kind)
	})
}
