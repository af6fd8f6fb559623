package classifier

import (
	"fmt"
	"math"
	"os"

	"skillsync/internal/errors"
	"skillsync/internal/matching"
)

// Model is a logistic regression over the fixed feature order. It is immutable
// after loading and safe for concurrent use.
type Model struct {
	artifact  Artifact
	weights   [3]float64
	intercept float64
	source    string
}

// New builds a model from a checked artifact
func New(a *Artifact, source string) *Model {
	m := &Model{artifact: *a, intercept: a.Intercept, source: source}
	copy(m.weights[:], a.Coefficients)
	return m
}

// PredictProba returns the shortlist probability for features
func (m *Model) PredictProba(features matching.FeatureVector) (float64, error) {
	z := m.intercept
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.NewScoringError(errors.ErrCodeMalformedFeatures,
				fmt.Sprintf("feature %s is not finite", matching.FeatureColumns[i]), nil)
		}
		z += m.weights[i] * f
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Artifact returns a copy of the loaded artifact
func (m *Model) Artifact() Artifact {
	a := m.artifact
	a.FeatureColumns = append([]string(nil), m.artifact.FeatureColumns...)
	a.Coefficients = append([]float64(nil), m.artifact.Coefficients...)
	return a
}

// Source is the path the model was loaded from
func (m *Model) Source() string {
	return m.source
}

// LoadFile reads and validates an artifact from path
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "classifier artifact not found", err).
				WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read classifier artifact", err).
			WithContext("path", path)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, err
	}
	return New(a, path), nil
}

// Load resolves the configured classifier at startup. A missing artifact is a
// valid state and yields a nil model unless required is set. An artifact that
// exists but is rejected is always an error.
func Load(path string, required bool, embeddingModel string, logger *errors.Logger) (*Model, error) {
	if path == "" {
		if required {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "classifier is required but no path is configured", nil)
		}
		logger.Info("No classifier configured, using similarity-only scoring")
		return nil, nil
	}

	model, err := LoadFile(path)
	if err != nil {
		if !required && errors.CodeOf(err) == errors.ErrCodeFileNotFound {
			logger.Warn("Classifier artifact not found, using similarity-only scoring", "path", path)
			return nil, nil
		}
		return nil, err
	}

	if embeddingModel != "" && model.artifact.EmbeddingModel != "" && model.artifact.EmbeddingModel != embeddingModel {
		logger.Warn("Classifier was trained on a different embedding model",
			"artifact_model", model.artifact.EmbeddingModel,
			"configured_model", embeddingModel)
	}
	logger.Info("Loaded classifier",
		"path", path,
		"kind", model.artifact.Kind,
		"version", model.artifact.Version)
	return model, nil
}
