// Package classifier loads the trained shortlist classifier used to blend scores.
package classifier

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"skillsync/internal/errors"
	"skillsync/internal/matching"
)

// Artifact tag values accepted at load time
const (
	SchemaTag              = "skillsync.classifier"
	SupportedVersion       = "2.0"
	KindLogisticRegression = "logistic_regression"
)

//go:embed artifact.schema.json
var artifactSchema string

// Artifact is the on-disk classifier document
type Artifact struct {
	Schema         string             `json:"schema"`
	Version        string             `json:"version"`
	Kind           string             `json:"kind"`
	EmbeddingModel string             `json:"embeddingModel,omitempty"`
	TrainedAt      string             `json:"trainedAt,omitempty"`
	FeatureColumns []string           `json:"featureColumns"`
	Coefficients   []float64          `json:"coefficients"`
	Intercept      float64            `json:"intercept"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// FieldError is a single schema violation
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation found in an artifact
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("classifier artifact failed schema validation:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %s: %s", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ParseArtifact validates raw JSON against the artifact schema, then checks the
// tag, version, kind and feature order. Anything unrecognised is rejected.
func ParseArtifact(data []byte) (*Artifact, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(artifactSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "classifier artifact is not valid JSON", err)
	}
	if !result.Valid() {
		verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, errors.NewValidationError(errors.ErrCodeClassifierRejected, "classifier artifact rejected", verr)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to decode classifier artifact", err)
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) check() error {
	reject := func(msg string) error {
		return errors.NewValidationError(errors.ErrCodeClassifierRejected, msg, nil)
	}
	if a.Schema != SchemaTag {
		return reject(fmt.Sprintf("unrecognised artifact schema %q, want %q", a.Schema, SchemaTag))
	}
	if a.Version != SupportedVersion {
		return reject(fmt.Sprintf("unsupported artifact version %q, want %q", a.Version, SupportedVersion))
	}
	if a.Kind != KindLogisticRegression {
		return reject(fmt.Sprintf("unsupported classifier kind %q", a.Kind))
	}
	if !slices.Equal(a.FeatureColumns, matching.FeatureColumns[:]) {
		return reject(fmt.Sprintf("feature columns %v do not match required order %v",
			a.FeatureColumns, matching.FeatureColumns))
	}
	return nil
}
