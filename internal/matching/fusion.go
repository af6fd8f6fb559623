package matching

import (
	"fmt"
	"math"

	"skillsync/internal/errors"
)

// Classifier estimates the probability that a candidate should be shortlisted.
// Implementations must be safe for concurrent use.
type Classifier interface {
	PredictProba(features FeatureVector) (float64, error)
}

// Fusion is the result of combining the base score with an optional classifier
type Fusion struct {
	Features    FeatureVector
	BaseScore   float64
	Probability float64
	Classified  bool
	Score       float64
}

// Fuse blends the base score with the classifier probability using equal weights.
// A nil classifier leaves the base score unchanged. A probability outside [0, 1]
// is reported as an error rather than clamped.
func Fuse(features FeatureVector, clf Classifier) (Fusion, error) {
	base := NormalizedScore(features.Similarity())
	out := Fusion{Features: features, BaseScore: base, Score: base}
	if clf == nil {
		return out, nil
	}

	p, err := clf.PredictProba(features)
	if err != nil {
		return Fusion{}, errors.NewScoringError(errors.ErrCodeClassifierRejected, "classifier failed to score features", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Fusion{}, errors.NewScoringError(errors.ErrCodeClassifierOutOfRange,
			fmt.Sprintf("classifier returned probability %v outside [0, 1]", p), nil)
	}

	out.Probability = p
	out.Classified = true
	out.Score = (base + p*100.0) / 2.0
	return out, nil
}

// Clamp restricts a score to [0, 100]. NaN maps to 0.
func Clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}
