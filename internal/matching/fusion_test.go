package matching

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/internal/errors"
)

type fixedClassifier struct {
	p    float64
	err  error
	seen []FeatureVector
}

func (f *fixedClassifier) PredictProba(features FeatureVector) (float64, error) {
	f.seen = append(f.seen, features)
	return f.p, f.err
}

func TestFuseWithoutClassifier(t *testing.T) {
	got, err := Fuse(NewFeatureVector(0.6, 1, 0), nil)
	require.NoError(t, err)
	assert.False(t, got.Classified)
	assert.InDelta(t, 80.0, got.BaseScore, 1e-9)
	assert.Equal(t, got.BaseScore, got.Score)
}

func TestFuseWithClassifier(t *testing.T) {
	clf := &fixedClassifier{p: 0.4}
	features := NewFeatureVector(0.6, 0.5, -2)

	got, err := Fuse(features, clf)
	require.NoError(t, err)
	assert.True(t, got.Classified)
	assert.InDelta(t, (80.0+40.0)/2, got.Score, 1e-9)
	require.Len(t, clf.seen, 1)
	assert.Equal(t, FeatureVector{0.6, 0.5, -2}, clf.seen[0])
}

func TestFuseRejectsBadProbability(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01, math.NaN()} {
		t.Run(fmt.Sprint(p), func(t *testing.T) {
			_, err := Fuse(NewFeatureVector(0, 0, 0), &fixedClassifier{p: p})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeScoring))
		})
	}
}

func TestFusePropagatesClassifierError(t *testing.T) {
	_, err := Fuse(NewFeatureVector(0, 0, 0), &fixedClassifier{err: fmt.Errorf("model exploded")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model exploded")
}
