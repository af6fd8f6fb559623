package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/internal/errors"
)

func TestSkillOverlap(t *testing.T) {
	a := NewSkillSet("python", "django", "aws")
	b := NewSkillSet("python", "docker")

	assert.InDelta(t, 0.25, SkillOverlap(a, b), 1e-12)
	assert.Equal(t, SkillOverlap(a, b), SkillOverlap(b, a))
	assert.Equal(t, 1.0, SkillOverlap(a, a))
	assert.Equal(t, 0.0, SkillOverlap(NewSkillSet(), NewSkillSet()))
	assert.Equal(t, 0.0, SkillOverlap(a, NewSkillSet()))
}

func TestExperienceGap(t *testing.T) {
	assert.Equal(t, 2.0, ExperienceGap(7, 5))
	assert.Equal(t, -5.0, ExperienceGap(0, 5))
}

func TestSimilarity(t *testing.T) {
	sim, err := Similarity(EmbeddingVector{1, 0}, EmbeddingVector{0.6, 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, sim, 1e-12)

	_, err = Similarity(EmbeddingVector{1, 0}, EmbeddingVector{1, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScoring))

	_, err = Similarity(nil, nil)
	require.Error(t, err)
}

func TestNormalizedScore(t *testing.T) {
	assert.Equal(t, 0.0, NormalizedScore(-1))
	assert.Equal(t, 50.0, NormalizedScore(0))
	assert.Equal(t, 100.0, NormalizedScore(1))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{100.0000001, 100},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
