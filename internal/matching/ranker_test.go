package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersAndAssignsStatus(t *testing.T) {
	results := Rank([]Scored{
		{CandidateID: "a", Score: 50},
		{CandidateID: "b", Score: 70},
		{CandidateID: "c", Score: 70},
		{CandidateID: "d", Score: 60},
		{CandidateID: "e", Score: 0, Degraded: true},
	})

	require.Len(t, results, 5)
	wantOrder := []string{"b", "c", "d", "a", "e"}
	wantStatus := []Status{StatusShortlisted, StatusShortlisted, StatusShortlisted, StatusNotShortlisted, StatusNotShortlisted}
	for i, r := range results {
		assert.Equal(t, wantOrder[i], r.CandidateID)
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, wantStatus[i], r.Status, "status of %s", r.CandidateID)
	}
	assert.True(t, results[4].Degraded)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	in := []Scored{
		{CandidateID: "first", Score: 42},
		{CandidateID: "second", Score: 42},
		{CandidateID: "third", Score: 42},
	}
	for range 5 {
		results := Rank(in)
		assert.Equal(t, "first", results[0].CandidateID)
		assert.Equal(t, "second", results[1].CandidateID)
		assert.Equal(t, "third", results[2].CandidateID)
	}
}

func TestRankClampsOutOfRangeScores(t *testing.T) {
	results := Rank([]Scored{
		{CandidateID: "low", Score: -3},
		{CandidateID: "high", Score: 130},
	})
	assert.Equal(t, 100.0, results[0].Score)
	assert.Equal(t, 0.0, results[1].Score)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestRankPermutationProperty(t *testing.T) {
	scores := []float64{12.5, 99, 33, 33, 71.2, 0, 60, 59.99}
	in := make([]Scored, len(scores))
	for i, s := range scores {
		in[i] = Scored{CandidateID: string(rune('a' + i)), Score: s}
	}

	results := Rank(in)
	seen := make(map[int]bool)
	for i, r := range results {
		assert.False(t, seen[r.Rank], "duplicate rank %d", r.Rank)
		seen[r.Rank] = true
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, results[i-1].Score)
		}
	}
	for rank := 1; rank <= len(scores); rank++ {
		assert.True(t, seen[rank], "missing rank %d", rank)
	}
}
