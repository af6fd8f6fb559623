package matching

import "sort"

// Scored is one candidate's clamped score and explanation, in input order
type Scored struct {
	CandidateID string
	Score       float64
	Explanation string
	Degraded    bool
}

// Rank sorts candidates by score descending. Ties keep their input order.
// Ranks are 1-based positions in the sorted list.
func Rank(scored []Scored) []MatchResult {
	results := make([]MatchResult, len(scored))
	for i, s := range scored {
		results[i] = MatchResult{
			CandidateID: s.CandidateID,
			Score:       Clamp(s.Score),
			Explanation: s.Explanation,
			Degraded:    s.Degraded,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	for i := range results {
		results[i].Rank = i + 1
		results[i].Status = StatusFor(results[i].Score)
	}
	return results
}

// StatusFor applies the shortlist threshold
func StatusFor(score float64) Status {
	if score >= ShortlistThreshold {
		return StatusShortlisted
	}
	return StatusNotShortlisted
}
