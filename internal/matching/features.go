package matching

// SkillOverlap is the Jaccard similarity of two skill sets. Two empty sets have
// no information on either side and score 0.
func SkillOverlap(a, b SkillSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	shared := len(a.Intersect(b))
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}

// ExperienceGap is cvYears - jobYears. Positive favours the candidate.
func ExperienceGap(cvYears, jobYears float64) float64 {
	return cvYears - jobYears
}
