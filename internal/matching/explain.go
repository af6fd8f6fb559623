package matching

import (
	"fmt"
	"strings"
)

// ModelSignals are the classifier inputs and output reported alongside a score
type ModelSignals struct {
	Similarity    float64
	SkillOverlap  float64
	ExperienceGap float64
	Probability   float64
}

// Explanation is the structured form of a score rationale
type Explanation struct {
	Score    float64
	Matched  []string
	Missing  []string
	CVYears  float64
	JobYears float64
	Signals  *ModelSignals
}

// String renders the explanation. Output depends only on the fields, so identical
// inputs always produce identical text.
func (e Explanation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall Match Score: %.2f/100\n\n", e.Score)
	if len(e.Matched) > 0 {
		fmt.Fprintf(&b, "Key Skills Matched: %s\n", strings.Join(e.Matched, ", "))
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "Areas for Improvement (Missing): %s\n", strings.Join(e.Missing, ", "))
	}
	if e.CVYears >= e.JobYears {
		fmt.Fprintf(&b, "Strength: Your %.1f years of experience meets or exceeds the requirement (%.1f years).\n",
			e.CVYears, e.JobYears)
	} else {
		fmt.Fprintf(&b, "Gap: Experience level (%.1f years) is slightly below the target (%.1f years).\n",
			e.CVYears, e.JobYears)
	}
	if s := e.Signals; s != nil {
		fmt.Fprintf(&b, "Model Signals: similarity %.2f, skills %.2f, gap %.1f yrs, shortlist probability %.2f\n",
			s.Similarity, s.SkillOverlap, s.ExperienceGap, s.Probability)
	}
	return b.String()
}

// NewExplanation compares extracted skills and experience for one candidate
func NewExplanation(score float64, cvSkills, jobSkills SkillSet, cvYears, jobYears float64) Explanation {
	return Explanation{
		Score:    score,
		Matched:  cvSkills.Intersect(jobSkills).Sorted(),
		Missing:  jobSkills.Difference(cvSkills).Sorted(),
		CVYears:  cvYears,
		JobYears: jobYears,
	}
}

// Explain extracts features from both texts and renders the rationale for score
func (l *Lexicon) Explain(cvText, jobText string, score float64) string {
	return NewExplanation(score,
		l.ExtractSkills(cvText), l.ExtractSkills(jobText),
		ExtractExperienceYears(cvText), ExtractExperienceYears(jobText),
	).String()
}
