package matching

import (
	"strings"
)

// JobProfile holds the features of a job description, computed once per job
type JobProfile struct {
	Text      string
	Skills    SkillSet
	Years     float64
	Embedding EmbeddingVector
}

// Candidate is one résumé to score. Embedding is ignored when Text is unreadable.
type Candidate struct {
	ID        string
	Text      string
	Embedding EmbeddingVector
}

// Readable reports whether text carries anything to score
func Readable(text string) bool {
	return strings.TrimSpace(text) != ""
}

// Scorer runs the per-candidate pipeline: extract, compare, fuse, clamp, explain.
// It holds only read-only collaborators and is safe for concurrent use.
type Scorer struct {
	lexicon    *Lexicon
	classifier Classifier
}

// NewScorer creates a scorer. A nil lexicon selects the default; a nil
// classifier selects similarity-only scoring.
func NewScorer(lexicon *Lexicon, classifier Classifier) *Scorer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Scorer{lexicon: lexicon, classifier: classifier}
}

// Lexicon returns the skill lexicon in use
func (s *Scorer) Lexicon() *Lexicon {
	return s.lexicon
}

// HasClassifier reports whether scores are blended with a classifier
func (s *Scorer) HasClassifier() bool {
	return s.classifier != nil
}

// Profile extracts the job-side features
func (s *Scorer) Profile(text string, embedding EmbeddingVector) JobProfile {
	return JobProfile{
		Text:      text,
		Skills:    s.lexicon.ExtractSkills(text),
		Years:     ExtractExperienceYears(text),
		Embedding: embedding,
	}
}

// Score computes the clamped score and explanation for one candidate.
// Unreadable candidates score exactly 0 with a fixed message. Errors are only
// returned for malformed input, which must fail the job.
func (s *Scorer) Score(job JobProfile, c Candidate) (Scored, error) {
	if !Readable(c.Text) {
		return Scored{
			CandidateID: c.ID,
			Score:       Clamp(0),
			Explanation: UnreadableExplanation,
			Degraded:    true,
		}, nil
	}

	sim, err := Similarity(c.Embedding, job.Embedding)
	if err != nil {
		return Scored{}, err
	}

	cvSkills := s.lexicon.ExtractSkills(c.Text)
	cvYears := ExtractExperienceYears(c.Text)
	features := NewFeatureVector(sim, SkillOverlap(cvSkills, job.Skills), ExperienceGap(cvYears, job.Years))

	fused, err := Fuse(features, s.classifier)
	if err != nil {
		return Scored{}, err
	}
	score := Clamp(fused.Score)

	explanation := NewExplanation(score, cvSkills, job.Skills, cvYears, job.Years)
	if fused.Classified {
		explanation.Signals = &ModelSignals{
			Similarity:    features.Similarity(),
			SkillOverlap:  features.SkillOverlap(),
			ExperienceGap: features.ExperienceGap(),
			Probability:   fused.Probability,
		}
	}

	return Scored{
		CandidateID: c.ID,
		Score:       score,
		Explanation: explanation.String(),
	}, nil
}
