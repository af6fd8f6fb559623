// Package matching scores candidate texts against a job description and ranks them.
//
// Everything in this package is pure and safe for concurrent use once constructed.
// The only collaborators are an embedding vector per text, computed elsewhere, and an
// optional Classifier.
package matching

import (
	"maps"
	"slices"
)

// ShortlistThreshold is the minimum final score for a Shortlisted status
const ShortlistThreshold = 60.0

// UnreadableExplanation is reported for candidates whose text could not be extracted
const UnreadableExplanation = "No readable text could be extracted from the CV PDF."

// Status is the shortlist decision for a ranked candidate
type Status string

const (
	StatusShortlisted    Status = "Shortlisted"
	StatusNotShortlisted Status = "Not Shortlisted"
)

// SkillSet is a set of canonical lowercase skill terms
type SkillSet map[string]struct{}

// NewSkillSet builds a set from the given terms
func NewSkillSet(terms ...string) SkillSet {
	s := make(SkillSet, len(terms))
	for _, t := range terms {
		s[t] = struct{}{}
	}
	return s
}

// Contains reports whether term is in the set
func (s SkillSet) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Sorted returns the terms in lexicographic order
func (s SkillSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Intersect returns terms present in both sets
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := make(SkillSet)
	for t := range s {
		if other.Contains(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// Difference returns terms of s that are missing from other
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := make(SkillSet)
	for t := range s {
		if !other.Contains(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// EmbeddingVector is a unit-norm text embedding
type EmbeddingVector []float64

// FeatureColumns names the FeatureVector slots in order. Trained classifier
// artifacts must declare exactly this order.
var FeatureColumns = [3]string{"cosine_similarity", "skill_overlap", "experience_gap"}

// FeatureVector is (similarity, skillOverlap, experienceGap) in that fixed order.
// The array length is part of the type so a wrong-length vector cannot be built.
type FeatureVector [3]float64

// NewFeatureVector places each feature in its slot
func NewFeatureVector(similarity, skillOverlap, experienceGap float64) FeatureVector {
	return FeatureVector{similarity, skillOverlap, experienceGap}
}

func (f FeatureVector) Similarity() float64    { return f[0] }
func (f FeatureVector) SkillOverlap() float64  { return f[1] }
func (f FeatureVector) ExperienceGap() float64 { return f[2] }

// MatchResult is the ranked outcome for one candidate. Score is unrounded.
type MatchResult struct {
	CandidateID string
	Score       float64
	Rank        int
	Status      Status
	Explanation string
	Degraded    bool
}
