package matching

import (
	"regexp"
	"strconv"
	"strings"
)

// Matches "5 years", "5+ years", "5-7 years" and "1 year". Only the leading
// number is captured, so a range reports its lower bound.
var experiencePattern = regexp.MustCompile(`(\d+)\+?\s*-?\s*(?:\d+)?\s*years?`)

// ExtractExperienceYears returns the largest year count stated in text, or 0
// when there is none. A stated zero and no statement are indistinguishable.
func ExtractExperienceYears(text string) float64 {
	if text == "" {
		return 0
	}
	best := 0
	for _, m := range experiencePattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		best = max(best, n)
	}
	return float64(best)
}
