package matching

import "testing"

func TestExtractExperienceYears(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "empty", text: "", want: 0},
		{name: "no mention", text: "Enthusiastic developer", want: 0},
		{name: "plain", text: "5 years of experience", want: 5},
		{name: "plus", text: "8+ years building APIs", want: 8},
		{name: "range keeps lower bound", text: "3-6 years required", want: 3},
		{name: "singular", text: "1 year internship", want: 1},
		{name: "uppercase", text: "7 YEARS in industry", want: 7},
		{name: "maximum wins", text: "2 years at A, then 10 years at B", want: 10},
		{name: "number not followed by years", text: "Python 3 developer", want: 0},
		{name: "overflowing number skipped", text: "99999999999999999999999 years, 4 years", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractExperienceYears(tt.text); got != tt.want {
				t.Errorf("ExtractExperienceYears(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
