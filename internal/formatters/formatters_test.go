package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"skillsync/internal/types"
)

func sampleJob() types.JobResponse {
	return types.JobResponse{
		JobID: "backend-42",
		Results: []types.CVResult{
			{CVID: "alice.pdf", Score: 78.5, Rank: 1, Status: "Shortlisted", Explanation: "Strong alignment | python, django"},
			{CVID: "bob.pdf", Score: 0, Rank: 2, Status: "Not Shortlisted", Explanation: "No readable text could be extracted from the CV PDF."},
		},
	}
}

func TestRegistryFormatsJobResponse(t *testing.T) {
	registry := NewFormatterRegistry()
	job := sampleJob()

	tests := []struct {
		format string
		data   any
		want   []string
	}{
		{"text", job, []string{"=== RANKING FOR JOB backend-42 ===", "#1  alice.pdf", "78.50", "Shortlisted: 1 of 2"}},
		{"text", &job, []string{"#2  bob.pdf", "Not Shortlisted"}},
		{"markdown", job, []string{"# Ranking for job `backend-42`", "| 1 | alice.pdf | 78.50 | Shortlisted |", `Strong alignment \| python`, "**Shortlisted:** 1 of 2"}},
		{"json", job, []string{`"job_id": "backend-42"`, `"cv_id": "alice.pdf"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestJSONFormatterRoundTripsJob(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleJob(), "json")
	if err != nil {
		t.Fatal(err)
	}
	var back types.JobResponse
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if len(back.Results) != 2 || back.Results[0].Score != 78.5 {
		t.Errorf("unexpected decoded results: %+v", back.Results)
	}
}

func TestEmptyRanking(t *testing.T) {
	for _, format := range []string{"text", "markdown"} {
		out, err := GlobalRegistry.Format(types.JobResponse{JobID: "empty"}, format)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(strings.ToLower(out), "no candidates") {
			t.Errorf("%s output should mention no candidates:\n%s", format, out)
		}
	}
}

func TestExtractionFormatters(t *testing.T) {
	readable := types.ExtractionOutput{
		Source:          "cv.pdf",
		Readable:        true,
		Characters:      1200,
		Skills:          []string{"aws", "python"},
		ExperienceYears: 5,
	}
	unreadable := types.ExtractionOutput{Source: "scan.pdf"}

	tests := []struct {
		name   string
		format string
		data   types.ExtractionOutput
		want   []string
	}{
		{"text readable", "text", readable, []string{"Characters: 1200", "Experience: 5 years", "Skills (2):", "  - aws"}},
		{"markdown readable", "markdown", readable, []string{"# Extraction: `cv.pdf`", "- **Experience:** 5 years", "## Skills (2)", "- python"}},
		{"text unreadable", "text", unreadable, []string{"No readable text found."}},
		{"markdown unreadable", "markdown", unreadable, []string{"_No readable text found._"}},
		{"one year", "text", types.ExtractionOutput{Source: "x", Readable: true, ExperienceYears: 1}, []string{"Experience: 1 year\n"}},
		{"unknown years", "text", types.ExtractionOutput{Source: "x", Readable: true}, []string{"Experience: not stated"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GlobalRegistry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestClassifierFormatters(t *testing.T) {
	summary := types.ClassifierSummary{
		Source:         "models/shortlist.json",
		Kind:           "logistic_regression",
		Version:        "2.0",
		FeatureColumns: []string{"similarity", "skill_overlap", "experience_years"},
		Coefficients:   []float64{4.2, 2.5},
		Intercept:      -3.1,
		Metrics:        map[string]float64{"roc_auc": 0.91, "accuracy": 0.87},
	}

	text, err := GlobalRegistry.Format(summary, "text")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Kind:            logistic_regression", "Embedding model: -", "similarity           +4.200000", "experience_years     +0.000000", "intercept            -3.100000"} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "accuracy") > strings.Index(text, "roc_auc") {
		t.Error("metrics should be sorted by name")
	}

	md, err := GlobalRegistry.Format(&summary, "markdown")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Classifier `models/shortlist.json`", "| skill_overlap | +2.500000 |", "| _intercept_ | -3.100000 |", "- **roc_auc:** 0.9100"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown output missing %q:\n%s", want, md)
		}
	}
}

func TestRegistryErrors(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleJob(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := GlobalRegistry.Format(map[string]int{"a": 1}, "text"); err == nil {
		t.Error("expected error for text output of an unregistered type")
	}
	if _, err := (&JobTextFormatter{}).Format(types.ExtractionOutput{}); err == nil {
		t.Error("expected type mismatch error")
	}

	got := GlobalRegistry.GetSupportedFormats()
	want := []string{"json", "markdown", "text"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetSupportedFormats() = %v, want %v", got, want)
	}
}
