package formatters

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"skillsync/internal/matching"
	"skillsync/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry holds the default formatters
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "JobResponse", &JobTextFormatter{})
	registry.RegisterFormatter("markdown", "JobResponse", &JobMarkdownFormatter{})
	registry.RegisterFormatter("text", "ExtractionOutput", &ExtractionTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractionOutput", &ExtractionMarkdownFormatter{})
	registry.RegisterFormatter("text", "ClassifierSummary", &ClassifierTextFormatter{})
	registry.RegisterFormatter("markdown", "ClassifierSummary", &ClassifierMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	return slices.Sorted(maps.Keys(fr.formatters))
}

func deref(data any) any {
	switch v := data.(type) {
	case *types.JobResponse:
		if v != nil {
			return *v
		}
	case *types.ExtractionOutput:
		if v != nil {
			return *v
		}
	case *types.ClassifierSummary:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.JobResponse:
		return "JobResponse"
	case types.ExtractionOutput:
		return "ExtractionOutput"
	case types.ClassifierSummary:
		return "ClassifierSummary"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// JobTextFormatter prints a ranking as aligned plain text
type JobTextFormatter struct{}

func (f *JobTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobResponse)
	if !ok {
		return "", fmt.Errorf("expected JobResponse, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== RANKING FOR JOB %s ===\n\n", result.JobID)
	if len(result.Results) == 0 {
		out.WriteString("No candidates.\n")
		return out.String(), nil
	}

	for _, r := range result.Results {
		fmt.Fprintf(&out, "#%d  %-24s %6.2f  %s\n", r.Rank, r.CVID, r.Score, r.Status)
		for line := range strings.Lines(strings.TrimRight(r.Explanation, "\n")) {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(&out, "    %s\n", strings.TrimRight(line, "\n"))
			}
		}
	}
	fmt.Fprintf(&out, "\nShortlisted: %d of %d\n", countShortlisted(result.Results), len(result.Results))
	return out.String(), nil
}

func (f *JobTextFormatter) SupportedType() string {
	return "JobResponse"
}

// JobMarkdownFormatter renders a ranking as a markdown table
type JobMarkdownFormatter struct{}

func (f *JobMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobResponse)
	if !ok {
		return "", fmt.Errorf("expected JobResponse, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Ranking for job `%s`\n\n", result.JobID)
	if len(result.Results) == 0 {
		out.WriteString("_No candidates._\n")
		return out.String(), nil
	}

	out.WriteString("| Rank | CV | Score | Status | Explanation |\n")
	out.WriteString("|-----:|----|------:|--------|-------------|\n")
	for _, r := range result.Results {
		fmt.Fprintf(&out, "| %d | %s | %.2f | %s | %s |\n",
			r.Rank, escapeCell(r.CVID), r.Score, r.Status, escapeCell(r.Explanation))
	}
	fmt.Fprintf(&out, "\n**Shortlisted:** %d of %d\n", countShortlisted(result.Results), len(result.Results))
	return out.String(), nil
}

func (f *JobMarkdownFormatter) SupportedType() string {
	return "JobResponse"
}

// ExtractionTextFormatter prints the skills and experience found in a document
type ExtractionTextFormatter struct{}

func (f *ExtractionTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ExtractionOutput)
	if !ok {
		return "", fmt.Errorf("expected ExtractionOutput, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== EXTRACTION: %s ===\n", result.Source)
	if !result.Readable {
		out.WriteString("No readable text found.\n")
		return out.String(), nil
	}
	fmt.Fprintf(&out, "Characters: %d\n", result.Characters)
	fmt.Fprintf(&out, "Experience: %s\n", formatYears(result.ExperienceYears))
	fmt.Fprintf(&out, "Skills (%d):\n", len(result.Skills))
	for _, skill := range result.Skills {
		fmt.Fprintf(&out, "  - %s\n", skill)
	}
	return out.String(), nil
}

func (f *ExtractionTextFormatter) SupportedType() string {
	return "ExtractionOutput"
}

// ExtractionMarkdownFormatter renders extracted features as markdown
type ExtractionMarkdownFormatter struct{}

func (f *ExtractionMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ExtractionOutput)
	if !ok {
		return "", fmt.Errorf("expected ExtractionOutput, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Extraction: `%s`\n\n", result.Source)
	if !result.Readable {
		out.WriteString("_No readable text found._\n")
		return out.String(), nil
	}
	fmt.Fprintf(&out, "- **Characters:** %d\n", result.Characters)
	fmt.Fprintf(&out, "- **Experience:** %s\n\n", formatYears(result.ExperienceYears))
	fmt.Fprintf(&out, "## Skills (%d)\n\n", len(result.Skills))
	if len(result.Skills) == 0 {
		out.WriteString("_None recognised._\n")
	}
	for _, skill := range result.Skills {
		fmt.Fprintf(&out, "- %s\n", skill)
	}
	return out.String(), nil
}

func (f *ExtractionMarkdownFormatter) SupportedType() string {
	return "ExtractionOutput"
}

// ClassifierTextFormatter prints a classifier artifact summary
type ClassifierTextFormatter struct{}

func (f *ClassifierTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ClassifierSummary)
	if !ok {
		return "", fmt.Errorf("expected ClassifierSummary, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== CLASSIFIER ===\n")
	fmt.Fprintf(&out, "Source:          %s\n", result.Source)
	fmt.Fprintf(&out, "Kind:            %s\n", result.Kind)
	fmt.Fprintf(&out, "Version:         %s\n", result.Version)
	fmt.Fprintf(&out, "Embedding model: %s\n", orDash(result.EmbeddingModel))
	fmt.Fprintf(&out, "Trained at:      %s\n", orDash(result.TrainedAt))
	out.WriteString("\nWeights:\n")
	for i, column := range result.FeatureColumns {
		fmt.Fprintf(&out, "  %-20s %+.6f\n", column, coefficient(result.Coefficients, i))
	}
	fmt.Fprintf(&out, "  %-20s %+.6f\n", "intercept", result.Intercept)
	if len(result.Metrics) > 0 {
		out.WriteString("\nMetrics:\n")
		for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
			fmt.Fprintf(&out, "  %-20s %.4f\n", name, result.Metrics[name])
		}
	}
	return out.String(), nil
}

func (f *ClassifierTextFormatter) SupportedType() string {
	return "ClassifierSummary"
}

// ClassifierMarkdownFormatter renders a classifier artifact summary as markdown
type ClassifierMarkdownFormatter struct{}

func (f *ClassifierMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ClassifierSummary)
	if !ok {
		return "", fmt.Errorf("expected ClassifierSummary, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Classifier `%s`\n\n", result.Source)
	fmt.Fprintf(&out, "- **Kind:** %s\n", result.Kind)
	fmt.Fprintf(&out, "- **Version:** %s\n", result.Version)
	fmt.Fprintf(&out, "- **Embedding model:** %s\n", orDash(result.EmbeddingModel))
	fmt.Fprintf(&out, "- **Trained at:** %s\n\n", orDash(result.TrainedAt))

	out.WriteString("| Feature | Weight |\n|---------|-------:|\n")
	for i, column := range result.FeatureColumns {
		fmt.Fprintf(&out, "| %s | %+.6f |\n", column, coefficient(result.Coefficients, i))
	}
	fmt.Fprintf(&out, "| _intercept_ | %+.6f |\n", result.Intercept)

	if len(result.Metrics) > 0 {
		out.WriteString("\n## Metrics\n\n")
		for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
			fmt.Fprintf(&out, "- **%s:** %.4f\n", name, result.Metrics[name])
		}
	}
	return out.String(), nil
}

func (f *ClassifierMarkdownFormatter) SupportedType() string {
	return "ClassifierSummary"
}

func countShortlisted(results []types.CVResult) int {
	n := 0
	for _, r := range results {
		if r.Status == string(matching.StatusShortlisted) {
			n++
		}
	}
	return n
}

func formatYears(years float64) string {
	if years <= 0 {
		return "not stated"
	}
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%g years", years)
}

func coefficient(coefs []float64, i int) float64 {
	if i < len(coefs) {
		return coefs[i]
	}
	return 0
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escapeCell keeps pipes and newlines from breaking a markdown table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
