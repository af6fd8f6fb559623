package types

// CVInput is one candidate in a job request. Text, when set, is used as-is;
// otherwise the document at FilePath is read.
type CVInput struct {
	CVID     string `json:"cv_id" validate:"required,max=128"`
	FilePath string `json:"file_path,omitempty" validate:"required_without=Text"`
	Text     string `json:"text,omitempty"`
}

// JobRequest asks for a set of CVs to be ranked against one job description
type JobRequest struct {
	JobID              string    `json:"job_id" validate:"required,max=128"`
	JobDescriptionText string    `json:"job_description_text" validate:"required"`
	CVs                []CVInput `json:"cvs" validate:"required,min=1,dive"`
}

// CVResult is the ranked outcome for one CV
type CVResult struct {
	CVID        string  `json:"cv_id"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	Status      string  `json:"status"`
	Explanation string  `json:"explanation"`
}

// JobResponse lists results in rank order
type JobResponse struct {
	JobID   string     `json:"job_id"`
	Results []CVResult `json:"results"`
}

// ExtractionOutput reports the lexical features found in one document
type ExtractionOutput struct {
	Source          string   `json:"source"`
	Readable        bool     `json:"readable"`
	Characters      int      `json:"characters"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experienceYears"`
}

// ClassifierSummary describes a loaded classifier artifact
type ClassifierSummary struct {
	Source         string             `json:"source"`
	Kind           string             `json:"kind"`
	Version        string             `json:"version"`
	EmbeddingModel string             `json:"embeddingModel,omitempty"`
	TrainedAt      string             `json:"trainedAt,omitempty"`
	FeatureColumns []string           `json:"featureColumns"`
	Coefficients   []float64          `json:"coefficients"`
	Intercept      float64            `json:"intercept"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}
