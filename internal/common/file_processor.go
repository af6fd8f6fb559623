package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"skillsync/internal/errors"
	"skillsync/internal/textextract"
	"skillsync/internal/types"
	"skillsync/internal/utils"
)

// FileProcessor reads job descriptions and CVs from disk and writes command output
type FileProcessor struct {
	extractor *textextract.Extractor
	logger    *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(extractor *textextract.Extractor, logger *errors.Logger) *FileProcessor {
	return &FileProcessor{extractor: extractor, logger: logger}
}

// ReadDocument extracts the text of a PDF, text or markdown file
func (fp *FileProcessor) ReadDocument(filename string) (string, error) {
	if !utils.IsDocumentFile(filename) {
		fp.logger.Warn("File may not be a supported document", "filename", filename)
	}
	return fp.extractor.ReadFile(filename)
}

// BuildJobRequest reads the job description and lists every CV by path. CV
// ids are file base names, falling back to the full path when two CVs share
// a base name. The CVs themselves are read by the ranking engine.
func (fp *FileProcessor) BuildJobRequest(jobFile string, cvFiles []string) (types.JobRequest, error) {
	description, err := fp.ReadDocument(jobFile)
	if err != nil {
		return types.JobRequest{}, err
	}
	if strings.TrimSpace(description) == "" {
		return types.JobRequest{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Job description %s contains no readable text", jobFile), nil)
	}

	baseCounts := make(map[string]int, len(cvFiles))
	for _, path := range cvFiles {
		baseCounts[filepath.Base(path)]++
	}

	seen := make(map[string]bool, len(cvFiles))
	cvs := make([]types.CVInput, 0, len(cvFiles))
	for _, path := range cvFiles {
		if _, err := utils.ValidateInputFile(path); err != nil {
			return types.JobRequest{}, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", path), err)
		}
		id := filepath.Base(path)
		if baseCounts[id] > 1 {
			id = path
		}
		if seen[id] {
			fp.logger.Warn("Skipping duplicate CV", "cv_id", id)
			continue
		}
		seen[id] = true
		cvs = append(cvs, types.CVInput{CVID: id, FilePath: path})
	}

	return types.JobRequest{
		JobID:              strings.TrimSuffix(filepath.Base(jobFile), filepath.Ext(jobFile)),
		JobDescriptionText: description,
		CVs:                cvs,
	}, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
