package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeInvalidRequest, "job_id is required", nil),
			expected: "INVALID_REQUEST: job_id is required",
		},
		{
			name:     "with cause",
			err:      NewAIError(ErrCodeEmbeddingFailed, "embedding call failed", fmt.Errorf("boom")),
			expected: "EMBEDDING_FAILED: embedding call failed (caused by: boom)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	scoring := NewScoringError(ErrCodeMalformedFeatures, "probability out of range", nil)
	wrapped := fmt.Errorf("processing job: %w", scoring)

	if !IsType(wrapped, ErrorTypeScoring) {
		t.Error("expected wrapped scoring error to match scoring type")
	}
	if IsType(wrapped, ErrorTypeValidation) {
		t.Error("scoring error must not match validation type")
	}
	if IsType(fmt.Errorf("plain"), ErrorTypeScoring) {
		t.Error("plain error must not match any type")
	}
}

func TestLoggerLogErrorIncludesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	err := NewIOError(ErrCodeFileNotFound, "missing", nil).WithContext("path", "/tmp/cv.pdf")
	logger.LogError(fmt.Errorf("wrap: %w", err), "extraction failed", "cv_id", "c1")

	var entry map[string]any
	if jsonErr := json.Unmarshal(buf.Bytes(), &entry); jsonErr != nil {
		t.Fatalf("log output is not JSON: %v (%s)", jsonErr, buf.String())
	}
	checks := map[string]any{
		"msg":        "extraction failed",
		"error_code": ErrCodeFileNotFound,
		"path":       "/tmp/cv.pdf",
		"cv_id":      "c1",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("log field %s = %v, want %v", key, entry[key], want)
		}
	}
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("New(%q) returned error: %v", level, err)
		}
	}
	_, err := New("verbose")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected invalid log level error, got %v", err)
	}
}
