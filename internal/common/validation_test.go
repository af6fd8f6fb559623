package common

import (
	"testing"

	"skillsync/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{
			name:             "json",
			format:           "json",
			supportedFormats: supported,
		},
		{
			name:             "markdown",
			format:           "markdown",
			supportedFormats: supported,
		},
		{
			name:             "unknown format",
			format:           "csv",
			supportedFormats: supported,
			expectError:      true,
			expectedError:    "unsupported output format 'csv'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive",
			format:           "JSON",
			supportedFormats: supported,
			expectError:      true,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "empty format",
			format:           "",
			supportedFormats: supported,
			expectError:      true,
		},
		{
			name:             "no restriction configured",
			format:           "xml",
			supportedFormats: nil,
		},
		{
			name:             "restricted to json",
			format:           "text",
			supportedFormats: []string{"json"},
			expectError:      true,
			expectedError:    "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			if !tt.expectError {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !errors.IsType(err, errors.ErrorTypeValidation) {
				t.Errorf("Expected a validation error, got %T", err)
			}
			if tt.expectedError != "" {
				appErr := err.(*errors.AppError)
				if appErr.Message != tt.expectedError {
					t.Errorf("Expected message '%s', got '%s'", tt.expectedError, appErr.Message)
				}
			}
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		requested string
		fallback  string
		want      string
		wantErr   bool
	}{
		{"explicit wins", "markdown", "json", "markdown", false},
		{"falls back to default", "", "text", "text", false},
		{"invalid explicit", "yaml", "json", "", true},
		{"invalid default", "", "yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputFormat(tt.requested, tt.fallback, supported)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
