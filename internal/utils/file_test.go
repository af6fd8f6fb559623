package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(file, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	size, err := ValidateInputFile(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}

	for _, bad := range []string{"", dir, filepath.Join(dir, "missing.pdf")} {
		if _, err := ValidateInputFile(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := ValidateOutputFile(target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Errorf("directory not created: %v", err)
	}
	if err := ValidateOutputFile(""); err != nil {
		t.Errorf("stdout should be valid: %v", err)
	}
}

func TestFileKinds(t *testing.T) {
	tests := []struct {
		name     string
		text     bool
		pdf      bool
		document bool
	}{
		{name: "cv.PDF", pdf: true, document: true},
		{name: "cv.md", text: true, document: true},
		{name: "notes.TXT", text: true, document: true},
		{name: "cv.docx"},
		{name: "README"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTextFile(tt.name); got != tt.text {
				t.Errorf("IsTextFile = %v, want %v", got, tt.text)
			}
			if got := IsPDFFile(tt.name); got != tt.pdf {
				t.Errorf("IsPDFFile = %v, want %v", got, tt.pdf)
			}
			if got := IsDocumentFile(tt.name); got != tt.document {
				t.Errorf("IsDocumentFile = %v, want %v", got, tt.document)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:              "512 B",
		2048:             "2.0 KB",
		10 * 1024 * 1024: "10.0 MB",
	}
	for size, want := range tests {
		if got := FormatFileSize(size); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", size, got, want)
		}
	}
}
