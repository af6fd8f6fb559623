// Package textextract turns CV documents into plain text. Failures never
// reach the ranking engine: an unreadable document is reported as empty text.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"skillsync/internal/errors"
	"skillsync/internal/types"
	"skillsync/internal/utils"
)

var pdfMagic = []byte("%PDF-")

// Extractor reads PDF, text and markdown documents
type Extractor struct {
	maxFileSize int64
	logger      *errors.Logger
}

// New creates an extractor. maxFileSize <= 0 disables the size limit.
func New(maxFileSize int64, logger *errors.Logger) *Extractor {
	return &Extractor{maxFileSize: maxFileSize, logger: logger}
}

// Text resolves the text of one CV. Inline text wins over the file path.
// Any read failure is logged and yields "".
func (e *Extractor) Text(ctx context.Context, cv types.CVInput) string {
	if strings.TrimSpace(cv.Text) != "" {
		return cv.Text
	}
	if cv.FilePath == "" || ctx.Err() != nil {
		return ""
	}

	text, err := e.ReadFile(cv.FilePath)
	if err != nil {
		e.logger.Warn("CV text extraction failed",
			"cv_id", cv.CVID,
			"file_path", cv.FilePath,
			"error", err.Error())
		return ""
	}
	return text
}

// ReadFile extracts text from path. PDFs are recognised by extension or by
// their header; everything else is read as UTF-8 text.
func (e *Extractor) ReadFile(path string) (string, error) {
	size, err := utils.ValidateInputFile(path)
	if err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	if e.maxFileSize > 0 && size > e.maxFileSize {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("File %s is %s, limit is %s", path,
				utils.FormatFileSize(size), utils.FormatFileSize(e.maxFileSize)), nil)
	}

	isPDF := utils.IsPDFFile(path)
	if !isPDF {
		if isPDF, err = hasPDFHeader(path); err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot read file: %s", path), err)
		}
	}
	if isPDF {
		return e.readPDF(path)
	}

	if !utils.IsDocumentFile(path) {
		e.logger.Debug("Reading file with unknown extension as text", "file_path", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", path), err)
	}
	return string(content), nil
}

func hasPDFHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Equal(head[:n], pdfMagic), nil
}

// readPDF joins the plain text of every page with newlines. Scanned PDFs
// without a text layer come back empty.
func (e *Extractor) readPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.NewIOError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("Malformed PDF: %s", path), fmt.Errorf("%v", r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Cannot open PDF: %s", path), err)
	}
	defer func() { _ = f.Close() }()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot extract text from page %d of %s", i, path), err)
		}
		pages = append(pages, content)
	}

	e.logger.Debug("PDF text extracted", "file_path", path, "pages", len(pages))
	return strings.Join(pages, "\n"), nil
}
