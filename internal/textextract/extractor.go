// ABOUTME: Text extraction contract shared by every document format.
// ABOUTME: Extractors return explicit errors; the caller decides whether to degrade them.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Extraction methods reported in Result.Method.
const (
	MethodPlainText = "plain-text"
	MethodPDFText   = "pdf-text"
	MethodPDFOCR    = "pdf-ocr"
	MethodImageOCR  = "image-ocr"
)

// ErrSourceUnreadable marks an I/O failure on the source file itself.
// It is the only extraction failure that is not recoverable.
var ErrSourceUnreadable = errors.New("source file unreadable")

// Result is the outcome of a successful extraction. Text may be empty.
type Result struct {
	Text     string
	Method   string
	Pages    int
	Duration time.Duration
}

// Extractor turns a file on disk into text.
type Extractor interface {
	Extract(ctx context.Context, path string) (Result, error)
}

// ExtractionError carries the method and path of a failed extraction.
type ExtractionError struct {
	Method string
	Path   string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction of %s: %v", e.Method, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newError(method, path string, err error) error {
	return &ExtractionError{Method: method, Path: path, Err: err}
}

// IsRecoverable reports whether err should degrade to empty text.
// Malformed documents, OCR engine failures and timeouts are recoverable;
// an unreadable source file is not.
func IsRecoverable(err error) bool {
	return err != nil && !errors.Is(err, ErrSourceUnreadable)
}
