// ABOUTME: PDF text-layer extractor using github.com/ledongthuc/pdf.
// ABOUTME: Concatenates page text with newlines; parser panics become errors.
package textextract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFText extracts the embedded text layer of a PDF.
type PDFText struct{}

// Extract walks every page and joins the plain text of each. Any failure,
// including a panic inside the parser on malformed input, yields an error
// and no partial text.
func (PDFText) Extract(ctx context.Context, path string) (res Result, err error) {
	start := time.Now()
	res.Method = MethodPDFText

	defer func() {
		if r := recover(); r != nil {
			res.Text = ""
			err = newError(MethodPDFText, path, fmt.Errorf("pdf parser panic: %v", r))
		}
		res.Duration = time.Since(start)
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return res, newError(MethodPDFText, path, fmt.Errorf("open pdf: %w", err))
	}
	defer f.Close()

	var sb strings.Builder
	total := reader.NumPage()
	res.Pages = total

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return res, newError(MethodPDFText, path, err)
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return res, newError(MethodPDFText, path, fmt.Errorf("page %d: %w", i, err))
		}
		if text != "" {
			sb.WriteString("\n")
			sb.WriteString(text)
		}
	}

	res.Text = sb.String()
	return res, nil
}
