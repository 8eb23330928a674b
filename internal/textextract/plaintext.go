// ABOUTME: Plain text extractor for .txt uploads.
// ABOUTME: Reads the whole file as UTF-8; read failures surface as ErrSourceUnreadable.
package textextract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// PlainText reads a file verbatim.
type PlainText struct{}

// Extract reads path as UTF-8. Invalid byte sequences become U+FFFD and a
// leading byte order mark is dropped.
func (PlainText) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res := Result{Method: MethodPlainText, Pages: 1}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, newError(MethodPlainText, path, fmt.Errorf("%w: %w", ErrSourceUnreadable, err))
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	res.Text = strings.TrimPrefix(text, "\ufeff")
	res.Duration = time.Since(start)
	return res, nil
}
