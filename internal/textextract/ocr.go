// ABOUTME: OCR engine contract and the tesseract command-line implementation.
// ABOUTME: Output text is read from tesseract's stdout.
package textextract

import (
	"context"
	"fmt"
	"strconv"
)

// OCREngine recognizes text in an image file.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Tesseract runs the tesseract binary.
type Tesseract struct {
	Binary string
	Lang   string
	PSM    int
	Runner Runner
}

// NewTesseract returns a Tesseract with defaults for empty settings.
func NewTesseract(binary, lang string, runner Runner) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Tesseract{Binary: binary, Lang: lang, Runner: runner}
}

// Recognize returns the text tesseract finds in imagePath.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.Lang}
	if t.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.PSM))
	}
	out, err := t.Runner.Run(ctx, t.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
