// ABOUTME: Two-tier PDF extractor: text layer first, OCR of rasterized pages second.
// ABOUTME: Page OCR runs concurrently on a bounded errgroup; results keep page order.
package textextract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"
)

// PDFOCRFallback prefers the PDF text layer and falls back to OCR when the
// text layer is blank or unreadable.
type PDFOCRFallback struct {
	Text       Extractor
	Rasterizer Rasterizer
	OCR        OCREngine
	Workers    int

	// PageCount reports the number of pages; defaults to pdfcpu.
	PageCount func(path string) (int, error)
}

// Extract runs the text tier and, if it yields only whitespace, the OCR tier.
// A failure in the OCR tier fails the whole extraction.
func (f *PDFOCRFallback) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	text := f.Text
	if text == nil {
		text = PDFText{}
	}
	res, err := text.Extract(ctx, path)
	if err == nil && strings.TrimSpace(res.Text) != "" {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Method: MethodPDFOCR}, newError(MethodPDFOCR, path, ctxErr)
	}

	res, err = f.ocr(ctx, path)
	res.Duration = time.Since(start)
	if err != nil {
		return Result{Method: MethodPDFOCR, Duration: res.Duration}, newError(MethodPDFOCR, path, err)
	}
	return res, nil
}

func (f *PDFOCRFallback) ocr(ctx context.Context, path string) (Result, error) {
	res := Result{Method: MethodPDFOCR}

	count := f.PageCount
	if count == nil {
		count = api.PageCountFile
	}
	pages, err := count(path)
	if err != nil {
		return res, fmt.Errorf("count pages: %w", err)
	}
	if pages == 0 {
		return res, nil
	}

	dir, err := os.MkdirTemp("", "labtrack-pdf-*")
	if err != nil {
		return res, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	images, err := f.Rasterizer.Rasterize(ctx, path, dir)
	if err != nil {
		return res, err
	}

	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	workers := f.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, img := range images {
		g.Go(func() error {
			t, err := f.OCR.Recognize(gctx, img)
			if err != nil {
				return fmt.Errorf("ocr page %d: %w", i+1, err)
			}
			texts[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Text = strings.Join(texts, "\n")
	res.Pages = len(images)
	return res, nil
}
