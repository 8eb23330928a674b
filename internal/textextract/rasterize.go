// ABOUTME: PDF page rasterization for the OCR fallback tier.
// ABOUTME: Pdftoppm renders pages to PNG files in a caller-owned directory.
package textextract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
)

// Rasterizer renders each PDF page to an image and returns the image paths
// in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Pdftoppm runs poppler's pdftoppm.
type Pdftoppm struct {
	Binary   string
	DPI      int
	MaxPages int
	Runner   Runner
}

// NewPdftoppm returns a Pdftoppm with defaults for empty settings.
func NewPdftoppm(binary string, dpi, maxPages int, runner Runner) *Pdftoppm {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Pdftoppm{Binary: binary, DPI: dpi, MaxPages: maxPages, Runner: runner}
}

// Rasterize writes outDir/page-N.png for each page. pdftoppm zero-pads page
// numbers to a common width, so a lexical sort is page order.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	args := []string{"-png", "-r", strconv.Itoa(p.DPI)}
	if p.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(p.MaxPages))
	}
	args = append(args, pdfPath, filepath.Join(outDir, "page"))

	if _, err := p.Runner.Run(ctx, p.Binary, args...); err != nil {
		return nil, fmt.Errorf("rasterize pdf: %w", err)
	}

	images, err := filepath.Glob(filepath.Join(outDir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rasterized pages: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("rasterize pdf: no pages rendered")
	}
	sort.Strings(images)
	return images, nil
}
