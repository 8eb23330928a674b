// ABOUTME: Image OCR extractor with a fixed preprocessing pipeline.
// ABOUTME: Grayscale, 2x Lanczos upscale, then a 3x3 edge kernel before OCR.
package textextract

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
)

// edgeKernel is the 3x3 Laplacian used for edge enhancement.
var edgeKernel = [9]float64{
	-1, -1, -1,
	-1, 8, -1,
	-1, -1, -1,
}

// Preprocess prepares an image for OCR: grayscale, upscale 2x with Lanczos
// resampling, then apply the edge-detection kernel.
func Preprocess(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	up := imaging.Resize(gray, b.Dx()*2, b.Dy()*2, imaging.Lanczos)
	return imaging.Convolve3x3(up, edgeKernel, nil)
}

// ImageOCR recognizes text in PNG and JPEG files.
type ImageOCR struct {
	OCR OCREngine
}

// Extract decodes path, preprocesses it, and runs OCR on the result.
func (x *ImageOCR) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res := Result{Method: MethodImageOCR, Pages: 1}

	img, err := imaging.Open(path)
	if err != nil {
		return res, newError(MethodImageOCR, path, fmt.Errorf("decode image: %w", err))
	}

	tmp, err := os.CreateTemp("", "labtrack-ocr-*.png")
	if err != nil {
		return res, newError(MethodImageOCR, path, fmt.Errorf("create temp image: %w", err))
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := imaging.Save(Preprocess(img), tmpPath); err != nil {
		return res, newError(MethodImageOCR, path, fmt.Errorf("write preprocessed image: %w", err))
	}

	text, err := x.OCR.Recognize(ctx, tmpPath)
	if err != nil {
		return res, newError(MethodImageOCR, path, err)
	}

	res.Text = text
	res.Duration = time.Since(start)
	return res, nil
}
