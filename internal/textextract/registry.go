// ABOUTME: Format registry mapping extensions and MIME types to extractors.
// ABOUTME: New formats are added by registration, not by new branches.
package textextract

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

// builtinMIME covers the supported extensions independently of the host's
// mime tables, which do not always list .txt.
var builtinMIME = map[string]string{
	".txt":  "text/plain",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// MIMEType guesses a MIME type from the file extension only.
func MIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := builtinMIME[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mt, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mt
		}
	}
	return ""
}

// Registry selects an Extractor by extension. MIME types resolve to the
// first extension registered for them.
type Registry struct {
	byExt  map[string]Extractor
	byMIME map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]Extractor),
		byMIME: make(map[string]string),
	}
}

// Register binds e to each extension (".pdf" or "pdf"). Later registrations
// replace earlier ones.
func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.byExt[ext] = e
		if mt := MIMEType("x" + ext); mt != "" {
			if _, ok := r.byMIME[mt]; !ok {
				r.byMIME[mt] = ext
			}
		}
	}
}

// Lookup returns the extractor for path's extension.
func (r *Registry) Lookup(path string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// ExtensionForMIME returns the registered extension for a MIME type;
// parameters are ignored.
func (r *Registry) ExtensionForMIME(mimeType string) (string, bool) {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", false
	}
	ext, ok := r.byMIME[mt]
	return ext, ok
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Options configures the default registry.
type Options struct {
	Tesseract string
	Pdftoppm  string
	Lang      string
	DPI       int
	MaxPages  int
	Workers   int

	// PDFFallback routes .pdf through PDFOCRFallback instead of PDFText.
	PDFFallback bool

	Runner Runner
}

// NewDefaultRegistry wires .txt, .pdf, .png, .jpg and .jpeg.
func NewDefaultRegistry(opts Options) *Registry {
	ocr := NewTesseract(opts.Tesseract, opts.Lang, opts.Runner)

	r := NewRegistry()
	r.Register(PlainText{}, ".txt")
	if opts.PDFFallback {
		r.Register(&PDFOCRFallback{
			Text:       PDFText{},
			Rasterizer: NewPdftoppm(opts.Pdftoppm, opts.DPI, opts.MaxPages, opts.Runner),
			OCR:        ocr,
			Workers:    opts.Workers,
		}, ".pdf")
	} else {
		r.Register(PDFText{}, ".pdf")
	}
	r.Register(&ImageOCR{OCR: ocr}, ".png", ".jpg", ".jpeg")
	return r
}
