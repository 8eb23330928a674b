// ABOUTME: Tests for the extractor registry and MIME guessing.
// ABOUTME: Covers default wiring and the PDF OCR fallback switch.
package textextract

import (
	"reflect"
	"testing"
)

func TestMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.txt", "text/plain"},
		{"a.PDF", "application/pdf"},
		{"a.png", "image/png"},
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := MIMEType(tt.path); got != tt.want {
				t.Errorf("MIMEType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry(Options{})

	want := []string{".jpeg", ".jpg", ".pdf", ".png", ".txt"}
	if got := r.Extensions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}

	if e, ok := r.Lookup("report.TXT"); !ok {
		t.Error("expected .TXT to resolve")
	} else if _, isPlain := e.(PlainText); !isPlain {
		t.Errorf(".txt extractor = %T, want PlainText", e)
	}

	if e, _ := r.Lookup("labs.pdf"); e == nil {
		t.Error("expected .pdf extractor")
	} else if _, isPDF := e.(PDFText); !isPDF {
		t.Errorf(".pdf extractor = %T, want PDFText", e)
	}

	if _, ok := r.Lookup("notes.docx"); ok {
		t.Error(".docx should not be supported")
	}
	if r.Supports("archive.zip") {
		t.Error(".zip should not be supported")
	}
}

func TestDefaultRegistryPDFFallback(t *testing.T) {
	r := NewDefaultRegistry(Options{PDFFallback: true, Workers: 2})

	e, ok := r.Lookup("scan.pdf")
	if !ok {
		t.Fatal("expected .pdf extractor")
	}
	fb, isFallback := e.(*PDFOCRFallback)
	if !isFallback {
		t.Fatalf(".pdf extractor = %T, want *PDFOCRFallback", e)
	}
	if fb.Workers != 2 {
		t.Errorf("Workers = %d, want 2", fb.Workers)
	}
}

func TestRegistryExtensionForMIME(t *testing.T) {
	r := NewDefaultRegistry(Options{})

	tests := []struct {
		mimeType string
		want     string
		ok       bool
	}{
		{"image/jpeg", ".jpg", true},
		{"text/plain; charset=utf-8", ".txt", true},
		{"application/pdf", ".pdf", true},
		{"application/zip", "", false},
		{"not a mime type;;", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			got, ok := r.ExtensionForMIME(tt.mimeType)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ExtensionForMIME(%q) = %q, %v; want %q, %v", tt.mimeType, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(PlainText{}, "txt")
	stub := &stubExtractor{}
	r.Register(stub, ".TXT")

	e, ok := r.Lookup("a.txt")
	if !ok || e != Extractor(stub) {
		t.Errorf("Lookup = %v, want the later registration", e)
	}
}
