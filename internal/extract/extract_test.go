package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func fakePDF(body string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n1 0 obj\nstream\nBT ")
	buf.WriteString(body)
	buf.WriteString(" ET\nendstream\nendobj\n%%EOF")
	return buf.Bytes()
}

func fakeDOCX(t *testing.T, runs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Stored, not deflated, so the raw-scan strategy can see the runs even
	// when the archive is missing the parts a structured parser wants.
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "word/document.xml", Method: zip.Store})
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	w.Write([]byte(`<w:document><w:body><w:p>`))
	for _, run := range runs {
		w.Write([]byte(`<w:r><w:t>` + run + `</w:t></w:r>`))
	}
	w.Write([]byte(`</w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextPDFRawScanFallback(t *testing.T) {
	data := fakePDF(`(Led the checkout redesign for a marketplace serving two million buyers) Tj (Shipped weekly with a team of five engineers) Tj`)

	text, err := ExtractText(data, "application/pdf", "resume.pdf")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "checkout redesign") {
		t.Fatalf("expected token text, got %q", text)
	}
	if !strings.Contains(text, "team of five engineers") {
		t.Fatalf("expected second token, got %q", text)
	}
}

func TestExtractTextDOCXRawScanFallback(t *testing.T) {
	data := fakeDOCX(t, []string{
		"Product manager with four years of experience ",
		"shipping analytics dashboards used by enterprise customers.",
	})

	text, err := ExtractText(data, mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "analytics dashboards") {
		t.Fatalf("expected run text, got %q", text)
	}
}

func TestExtractTextZipMimeNormalizesToDOCX(t *testing.T) {
	data := fakeDOCX(t, []string{
		"Generalist operator comfortable across research design and analytics disciplines.",
	})

	if _, err := ExtractText(data, "application/zip", "resume.docx"); err != nil {
		t.Fatalf("expected zip mime to normalize to docx, got %v", err)
	}
}

func TestExtractTextUnsupportedMime(t *testing.T) {
	_, err := ExtractText([]byte("\x89PNG\r\n"), "image/png", "avatar.png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractTextBelowThresholdFails(t *testing.T) {
	data := fakePDF(`(Too short) Tj`)

	_, err := ExtractText(data, "application/pdf", "resume.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapse whitespace", in: "a \t b\n\n c", want: "a b c"},
		{name: "smart quotes", in: "“led” ‘teams’", want: `"led" 'teams'`},
		{name: "dashes", in: "2019–2021 — PM", want: "2019-2021 - PM"},
		{name: "non printable", in: "plan\x00\x07ned", want: "planned"},
		{name: "trim", in: "  spaced out  ", want: "spaced out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
