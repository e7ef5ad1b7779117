package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// minExtractedChars is the smallest cleaned-text length considered a
	// usable extraction.
	minExtractedChars = 50
)

var (
	// ErrUnsupportedFormat is returned for MIME types outside the PDF/DOCX allowlist.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrExtractionFailed is returned when no strategy produced usable text.
	ErrExtractionFailed = errors.New("could not extract text from document")
)

// ExtractText pulls plain UTF-8 text from an uploaded PDF or DOCX payload.
// Each format runs a cascade of strategies, structured parse first, raw byte
// scan second, and the first result clearing the length threshold wins.
// Libraries used: github.com/ledongthuc/pdf (PDF) and
// github.com/nguyenthenguyen/docx (DOCX).
func ExtractText(data []byte, mimeType string, fileName string) (string, error) {
	normalized := normalizeMimeType(mimeType, fileName, data)

	var strategies []func([]byte) (string, error)
	switch normalized {
	case mimePDF:
		strategies = []func([]byte) (string, error){extractPDFStructured, extractPDFRaw}
	case mimeDOCX:
		strategies = []func([]byte) (string, error){extractDOCXStructured, extractDOCXRaw}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, normalized)
	}

	var lastErr error
	for _, strategy := range strategies {
		raw, err := strategy(data)
		if err != nil {
			lastErr = err
			continue
		}
		text := CleanText(raw)
		if len(text) >= minExtractedChars {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, lastErr)
	}
	return "", ErrExtractionFailed
}

func extractPDFStructured(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// pdfTextToken matches parenthesis-delimited string literals inside PDF
// content streams. Escaped parentheses are left in place and cleaned later.
var pdfTextToken = regexp.MustCompile(`\(((?:[^()\\]|\\.)+)\)`)

// extractPDFRaw is the last-resort scan for PDFs the structured parser
// cannot read: it harvests string literals straight from the byte stream.
// Best effort only; compressed streams yield nothing.
func extractPDFRaw(data []byte) (string, error) {
	matches := pdfTextToken.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return "", errors.New("no text tokens in pdf stream")
	}
	var b strings.Builder
	for _, m := range matches {
		token := string(m[1])
		token = strings.ReplaceAll(token, `\(`, "(")
		token = strings.ReplaceAll(token, `\)`, ")")
		b.WriteString(token)
		b.WriteString(" ")
	}
	return b.String(), nil
}

func extractDOCXStructured(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	doc, err := docx.ReadDocxFromMemory(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

var docxTextRun = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCXRaw scans the raw buffer for w:t text runs when the zip
// container is damaged enough that the structured parser rejects it.
func extractDOCXRaw(data []byte) (string, error) {
	matches := docxTextRun.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return "", errors.New("no text runs in docx data")
	}
	var b strings.Builder
	for _, m := range matches {
		b.Write(m[1])
		b.WriteString(" ")
	}
	return b.String(), nil
}

func stripDocxXML(raw string) string {
	// Paragraph and break boundaries become newlines so that downstream
	// whitespace collapse keeps words separated.
	replacer := strings.NewReplacer("</w:p>", "\n", "<w:br/>", "\n", "<w:br>", "\n")
	raw = replacer.Replace(raw)

	var b strings.Builder
	inTag := false
	for _, r := range raw {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var smartPunct = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	" ", " ",
)

var multiSpace = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace, normalizes smart quotes and dashes, and
// strips non-printable bytes.
func CleanText(raw string) string {
	text := smartPunct.Replace(raw)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(multiSpace.ReplaceAllString(b.String(), " "))
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != "application/zip" && clean != "application/octet-stream" && clean != "" {
		return clean
	}

	if len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF")) {
		return mimePDF
	}
	if len(data) >= 2 && bytes.HasPrefix(data, []byte("PK")) && bytes.Contains(data, []byte("word/document.xml")) {
		return mimeDOCX
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	default:
		return clean
	}
}
