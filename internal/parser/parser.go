package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the plain text of an uploaded résumé. Text holds one logical
// line per heading, paragraph line or list item so that section headings
// always sit on their own line.
type Document struct {
	Title string
	Text  string
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options tune format-specific behavior.
type Options struct {
	// FallbackPdftotext retries PDF extraction with the pdftotext binary
	// when the Go PDF reader fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// Extract picks the parser for filename and runs it.
func Extract(r io.Reader, filename string, opts Options) (*Document, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, filename)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename drops the directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// lineWriter accumulates trimmed, non-blank lines.
type lineWriter struct {
	lines []string
}

func (w *lineWriter) add(text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			w.lines = append(w.lines, line)
		}
	}
}

func (w *lineWriter) document(title string) *Document {
	return &Document{Title: title, Text: strings.Join(w.lines, "\n")}
}
