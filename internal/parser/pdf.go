package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser reads PDF résumés with ledongthuc/pdf. When that yields no text
// and FallbackPdftotext is set, the pdftotext binary gets a second try.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// pdflib.Open wants a path.
	tmp, err := os.CreateTemp("", "cvgest-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if (err != nil || strings.TrimSpace(text) == "") && p.FallbackPdftotext {
		if alt, altErr := extractPdftotext(tmpPath); altErr == nil {
			text, err = alt, nil
		} else if err == nil {
			err = altErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var w lineWriter
	for _, page := range splitPages(text) {
		w.add(page)
	}
	return w.document(titleFromFilename(filename)), nil
}

// extractPDFText rebuilds visual rows so that a résumé heading stays on its
// own line. Pages whose rows cannot be read fall back to plain text.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		if rows, err := page.GetTextByRow(); err == nil && len(rows) > 0 {
			for _, row := range rows {
				for _, word := range row.Content {
					buf.WriteString(word.S)
				}
				buf.WriteByte('\n')
			}
			continue
		}
		if text, err := page.GetPlainText(nil); err == nil {
			buf.WriteString(text)
		}
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
