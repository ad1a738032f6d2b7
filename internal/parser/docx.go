package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Each paragraph becomes one line; table
// cells are emitted row by row.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "cvgest-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var w lineWriter
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			w.add(docxParagraphText(it))
		case *docx.Table:
			for _, row := range it.TableRows {
				var cells []string
				for _, cell := range row.TableCells {
					var parts []string
					for _, para := range cell.Paragraphs {
						if t := docxParagraphText(para); t != "" {
							parts = append(parts, t)
						}
					}
					if len(parts) > 0 {
						cells = append(cells, strings.Join(parts, " "))
					}
				}
				w.add(strings.Join(cells, " | "))
			}
		}
	}
	return w.document(titleFromFilename(filename)), nil
}

// docxHeadingLevel reports the Word heading level of a paragraph, 0 for body
// text.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level := strings.TrimPrefix(style, "heading")
	if len(level) == 1 && level[0] >= '1' && level[0] <= '6' {
		return int(level[0] - '0')
	}
	return 0
}

// docxParagraphText joins the text runs of a paragraph. Heading paragraphs
// have a trailing colon dropped so styled headings like "Skills:" read the
// same as plain ones.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
		}
	}
	text := strings.TrimSpace(buf.String())
	if docxHeadingLevel(para) > 0 {
		text = strings.TrimSpace(strings.TrimSuffix(text, ":"))
	}
	return text
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte(' ')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
}
