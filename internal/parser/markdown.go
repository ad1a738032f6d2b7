package parser

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Markup is dropped;
// headings, paragraph lines, list items and code lines each become a line.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var w lineWriter
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		writeMarkdownBlock(&w, n, src)
	}
	return w.document(titleFromFilename(filename)), nil
}

func writeMarkdownBlock(w *lineWriter, n ast.Node, src []byte) {
	switch n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		w.add(inlineText(n, src))
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			w.add(string(seg.Value(src)))
		}
	case *ast.ThematicBreak, *ast.HTMLBlock:
	default:
		// Containers: lists, list items, blockquotes.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			writeMarkdownBlock(w, c, src)
		}
	}
}

// inlineText gets the text of a block's inline children, keeping soft and
// hard line breaks.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(src))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}
