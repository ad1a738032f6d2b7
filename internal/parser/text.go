package parser

import (
	"bufio"
	"io"
)

// TextParser handles plain text files.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var w lineWriter
	for scanner.Scan() {
		w.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return w.document(titleFromFilename(filename)), nil
}
