package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingsOnOwnLines(t *testing.T) {
	input := `# Jane Doe

jane@example.com | github.com/janedoe

## Experience

**Acme Corp** – Developer | Jan 2020 - Present

- Built the *billing* exports
- Cut costs by 20%

## Skills

Go, Rust
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "cv.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "cv" {
		t.Errorf("expected title %q, got %q", "cv", doc.Title)
	}

	want := []string{
		"Jane Doe",
		"jane@example.com | github.com/janedoe",
		"Experience",
		"Acme Corp – Developer | Jan 2020 - Present",
		"Built the billing exports",
		"Cut costs by 20%",
		"Skills",
		"Go, Rust",
	}
	got := strings.Split(doc.Text, "\n")
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), doc.Text)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestMarkdownParser_SoftBreaksSplitLines(t *testing.T) {
	input := "John Smith\njohn@example.com\nlinkedin.com/in/johnsmith\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "cv.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "John Smith\njohn@example.com\nlinkedin.com/in/johnsmith" {
		t.Errorf("unexpected text %q", doc.Text)
	}
}

func TestMarkdownParser_CodeBlockLines(t *testing.T) {
	input := "## Projects\n\n```\nGET /api/users\nPOST /api/users\n```\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "Projects\nGET /api/users\nPOST /api/users" {
		t.Errorf("unexpected text %q", doc.Text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "" {
		t.Errorf("expected empty text, got %q", doc.Text)
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"uploads/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		doc, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if doc.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, doc.Title)
		}
	}
}
