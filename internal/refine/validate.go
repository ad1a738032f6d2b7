package refine

import (
	"regexp"
	"strings"

	"github.com/dgallion1/cvgest/internal/resume"
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

// bulletPrefix matches list markers the model was told not to emit.
var bulletPrefix = regexp.MustCompile(`^(?:[•\-*▪◦·]|bullet:?)\s*`)

// tagPattern matches any HTML tag; only <b> and </b> survive sanitizing.
var tagPattern = regexp.MustCompile(`</?[A-Za-z][^>]*>`)

const maxLineLength = 600

// sanitizeLine strips bullet markers and markup other than <b>, and rejects
// lines that read like instructions to a model.
func sanitizeLine(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = bulletPrefix.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		switch strings.ToLower(tag) {
		case "<b>", "</b>":
			return strings.ToLower(tag)
		}
		return ""
	})
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxLineLength {
		return "", false
	}
	if injectionPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

func sanitizeLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if s, ok := sanitizeLine(l); ok {
			out = append(out, s)
		}
	}
	return out
}

// ValidateRefined cleans every line of refined and restores any section of
// original that the model dropped or emptied. The result shares no slices
// with either input.
func ValidateRefined(original, refined *resume.SectionMap) *resume.SectionMap {
	out := resume.NewSectionMap()
	for _, s := range refined.Sections() {
		c := s.Content
		var content resume.SectionContent
		if c.Kind == resume.EntryList {
			var entries []resume.Entry
			for _, e := range c.Entries {
				title, _ := sanitizeLine(e.Title)
				bullets := sanitizeLines(e.Bullets)
				if title == "" && len(bullets) == 0 {
					continue
				}
				entries = append(entries, resume.Entry{Title: title, Bullets: bullets})
			}
			content = resume.EntryContent(entries...)
		} else {
			content = resume.PlainContent(sanitizeLines(c.Lines)...)
		}
		if !content.Empty() {
			out.Set(s.Name, content)
		}
	}

	restored := original.Clone()
	for _, s := range restored.Sections() {
		if !out.Has(s.Name) && !s.Content.Empty() {
			out.Set(s.Name, s.Content)
		}
	}
	return out
}
