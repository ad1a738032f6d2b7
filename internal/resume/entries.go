package resume

import (
	"regexp"
	"strings"
)

// titlePattern is one heuristic for spotting the first line of an entry.
// Patterns are tried in order and the first match wins.
type titlePattern struct {
	name string
	re   *regexp.Regexp
}

var entryTitlePatterns = []titlePattern{
	// Infosys – Senior System Engineer | Jan 2024 - Present
	{"company-role-dates", regexp.MustCompile(`^[A-Z][a-zA-Z\s,]+\s*–\s*[A-Z][a-zA-Z\s,]+\s*\|\s*\w{3}\s*\d{4}\s*-\s*(?:\w{3}\s*\d{4}|Present)`)},
	{"role", regexp.MustCompile(`^[A-Z][a-zA-Z\s]+\s*(?:Engineer|Developer|Manager|Analyst|Specialist)`)},
	{"project", regexp.MustCompile(`^(?:<b>)?[A-Za-z][a-zA-Z\s]+(?:App|Platform|System|Tool)(?:</b>)?`)},
	{"capitalized", regexp.MustCompile(`^[A-Z][a-zA-Z\s]+(?:\s*\d{4})?$`)},
}

const (
	maxTitleWords    = 15
	maxSubtitleWords = 10
)

var actionVerbs = []string{
	"designed", "developed", "led", "implemented", "managed", "built",
	"optimized", "achieved", "spearheaded", "improved", "diagnosed",
}

var quantifiedPattern = regexp.MustCompile(`\d+%|\$\d+|[xX]\d+`)

// matchTitlePattern returns the name of the first pattern matching line.
func matchTitlePattern(line string) (string, bool) {
	if len(strings.Fields(line)) >= maxTitleWords {
		return "", false
	}
	for _, p := range entryTitlePatterns {
		if p.re.MatchString(line) {
			return p.name, true
		}
	}
	return "", false
}

func isEntryTitle(line string) bool {
	_, ok := matchTitlePattern(line)
	return ok
}

// looksLikeBullet reports whether a line reads like an accomplishment:
// it opens with an action verb or carries a number such as 40%, $5000, x3.
func looksLikeBullet(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, verb := range actionVerbs {
		if strings.HasPrefix(lower, verb) {
			return true
		}
	}
	return quantifiedPattern.MatchString(line)
}

// isShortSubtitle is a short descriptive line that should stay with the
// open entry instead of starting a new one.
//
// This can swallow a genuinely new short title into the previous entry
// when no title pattern recognizes it. Kept for compatibility with
// existing output.
func isShortSubtitle(line string) bool {
	return !looksLikeBullet(line) && len(strings.Fields(line)) < maxSubtitleWords
}

type entryBuilder struct {
	entries []Entry
	current *Entry
}

func (b *entryBuilder) open(title string) {
	b.close()
	b.current = &Entry{Title: title}
}

func (b *entryBuilder) close() {
	if b.current != nil {
		b.entries = append(b.entries, *b.current)
		b.current = nil
	}
}

func (b *entryBuilder) addBullet(line string) {
	if b.current != nil {
		b.current.Bullets = append(b.current.Bullets, line)
		return
	}
	// No title seen yet: collect into a leading untitled entry.
	if len(b.entries) == 0 {
		b.entries = append(b.entries, Entry{})
	}
	last := &b.entries[len(b.entries)-1]
	last.Bullets = append(last.Bullets, line)
}

// StructureEntries groups the buffered lines of an Experience or Projects
// section into entries.
func StructureEntries(lines []string) []Entry {
	var b entryBuilder
	nonBlank := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonBlank++

		switch {
		case isEntryTitle(line):
			b.open(line)
		case b.current != nil && isShortSubtitle(line):
			// Short sub-heading under an open entry: a detail line, never a title.
			b.addBullet(line)
		default:
			b.addBullet(line)
		}
	}
	b.close()

	entries := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		e.Bullets = cleanLines(e.Bullets)
		if e.empty() {
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 && nonBlank > 0 {
		return []Entry{{Bullets: cleanLines(lines)}}
	}
	return entries
}

// cleanLines trims every line and drops the blank ones.
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
