package resume

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// headingVocabulary lists recognized heading phrases. Order is priority.
var headingVocabulary = []string{
	"professional summary", "summary", "objective", "about me", "profile",
	"experience", "work experience", "professional experience", "employment",
	"projects", "portfolio",
	"education", "academic background",
	"skills", "technical skills", "core competencies", "expertise", "competencies",
	"certifications", "awards", "achievements",
	"publications", "volunteer", "volunteering",
	"languages", "hobbies", "interests", "references",
	"contact",
}

var headingWordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(headingVocabulary))
	for i, phrase := range headingVocabulary {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	}
	return out
}()

var labelHeadingPattern = regexp.MustCompile(`^[A-Za-z\s&]+:\s*$`)

var sectionSynonyms = map[string]string{
	"work experience":         SectionExperience,
	"professional experience": SectionExperience,
	"technical skills":        SectionSkills,
	"core competencies":       SectionSkills,
	"expertise":               SectionSkills,
	"competencies":            SectionSkills,
	"academic background":     SectionEducation,
	"professional summary":    SectionSummary,
	"objective":               SectionSummary,
	"about me":                SectionSummary,
	"profile":                 SectionSummary,
}

// LineKind is the lexical class of a single line.
type LineKind int

const (
	LineContent LineKind = iota
	LineHeading
	LineFallbackHeading
)

// Classification is the result of ClassifyLine. Heading holds the
// title-cased heading text for either heading kind.
type Classification struct {
	Kind    LineKind
	Heading string
}

func (c Classification) IsHeading() bool {
	return c.Kind != LineContent
}

// ClassifyLine decides whether a trimmed line is a vocabulary heading, a
// heading recognized by shape, or ordinary content.
func ClassifyLine(line string) Classification {
	line = strings.TrimSpace(line)
	if line == "" {
		return Classification{Kind: LineContent}
	}

	if phrase, ok := matchVocabulary(line); ok {
		return Classification{Kind: LineHeading, Heading: titleCase(phrase)}
	}

	words := len(strings.Fields(line))
	if (isUpperLine(line) && words < 6) || (labelHeadingPattern.MatchString(line) && words < 6) {
		heading := strings.TrimSpace(strings.TrimRight(line, ":"))
		return Classification{Kind: LineFallbackHeading, Heading: titleCase(heading)}
	}

	return Classification{Kind: LineContent}
}

// matchVocabulary runs the exact pass over the whole vocabulary before the
// whole-word pass, so "technical skills" wins over the shorter "skills".
func matchVocabulary(line string) (string, bool) {
	candidate := strings.ToLower(strings.TrimSpace(strings.TrimRight(line, ": \t")))
	if candidate == "" {
		return "", false
	}
	for _, phrase := range headingVocabulary {
		if candidate == phrase {
			return phrase, true
		}
	}
	if len(strings.Fields(candidate)) >= 5 {
		return "", false
	}
	for i, phrase := range headingVocabulary {
		if headingWordPatterns[i].MatchString(candidate) {
			return phrase, true
		}
	}
	return "", false
}

// CanonicalSectionName maps heading synonyms onto one label. Names outside
// the synonym table are returned as given. Applying it twice is a no-op.
func CanonicalSectionName(heading string) string {
	if canonical, ok := sectionSynonyms[strings.ToLower(strings.TrimSpace(heading))]; ok {
		return canonical
	}
	return heading
}

// isUpperLine reports whether line has at least one cased letter and no
// lower-case ones.
func isUpperLine(line string) bool {
	cased := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// titleCase uses a fresh Caser per call; Casers are not safe for
// concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
