// Package textutil holds language detection and keyword extraction used to
// tailor résumé refinement to a job posting.
package textutil

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Language selects stopwords and the language of generated text.
type Language string

const (
	English Language = "english"
	French  Language = "french"
)

// ParseLanguage maps user input ("fr", "French", "english") to a Language.
// Unknown values yield English.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fr", "fra", "french", "français", "francais":
		return French
	}
	return English
}

// DetectLanguage reports French when the text is detected as French and
// English otherwise, including for empty text.
func DetectLanguage(text string) Language {
	if strings.TrimSpace(text) == "" {
		return English
	}
	if whatlanggo.Detect(text).Lang == whatlanggo.Fra {
		return French
	}
	return English
}
