package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line    string
		kind    LineKind
		heading string
	}{
		{"Experience", LineHeading, "Experience"},
		{"WORK EXPERIENCE:", LineHeading, "Work Experience"},
		{"Technical Skills", LineHeading, "Technical Skills"},
		{"Skills & Tools", LineHeading, "Skills"},
		{"CERTIFICATIONS AND LICENSES", LineHeading, "Certifications"},
		{"Summary of qualifications", LineHeading, "Summary"},
		{"Interests:", LineHeading, "Interests"},
		{"TECHNICAL PROFICIENCY", LineFallbackHeading, "Technical Proficiency"},
		{"Tools & Frameworks:", LineFallbackHeading, "Tools & Frameworks"},
		{"I have experience with Go and Kubernetes", LineContent, ""},
		{"experienced backend engineer", LineContent, ""},
		{"Designed robust forms using Spring Boot.", LineContent, ""},
		{"THIS LINE IS SHOUTING VERY LOUDLY", LineContent, ""},
		{"2020 - 2023", LineContent, ""},
		{"", LineContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ClassifyLine(tt.line)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.heading, got.Heading)
			assert.Equal(t, tt.kind != LineContent, got.IsHeading())
		})
	}
}

func TestClassifyLine_ExactMatchBeatsShorterPhrase(t *testing.T) {
	// "experience" precedes "professional experience" in the vocabulary,
	// but the exact pass runs first.
	got := ClassifyLine("Professional Experience")
	assert.Equal(t, "Professional Experience", got.Heading)
	assert.Equal(t, SectionExperience, CanonicalSectionName(got.Heading))
}

func TestCanonicalSectionName(t *testing.T) {
	tests := map[string]string{
		"Work Experience":         SectionExperience,
		"Professional Experience": SectionExperience,
		"Technical Skills":        SectionSkills,
		"Core Competencies":       SectionSkills,
		"Expertise":               SectionSkills,
		"Competencies":            SectionSkills,
		"Academic Background":     SectionEducation,
		"Professional Summary":    SectionSummary,
		"Objective":               SectionSummary,
		"About Me":                SectionSummary,
		"Profile":                 SectionSummary,
		"Summary":                 "Summary",
		"Certifications":          "Certifications",
		"Technical Proficiency":   "Technical Proficiency",
	}
	for in, want := range tests {
		got := CanonicalSectionName(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, CanonicalSectionName(got), "canonicalization must be idempotent for %q", in)
	}
}

func TestIsUpperLine(t *testing.T) {
	assert.True(t, isUpperLine("SKILLS"))
	assert.True(t, isUpperLine("R&D 2020"))
	assert.False(t, isUpperLine("Skills"))
	assert.False(t, isUpperLine("2020 - 2023"))
	assert.False(t, isUpperLine("•"))
}
