package refine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/cvgest/internal/resume"
	"github.com/dgallion1/cvgest/internal/textutil"
)

const refineInstructions = `You are an expert resume writer. Refine the following resume sections to be ATS-friendly and tailored to the job description.

CRITICAL REQUIREMENTS:
1. %s throughout the entire response
2. Preserve ALL original factual information (dates, companies, roles, project names, education details). DO NOT OMIT OR EMPTY EXISTING SECTIONS.
3. Bold relevant keywords using <b></b> HTML tags: %s
4. Maximum 2 pages total length - be extremely concise
5. For Experience/Projects: Maximum 3-4 bullet points per entry, starting with action verbs. Ensure each entry has detailed accomplishments.
6. Add a compelling Professional Summary (3-4 sentences) highlighting top skills for '%s'
7. If Experience or Projects sections are genuinely empty in the input, create realistic entries based on skills/education with "(inferred)" note. If they are not empty, preserve and refine their content.

FORMATTING RULES:
- No bullet prefixes (•, -, *, bullet) - start directly with content
- Bold project names: <b>Project Name</b>
- Quantify achievements wherever possible
- Use action verbs (Led, Developed, Implemented, etc.)

SECTION HANDLING:
- Skills: Focus on job-relevant skills only, bold keywords
- Experience: an array of objects, each with "title" (e.g. "Company – Role | Dates") and "bullets" (array of strings)
- Projects: an array of objects, each with "title" (e.g. "<b>Project Name</b>") and "bullets" (array of strings)
- Education: Institution, Degree, Year, relevant details (e.g. "Institution – Degree | Year")

Return ONLY a valid JSON object where section names are keys. For "Experience" and "Projects" the value is an array of {"title", "bullets"} objects. For other sections the value is an array of strings.

Example:
{
  "Experience": [
    {
      "title": "Infosys – Senior System Engineer | Jan 2024 - Present",
      "bullets": [
        "Designed robust forms using Spring Boot and Spring Data JPA, managing patient, clinic, and clinician records.",
        "Led microservices architecture migration, improving system scalability by 30%%."
      ]
    }
  ],
  "Projects": [
    {
      "title": "<b>Journal App</b>",
      "bullets": ["Developed a secure journaling backend using Spring Boot and JWT-based authentication."]
    }
  ]
}

Resume Sections: `

// BuildRefinePrompt creates the prompt asking the model to rewrite the
// sections as JSON.
func BuildRefinePrompt(req Request) (string, error) {
	sectionsJSON, err := json.MarshalIndent(req.Sections, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sections: %w", err)
	}
	position := req.PositionTitle
	if position == "" {
		position = "Desired Position"
	}
	keywords := append(append([]string{}, req.Keywords...), req.JobKeywords...)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(refineInstructions, languageInstruction(req.Language), strings.Join(keywords, ", "), position))
	sb.Write(sectionsJSON)
	return sb.String(), nil
}

const coverLetterInstructions = `You are an expert cover letter writer. Create a professional, compelling cover letter in %s.

REQUIREMENTS:
1. %s throughout
2. Address to "%s" (use "Madame, Monsieur" if French and generic, "Dear Sir or Madam" if English)
3. Position: %s at %s
4. Bold relevant keywords using <b></b> tags
5. Include quantifiable achievements
6. Professional yet enthusiastic tone
7. Maximum 400 words for main content

STRUCTURE (return as JSON):
{
  "opening": "Opening paragraph expressing interest and company knowledge",
  "body_paragraphs": [
    "Paragraph 1: Relevant experience and skills match",
    "Paragraph 2: Specific achievements and value proposition"
  ],
  "achievements": [
    "Achievement 1 with metrics",
    "Achievement 2 with metrics"
  ],
  "closing": "Professional closing expressing interview interest"
}

`

// BuildCoverLetterPrompt creates the prompt for a cover letter. The job
// description and résumé digest are clipped to keep the prompt small.
func BuildCoverLetterPrompt(req CoverLetterRequest) (string, error) {
	personal, err := json.Marshal(req.Personal)
	if err != nil {
		return "", fmt.Errorf("marshal personal info: %w", err)
	}
	recruiter := req.Recruiter
	if recruiter == "" {
		recruiter = "Hiring Manager"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(coverLetterInstructions,
		req.Language, languageInstruction(req.Language), recruiter, req.PositionTitle, req.Company))
	sb.WriteString("JOB DESCRIPTION: ")
	sb.WriteString(clip(req.JobDescription, 1000))
	sb.WriteString("\nRESUME: ")
	sb.WriteString(clip(FormatSections(req.Sections), 1500))
	sb.WriteString("\nPERSONAL INFO: ")
	sb.Write(personal)
	return sb.String(), nil
}

// FormatSections renders sections as a compact digest: a "### Name" line per
// section, entry titles on their own line and "- " before each bullet or
// plain line.
func FormatSections(sections *resume.SectionMap) string {
	var sb strings.Builder
	for _, s := range sections.Sections() {
		sb.WriteString("\n### ")
		sb.WriteString(s.Name)
		sb.WriteString("\n")
		for _, e := range s.Content.Entries {
			if e.Title != "" {
				sb.WriteString(e.Title)
				sb.WriteString("\n")
			}
			for _, b := range e.Bullets {
				sb.WriteString("- ")
				sb.WriteString(b)
				sb.WriteString("\n")
			}
		}
		for _, l := range s.Content.Lines {
			sb.WriteString("- ")
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func languageInstruction(lang textutil.Language) string {
	if lang == textutil.French {
		return "Respond in French"
	}
	return "Respond in English"
}

// clip keeps at most n runes of s.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
