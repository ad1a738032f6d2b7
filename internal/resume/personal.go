package resume

import (
	"regexp"
	"strings"
)

// personalWindow is how many leading lines are scanned for contact details.
const personalWindow = 20

var (
	contactMarkerPattern = regexp.MustCompile(`(?i)(@|\.com|github|linkedin|http|https|\d[\d\s\-()]+\d)`)
	emailPattern         = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phonePattern         = regexp.MustCompile(`(\+?\d{1,3}[\s-]?)?(\(?\d{3}\)?[\s-]?\d{3}[\s-]?\d{4}|\d{10})`)
	linkedinPattern      = regexp.MustCompile(`(?i)linkedin\.com/in/[a-zA-Z0-9_-]+`)
	githubPattern        = regexp.MustCompile(`(?i)github\.com/[a-zA-Z0-9_-]+`)
	cityPattern          = regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+)*),\s*[A-Z]{2}`)
)

// addressPatterns are tried in order; only the first that matches is used.
var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln)`),
	regexp.MustCompile(`(?i)[A-Za-z\s]+,\s*[A-Z]{2}\s*\d{5}`),
}

// window is the slice of the document every extractor looks at.
type window struct {
	lines []string
	text  string
}

// fieldExtractor fills one PersonalInfo field from the window.
type fieldExtractor struct {
	field   string
	extract func(w window) string
	assign  func(p *PersonalInfo, v string)
}

var personalExtractors = []fieldExtractor{
	{"name", extractName, func(p *PersonalInfo, v string) { p.Name = v }},
	{"email", firstMatch(emailPattern), func(p *PersonalInfo, v string) { p.Email = v }},
	{"phone", firstMatch(phonePattern), func(p *PersonalInfo, v string) { p.Phone = v }},
	{"linkedin", profileURL(linkedinPattern), func(p *PersonalInfo, v string) { p.LinkedIn = v }},
	{"github", profileURL(githubPattern), func(p *PersonalInfo, v string) { p.GitHub = v }},
	{"address", extractAddress, func(p *PersonalInfo, v string) { p.Address = v }},
	{"city", extractCity, func(p *PersonalInfo, v string) { p.City = v }},
}

// ExtractPersonalDetails scans the first lines of a résumé for contact
// fields. Fields without a match are left empty.
func ExtractPersonalDetails(text string) PersonalInfo {
	var info PersonalInfo
	if strings.TrimSpace(text) == "" {
		return info
	}

	lines := strings.Split(text, "\n")
	if len(lines) > personalWindow {
		lines = lines[:personalWindow]
	}
	w := window{lines: lines, text: strings.Join(lines, "\n")}

	for _, fe := range personalExtractors {
		if v := fe.extract(w); v != "" {
			fe.assign(&info, v)
		}
	}
	return info
}

// extractName takes the first short line that carries no contact markers.
func extractName(w window) string {
	for _, line := range w.lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !contactMarkerPattern.MatchString(line) && len(strings.Fields(line)) <= 4 {
			return line
		}
	}
	return ""
}

func firstMatch(re *regexp.Regexp) func(window) string {
	return func(w window) string {
		return re.FindString(w.text)
	}
}

func profileURL(re *regexp.Regexp) func(window) string {
	return func(w window) string {
		if m := re.FindString(w.text); m != "" {
			return "https://" + m
		}
		return ""
	}
}

func extractAddress(w window) string {
	for _, re := range addressPatterns {
		if m := re.FindString(w.text); m != "" {
			return m
		}
	}
	return ""
}

func extractCity(w window) string {
	if m := cityPattern.FindStringSubmatch(w.text); len(m) > 1 {
		return m[1]
	}
	return ""
}
