// Package render turns parsed or refined résumé sections into Markdown and
// HTML documents.
package render

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/dgallion1/cvgest/internal/resume"
)

// Document is a résumé ready for rendering.
type Document struct {
	Sections *resume.SectionMap
	Personal resume.PersonalInfo
	Photo    *Photo
}

// Photo is an optional portrait embedded as a data URL.
type Photo struct {
	ContentType string // image/png, image/jpeg, image/gif or image/webp
	Data        []byte
}

// displayOrder lists sections rendered first, in this order. Any other
// section follows in map order.
var displayOrder = []string{
	resume.SectionSummary, "Summary", resume.SectionExperience, resume.SectionProjects,
	resume.SectionSkills, resume.SectionEducation, "Certifications", "Awards",
	"Achievements", "Publications", "Languages", "Volunteer", "Interests",
	"Hobbies", "References",
}

// paragraphSections render their lines as prose rather than a list.
var paragraphSections = map[string]bool{
	resume.SectionSummary: true,
	"Summary":             true,
}

// OrderedSections returns the sections in display order, without the
// header block.
func OrderedSections(m *resume.SectionMap) []resume.Section {
	var out []resume.Section
	seen := map[string]bool{resume.SectionHeader: true}
	for _, name := range displayOrder {
		if c, ok := m.Get(name); ok && !c.Empty() {
			out = append(out, resume.Section{Name: name, Content: c})
			seen[name] = true
		}
	}
	for _, s := range m.Sections() {
		if !seen[s.Name] && !s.Content.Empty() {
			out = append(out, s)
		}
	}
	return out
}

// Markdown renders doc as CommonMark.
func Markdown(doc Document) string {
	var sb strings.Builder
	writeHeader(&sb, doc.Personal, doc.Photo)

	for _, s := range OrderedSections(doc.Sections) {
		sb.WriteString("## ")
		sb.WriteString(escape(s.Name))
		sb.WriteString("\n\n")

		switch {
		case s.Content.Kind == resume.EntryList:
			for _, e := range s.Content.Entries {
				if e.Title != "" {
					sb.WriteString("**")
					sb.WriteString(escape(stripBold(e.Title)))
					sb.WriteString("**\n\n")
				}
				writeList(&sb, e.Bullets)
			}
		case paragraphSections[s.Name]:
			var parts []string
			for _, l := range s.Content.Lines {
				parts = append(parts, inline(l))
			}
			sb.WriteString(strings.Join(parts, " "))
			sb.WriteString("\n\n")
		default:
			writeList(&sb, s.Content.Lines)
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeHeader(sb *strings.Builder, p resume.PersonalInfo, photo *Photo) {
	if p.Name != "" {
		sb.WriteString("# ")
		sb.WriteString(escape(p.Name))
		sb.WriteString("\n\n")
	}
	if line := contactLine(p); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n\n")
	}
	if url := photo.dataURL(); url != "" {
		sb.WriteString("![Photo](")
		sb.WriteString(url)
		sb.WriteString(")\n\n")
	}
}

// contactLine joins the non-empty contact fields with " | ".
func contactLine(p resume.PersonalInfo) string {
	var parts []string
	if p.Email != "" {
		parts = append(parts, escape(p.Email))
	}
	if p.Phone != "" {
		parts = append(parts, escape(p.Phone))
	}
	for _, url := range []string{p.LinkedIn, p.GitHub} {
		if url != "" {
			label := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
			parts = append(parts, "["+escape(label)+"]("+url+")")
		}
	}
	if p.Address != "" {
		parts = append(parts, escape(strings.Join(strings.Fields(p.Address), " ")))
	}
	return strings.Join(parts, " | ")
}

func writeList(sb *strings.Builder, items []string) {
	n := 0
	for _, item := range items {
		text := inline(item)
		if text == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(text)
		sb.WriteString("\n")
		n++
	}
	if n > 0 {
		sb.WriteString("\n")
	}
}

var allowedPhotoTypes = map[string]bool{
	"image/png": true, "image/jpeg": true, "image/gif": true, "image/webp": true,
}

func (p *Photo) dataURL() string {
	if p == nil || len(p.Data) == 0 || !allowedPhotoTypes[p.ContentType] {
		return ""
	}
	return "data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// boldPattern matches <b>…</b> markup from the model and Markdown bold.
var boldPattern = regexp.MustCompile(`(?i)<b>(.*?)</b>|\*\*(.+?)\*\*`)

var bulletPrefix = regexp.MustCompile(`(?i)^(?:bullet\s*|•\s*|[-*]\s+)`)

// inline escapes a line for Markdown, keeping bold spans.
func inline(s string) string {
	s = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(s), ""))
	var sb strings.Builder
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(s, -1) {
		sb.WriteString(escape(s[last:m[0]]))
		var inner string
		if m[2] >= 0 {
			inner = s[m[2]:m[3]]
		} else {
			inner = s[m[4]:m[5]]
		}
		if inner = strings.TrimSpace(inner); inner != "" {
			sb.WriteString("**")
			sb.WriteString(escape(inner))
			sb.WriteString("**")
		}
		last = m[1]
	}
	sb.WriteString(escape(s[last:]))
	return strings.TrimSpace(sb.String())
}

func stripBold(s string) string {
	return strings.TrimSpace(boldPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := boldPattern.FindStringSubmatch(m)
		if sub[1] != "" {
			return sub[1]
		}
		return sub[2]
	}))
}

var leadingListMarker = regexp.MustCompile(`^(\d+)([.)])`)

// escape backslash-escapes Markdown punctuation so résumé text renders
// literally.
func escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '<', '>', '#', '!', '|', '~', '&':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	out := sb.String()
	if strings.HasPrefix(out, "-") || strings.HasPrefix(out, "+") || strings.HasPrefix(out, "=") {
		out = "\\" + out
	}
	return leadingListMarker.ReplaceAllString(out, `$1\$2`)
}
