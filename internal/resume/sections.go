package resume

import (
	"strings"
)

// ParseSections splits résumé text into named sections in document order.
// Lines before the first heading land in SectionHeader. Sections left
// without content are dropped. Blank input yields an empty map.
func ParseSections(text string) *SectionMap {
	sections := NewSectionMap()

	var (
		current string
		buffer  []string
		header  []string
	)

	finalize := func() {
		if current == "" {
			return
		}
		sections.Append(current, finalizeBuffer(current, buffer))
		buffer = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if cls := ClassifyLine(line); cls.IsHeading() {
			finalize()
			current = CanonicalSectionName(cls.Heading)
			sections.reserve(current)
			continue
		}

		if current != "" {
			buffer = append(buffer, line)
			continue
		}

		if len(header) == 0 {
			sections.reserve(SectionHeader)
		}
		header = append(header, line)
	}
	finalize()

	if len(header) > 0 {
		sections.Append(SectionHeader, PlainContent(header...))
	}

	sections.prune()
	return sections
}

// finalizeBuffer turns the lines collected under one heading into content
// of the kind that heading requires.
func finalizeBuffer(name string, buffer []string) SectionContent {
	if IsStructured(name) {
		if len(buffer) == 0 {
			return EntryContent()
		}
		return EntryContent(StructureEntries(buffer)...)
	}
	return PlainContent(cleanLines(buffer)...)
}
