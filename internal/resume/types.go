package resume

// Canonical section names the rest of the system relies on.
const (
	SectionHeader     = "Header/Summary"
	SectionSummary    = "Professional Summary"
	SectionExperience = "Experience"
	SectionProjects   = "Projects"
	SectionSkills     = "Skills"
	SectionEducation  = "Education"
)

// ContentKind tags which variant a SectionContent holds.
type ContentKind int

const (
	PlainLines ContentKind = iota
	EntryList
)

func (k ContentKind) String() string {
	if k == EntryList {
		return "entries"
	}
	return "lines"
}

// PersonalInfo holds contact details found near the top of a résumé.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// Entry is one structured record (a job, a project) inside an
// Experience or Projects section.
type Entry struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

func (e Entry) empty() bool {
	return e.Title == "" && len(e.Bullets) == 0
}

// SectionContent is either a list of plain lines or a list of entries.
// The kind is fixed when the content is created and follows the section
// name: Experience and Projects always carry entries.
type SectionContent struct {
	Kind    ContentKind
	Lines   []string
	Entries []Entry
}

// PlainContent builds a PlainLines value.
func PlainContent(lines ...string) SectionContent {
	return SectionContent{Kind: PlainLines, Lines: lines}
}

// EntryContent builds an EntryList value.
func EntryContent(entries ...Entry) SectionContent {
	return SectionContent{Kind: EntryList, Entries: entries}
}

// Empty reports whether the content carries nothing worth keeping.
func (c SectionContent) Empty() bool {
	if c.Kind == EntryList {
		return len(c.Entries) == 0
	}
	return len(c.Lines) == 0
}

// Len is the number of lines or entries.
func (c SectionContent) Len() int {
	if c.Kind == EntryList {
		return len(c.Entries)
	}
	return len(c.Lines)
}

func (c SectionContent) clone() SectionContent {
	out := SectionContent{Kind: c.Kind}
	if c.Lines != nil {
		out.Lines = append([]string(nil), c.Lines...)
	}
	if c.Entries != nil {
		out.Entries = make([]Entry, len(c.Entries))
		for i, e := range c.Entries {
			out.Entries[i] = Entry{Title: e.Title, Bullets: append([]string(nil), e.Bullets...)}
		}
	}
	return out
}

// IsStructured reports whether a canonical section name holds entries.
func IsStructured(name string) bool {
	return name == SectionExperience || name == SectionProjects
}

// KindFor returns the content kind a section with this name must carry.
func KindFor(name string) ContentKind {
	if IsStructured(name) {
		return EntryList
	}
	return PlainLines
}

// Resume bundles the two independent extraction results for one document.
type Resume struct {
	Personal PersonalInfo `json:"personal"`
	Sections *SectionMap  `json:"sections"`
}
