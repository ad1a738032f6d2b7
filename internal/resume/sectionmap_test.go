package resume

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionMap_SetKeepsPosition(t *testing.T) {
	m := NewSectionMap()
	m.Set("Skills", PlainContent("Go"))
	m.Set("Education", PlainContent("MSc"))
	m.Set("Skills", PlainContent("Rust"))

	assert.Equal(t, []string{"Skills", "Education"}, m.Keys())
	skills, _ := m.Get("Skills")
	assert.Equal(t, []string{"Rust"}, skills.Lines)
}

func TestSectionMap_DeleteAndKeysCopy(t *testing.T) {
	m := NewSectionMap()
	m.Set("A", PlainContent("a"))
	m.Set("B", PlainContent("b"))
	m.Set("C", PlainContent("c"))

	keys := m.Keys()
	keys[0] = "mutated"

	m.Delete("B")
	m.Delete("missing")
	assert.Equal(t, []string{"A", "C"}, m.Keys())
	assert.Equal(t, 2, m.Len())
}

func TestSectionMap_CloneIsDeep(t *testing.T) {
	m := NewSectionMap()
	m.Set(SectionExperience, EntryContent(Entry{Title: "Acme", Bullets: []string{"Built things"}}))

	c := m.Clone()
	exp, _ := c.Get(SectionExperience)
	exp.Entries[0].Bullets[0] = "changed"

	orig, _ := m.Get(SectionExperience)
	assert.Equal(t, "Built things", orig.Entries[0].Bullets[0])
}

func TestSectionMap_NilSafeReads(t *testing.T) {
	var m *SectionMap
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	assert.False(t, m.Has("Skills"))
	assert.Equal(t, 0, m.Clone().Len())
}

func TestSectionMap_MarshalKeepsOrder(t *testing.T) {
	sections := ParseSections(sampleResume)
	data, err := json.Marshal(sections)
	require.NoError(t, err)

	s := string(data)
	last := -1
	for _, key := range sections.Keys() {
		idx := strings.Index(s, `"`+key+`":`)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, "key %q out of order", key)
		last = idx
	}
	assert.Contains(t, s, `"Journal App","bullets":["Developed a secure journaling backend using Spring Boot and JWT."]`)

	var back SectionMap
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sections.Keys(), back.Keys())
	exp, _ := back.Get(SectionExperience)
	assert.Len(t, exp.Entries, 2)
}

func TestSectionMap_MarshalEmptyBulletsAsArray(t *testing.T) {
	m := NewSectionMap()
	m.Set(SectionProjects, EntryContent(Entry{Title: "Inventory Tool"}))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Projects":[{"title":"Inventory Tool","bullets":[]}]}`, string(data))
}

func TestSectionMap_UnmarshalLooseShapes(t *testing.T) {
	input := `{
		"Professional Summary": "Engineer.\nBuilds things.",
		"Experience": [
			{"title": "A – B | Jan 2020 - Present", "bullets": ["Shipped v2"]},
			"Journal App\nBuilt it",
			{"Acme": "did stuff"}
		],
		"Skills": ["Go", "", 42],
		"Empty": []
	}`

	var m SectionMap
	require.NoError(t, json.Unmarshal([]byte(input), &m))

	assert.Equal(t, []string{SectionSummary, SectionExperience, SectionSkills}, m.Keys())

	summary, _ := m.Get(SectionSummary)
	assert.Equal(t, []string{"Engineer.", "Builds things."}, summary.Lines)

	exp, _ := m.Get(SectionExperience)
	assert.Equal(t, []Entry{
		{Title: "A – B | Jan 2020 - Present", Bullets: []string{"Shipped v2"}},
		{Title: "Journal App", Bullets: []string{"Built it"}},
		{Title: "Acme", Bullets: []string{"did stuff"}},
	}, exp.Entries)

	skills, _ := m.Get(SectionSkills)
	assert.Equal(t, []string{"Go", "42"}, skills.Lines)
}

func TestSectionMap_UnmarshalRejectsNonObject(t *testing.T) {
	var m SectionMap
	assert.Error(t, json.Unmarshal([]byte(`["Skills"]`), &m))
}

func TestContentFromJSON_PlainObjectFlattens(t *testing.T) {
	c, err := ContentFromJSON(SectionEducation, json.RawMessage(`[{"school":"MIT","degree":"BSc","year":2019}]`))
	require.NoError(t, err)
	assert.Equal(t, PlainLines, c.Kind)
	assert.Equal(t, []string{"MIT – BSc – 2019"}, c.Lines)
}

func TestSectionMap_UnmarshalFoldsSynonyms(t *testing.T) {
	input := `{"Work Experience": ["Acme Corp – Developer | 2020 - 2023\nShipped billing"], "Experience": [{"title": "Globex – Intern | 2019", "bullets": []}]}`

	var m SectionMap
	require.NoError(t, json.Unmarshal([]byte(input), &m))
	assert.Equal(t, []string{SectionExperience}, m.Keys())

	exp, _ := m.Get(SectionExperience)
	assert.Equal(t, []Entry{
		{Title: "Acme Corp – Developer | 2020 - 2023", Bullets: []string{"Shipped billing"}},
		{Title: "Globex – Intern | 2019", Bullets: []string{}},
	}, exp.Entries)
}
