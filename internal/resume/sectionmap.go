package resume

// Section is one key/value pair of a SectionMap, in document order.
type Section struct {
	Name    string
	Content SectionContent
}

// SectionMap is an insertion-ordered mapping from section name to content.
// The zero value is not usable; call NewSectionMap.
type SectionMap struct {
	keys   []string
	values map[string]SectionContent
}

func NewSectionMap() *SectionMap {
	return &SectionMap{values: make(map[string]SectionContent)}
}

// Set inserts a section or replaces the content of an existing one. A new
// name is appended to the end of the order; an existing one keeps its slot.
func (m *SectionMap) Set(name string, content SectionContent) {
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = content
}

// Append merges content into a section, creating it if absent. Lines and
// entries are added after whatever the section already holds.
func (m *SectionMap) Append(name string, content SectionContent) {
	existing, ok := m.values[name]
	if !ok {
		m.Set(name, content)
		return
	}
	existing.Lines = append(existing.Lines, content.Lines...)
	existing.Entries = append(existing.Entries, content.Entries...)
	m.values[name] = existing
}

// reserve registers an empty placeholder so the section keeps the position
// of its first heading even if its content is finalized later.
func (m *SectionMap) reserve(name string) {
	if _, ok := m.values[name]; ok {
		return
	}
	m.Set(name, SectionContent{Kind: KindFor(name)})
}

// Get returns the content stored under name.
func (m *SectionMap) Get(name string) (SectionContent, bool) {
	if m == nil {
		return SectionContent{}, false
	}
	c, ok := m.values[name]
	return c, ok
}

// Has reports whether name is a key.
func (m *SectionMap) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Delete removes a section, preserving the order of the rest.
func (m *SectionMap) Delete(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len is the number of sections.
func (m *SectionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the section names in order. The slice is a copy.
func (m *SectionMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Sections returns the sections in order.
func (m *SectionMap) Sections() []Section {
	if m == nil {
		return nil
	}
	out := make([]Section, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Section{Name: k, Content: m.values[k]})
	}
	return out
}

// Clone returns a deep copy that shares no slices with m.
func (m *SectionMap) Clone() *SectionMap {
	out := NewSectionMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k].clone())
	}
	return out
}

// prune drops every section whose content is empty.
func (m *SectionMap) prune() {
	kept := m.keys[:0]
	for _, k := range m.keys {
		if m.values[k].Empty() {
			delete(m.values, k)
			continue
		}
		kept = append(kept, k)
	}
	m.keys = kept
}
