package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON writes the sections as one JSON object whose keys keep the
// map order. Entry sections encode as [{title, bullets}], others as
// string arrays.
func (m *SectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range m.Sections() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value any
		if s.Content.Kind == EntryList {
			entries := make([]Entry, len(s.Content.Entries))
			for j, e := range s.Content.Entries {
				if e.Bullets == nil {
					e.Bullets = []string{}
				}
				entries[j] = e
			}
			value = entries
		} else {
			lines := s.Content.Lines
			if lines == nil {
				lines = []string{}
			}
			value = lines
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal section %q: %w", s.Name, err)
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the MarshalJSON shape and the looser shapes a
// language model tends to return (see ContentFromJSON). Key order is kept,
// synonym keys such as "Work Experience" fold into their canonical section,
// and sections that decode to nothing are skipped.
func (m *SectionMap) UnmarshalJSON(data []byte) error {
	fields, err := orderedObject(data)
	if err != nil {
		return fmt.Errorf("decode sections: %w", err)
	}
	out := NewSectionMap()
	for _, f := range fields {
		name := CanonicalSectionName(strings.TrimSpace(f.key))
		content, err := ContentFromJSON(name, f.value)
		if err != nil {
			return fmt.Errorf("decode section %q: %w", f.key, err)
		}
		if content.Empty() {
			continue
		}
		out.Append(name, content)
	}
	*m = *out
	return nil
}

// ContentFromJSON decodes one section value. Experience and Projects always
// produce entries: items may be {title, bullets} objects, multi-line strings
// (first line is the title) or arbitrary objects (title taken from "title"
// or the first key). Other sections produce lines from strings, arrays of
// strings, or flattened objects.
func ContentFromJSON(name string, raw json.RawMessage) (SectionContent, error) {
	items, err := jsonItems(raw)
	if err != nil {
		return SectionContent{}, err
	}

	if IsStructured(name) {
		var entries []Entry
		for _, item := range items {
			e, err := entryFromJSON(item)
			if err != nil {
				return SectionContent{}, err
			}
			e.Title = strings.TrimSpace(e.Title)
			e.Bullets = cleanLines(e.Bullets)
			if !e.empty() {
				entries = append(entries, e)
			}
		}
		return EntryContent(entries...), nil
	}

	var lines []string
	for _, item := range items {
		ls, err := linesFromJSON(item)
		if err != nil {
			return SectionContent{}, err
		}
		lines = append(lines, ls...)
	}
	return PlainContent(cleanLines(lines)...), nil
}

// jsonItems treats an array as its elements, null as nothing, and any other
// value as a single item.
func jsonItems(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		return []json.RawMessage{raw}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func entryFromJSON(raw json.RawMessage) (Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Entry{}, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Entry{}, err
		}
		lines := cleanLines(strings.Split(s, "\n"))
		if len(lines) == 0 {
			return Entry{}, nil
		}
		return Entry{Title: lines[0], Bullets: lines[1:]}, nil
	case '{':
		fields, err := orderedObject(raw)
		if err != nil {
			return Entry{}, err
		}
		return entryFromFields(fields)
	default:
		s, err := scalarString(raw)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Title: s}, nil
	}
}

func entryFromFields(fields []objectField) (Entry, error) {
	var (
		e        Entry
		titleKey string
		bullets  json.RawMessage
	)
	for _, f := range fields {
		switch f.key {
		case "title":
			s, err := scalarString(f.value)
			if err != nil {
				return Entry{}, err
			}
			if s != "" {
				e.Title, titleKey = s, f.key
			}
		case "bullets":
			bullets = f.value
		}
	}
	if titleKey == "" {
		for _, f := range fields {
			if f.key != "bullets" && f.key != "title" {
				e.Title = f.key
				break
			}
		}
	}

	if bullets != nil {
		items, err := jsonItems(bullets)
		if err != nil {
			return Entry{}, err
		}
		for _, item := range items {
			ls, err := linesFromJSON(item)
			if err != nil {
				return Entry{}, err
			}
			e.Bullets = append(e.Bullets, ls...)
		}
	}
	if len(cleanLines(e.Bullets)) > 0 {
		return e, nil
	}

	// No usable bullets: every other value becomes a bullet.
	e.Bullets = nil
	for _, f := range fields {
		if f.key == titleKey || f.key == "bullets" {
			continue
		}
		ls, err := linesFromJSON(f.value)
		if err != nil {
			return Entry{}, err
		}
		e.Bullets = append(e.Bullets, ls...)
	}
	return e, nil
}

// linesFromJSON flattens a value into text lines.
func linesFromJSON(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return strings.Split(s, "\n"), nil
	case '[':
		items, err := jsonItems(raw)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, item := range items {
			ls, err := linesFromJSON(item)
			if err != nil {
				return nil, err
			}
			out = append(out, ls...)
		}
		return out, nil
	case '{':
		fields, err := orderedObject(raw)
		if err != nil {
			return nil, err
		}
		var parts []string
		for _, f := range fields {
			ls, err := linesFromJSON(f.value)
			if err != nil {
				return nil, err
			}
			parts = append(parts, cleanLines(ls)...)
		}
		if len(parts) == 0 {
			return nil, nil
		}
		return []string{strings.Join(parts, " – ")}, nil
	default:
		s, err := scalarString(raw)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func scalarString(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	default:
		return strings.TrimSpace(fmt.Sprint(t)), nil
	}
}

type objectField struct {
	key   string
	value json.RawMessage
}

// orderedObject decodes a JSON object keeping its key order.
func orderedObject(data []byte) ([]objectField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}
	var fields []objectField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, objectField{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}
