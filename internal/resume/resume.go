// Package resume turns plain résumé text into contact details and an
// ordered map of labeled sections.
//
// Everything here is a pure in-memory transformation: no I/O, no shared
// state, and identical input always yields identical output.
package resume

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidArgument is returned when a caller hands over no input at all,
// as opposed to empty input which parses to empty results.
var ErrInvalidArgument = errors.New("invalid argument")

// Parse runs both extraction passes over text.
func Parse(text string) Resume {
	return Resume{
		Personal: ExtractPersonalDetails(text),
		Sections: ParseSections(text),
	}
}

// ParseReader reads the whole document from r and parses it.
func ParseReader(r io.Reader) (Resume, error) {
	if r == nil {
		return Resume{}, fmt.Errorf("resume: nil reader: %w", ErrInvalidArgument)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Resume{}, fmt.Errorf("resume: read: %w", err)
	}
	return Parse(string(data)), nil
}

// ExtractPersonalDetailsReader reads the whole document from r and extracts
// its contact details.
func ExtractPersonalDetailsReader(r io.Reader) (PersonalInfo, error) {
	if r == nil {
		return PersonalInfo{}, fmt.Errorf("resume: nil reader: %w", ErrInvalidArgument)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return PersonalInfo{}, fmt.Errorf("resume: read: %w", err)
	}
	return ExtractPersonalDetails(string(data)), nil
}
