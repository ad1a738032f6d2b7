package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPersonalDetails_NameEmailLinkedIn(t *testing.T) {
	got := ExtractPersonalDetails("John Smith\njohn@example.com\nlinkedin.com/in/johnsmith")

	assert.Equal(t, PersonalInfo{
		Name:     "John Smith",
		Email:    "john@example.com",
		LinkedIn: "https://linkedin.com/in/johnsmith",
	}, got)
}

func TestExtractPersonalDetails_EmptyInput(t *testing.T) {
	assert.Equal(t, PersonalInfo{}, ExtractPersonalDetails(""))
	assert.Equal(t, PersonalInfo{}, ExtractPersonalDetails("   \n \n"))
}

func TestExtractPersonalDetails_StreetAddressAndCity(t *testing.T) {
	got := ExtractPersonalDetails("Jane Doe\n123 Main Street\nSpringfield, IL 62704\ngithub.com/janedoe")

	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "123 Main Street", got.Address)
	assert.Equal(t, "Springfield", got.City)
	assert.Equal(t, "https://github.com/janedoe", got.GitHub)
	assert.Empty(t, got.Phone)
}

func TestExtractPersonalDetails_CityStateZipAddress(t *testing.T) {
	got := ExtractPersonalDetails("Austin, TX 78701\nJane Doe")

	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "Austin, TX 78701", got.Address)
	assert.Equal(t, "Austin", got.City)
}

func TestExtractPersonalDetails_Phone(t *testing.T) {
	tests := map[string]string{
		"Call +1 555-123-4567 anytime": "+1 555-123-4567",
		"(555) 123-4567":               "(555) 123-4567",
		"5551234567":                   "5551234567",
	}
	for in, want := range tests {
		got := ExtractPersonalDetails("Jane Doe\n" + in)
		assert.Equal(t, want, got.Phone, in)
	}
}

func TestExtractPersonalDetails_NameSkipsContactLines(t *testing.T) {
	doc := strings.Join([]string{
		"",
		"jane@example.com",
		"https://janedoe.dev",
		"+44 20 7946 0958",
		"Senior Backend Engineer at a Big Company",
		"Jane Doe",
	}, "\n")

	assert.Equal(t, "Jane Doe", ExtractPersonalDetails(doc).Name)
}

func TestExtractPersonalDetails_OnlyLeadingWindow(t *testing.T) {
	lines := make([]string, 0, 25)
	lines = append(lines, "Jane Doe")
	for i := 0; i < 22; i++ {
		lines = append(lines, "Worked on distributed systems and data pipelines at scale")
	}
	lines = append(lines, "late@example.com")

	got := ExtractPersonalDetails(strings.Join(lines, "\n"))
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Empty(t, got.Email)
}

func TestPersonalExtractorsOrder(t *testing.T) {
	var fields []string
	for _, fe := range personalExtractors {
		fields = append(fields, fe.field)
	}
	assert.Equal(t, []string{"name", "email", "phone", "linkedin", "github", "address", "city"}, fields)
}

func TestAddressPatternsFirstMatchWins(t *testing.T) {
	w := window{text: "42 Baker Street\nLondon, UK 12345"}
	assert.Equal(t, "42 Baker Street", extractAddress(w))

	w = window{text: "Remote only\nDenver, CO 80202"}
	assert.Equal(t, "Remote only\nDenver, CO 80202", extractAddress(w))
}
