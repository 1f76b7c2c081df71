package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "only punctuation", input: " .,- ", expected: ""},
		{name: "lower cases", input: "John SMITH", expected: "john smith"},
		{name: "collapses whitespace", input: "  John \t  Smith \n", expected: "john smith"},
		{name: "strips diacritics", input: "José Müller", expected: "jose muller"},
		{name: "hyphen becomes space", input: "Ayman al-Zawahiri", expected: "ayman al zawahiri"},
		{name: "apostrophe becomes space", input: "Patrick O'Brien", expected: "patrick o brien"},
		{name: "typographic apostrophe", input: "Patrick O’Brien", expected: "patrick o brien"},
		{name: "initials", input: "J. Smith", expected: "j smith"},
		{name: "drops honorific", input: "Dr. Ayman al-Zawahiri", expected: "ayman al zawahiri"},
		{name: "drops generational suffix", input: "Robert Johnson Jr.", expected: "robert johnson"},
		{name: "keeps lone honorific", input: "Dr.", expected: "dr"},
		{name: "keeps digits", input: "Vessel 42", expected: "vessel 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"Kim Jong-un", "Mrs. María  García", "HEZBOLLAH"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"Kim Jong Un", "Kim Jong-un", "", "  ", "Kim Jong Eun"})
	assert.Equal(t, []string{"kim jong un", "kim jong eun"}, got)
}

func TestNormalizeAll_ApostropheVariants(t *testing.T) {
	assert.Equal(t, []string{"sean o brien", "sean obrien"}, NormalizeAll([]string{"Sean O'Brien"}))
	assert.Equal(t, []string{"sean o brien"}, NormalizeAll([]string{"Sean O-Brien", "Sean O Brien"}))
	assert.Equal(t, Normalize("O'Brien"), Normalize("O-Brien"))
	assert.Equal(t, Normalize("O'Brien"), Normalize("O Brien"))
}
