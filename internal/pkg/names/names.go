// Package names canonicalizes person and organization names for comparison.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Honorifics dropped from the front of a name and generational suffixes dropped from the end.
// A name is never reduced to nothing by affix stripping.
var (
	honorifics = map[string]bool{
		"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sir": true, "madam": true,
	}
	generational = map[string]bool{
		"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
	}
)

// Normalize returns the canonical form of a name: accents stripped, lower-cased,
// punctuation and whitespace collapsed to single spaces, and honorific or generational
// affixes removed. Empty input yields an empty string.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	// transform.Chain keeps state, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(trimAffixes(strings.Fields(b.String())), " ")
}

// Tokens returns the whitespace separated tokens of an already normalized name
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// NormalizeAll normalizes each name, dropping empties and duplicates while keeping
// first-seen order. A name containing an apostrophe also contributes its joined
// spelling, so "O'Brien" yields both "o brien" and "obrien".
func NormalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	add := func(n string) {
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	for _, v := range values {
		add(Normalize(v))
		if strings.ContainsAny(v, apostrophes) {
			add(Normalize(strings.Map(dropApostrophe, v)))
		}
	}
	return out
}

const apostrophes = "'’`"

func dropApostrophe(r rune) rune {
	if strings.ContainsRune(apostrophes, r) {
		return -1
	}
	return r
}

func trimAffixes(tokens []string) []string {
	for len(tokens) > 1 && honorifics[tokens[0]] {
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && generational[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}
