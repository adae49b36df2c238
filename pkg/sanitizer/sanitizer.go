package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func titleWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func stripRunes(drop func(rune) bool) Strategy {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if drop(r) {
				return -1
			}
			return r
		}, s)
	}
}

// NormalizeLocation is used for both the catalog and search input, so "new delhi"
// finds cars stored as "New Delhi".
func NormalizeLocation(input string) string {
	p := Pipeline{
		CollapseSpaces,
		titleWords,
	}
	return p.Apply(input)
}

func NormalizeLicense(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToUpper,
	}
	return p.Apply(input)
}

func NormalizeCustomerID(input string) string {
	return strings.TrimSpace(input)
}

// NormalizeCardNumber drops the spaces and dashes people type between digit groups.
func NormalizeCardNumber(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		stripRunes(func(r rune) bool { return r == ' ' || r == '-' }),
	}
	return p.Apply(input)
}

func NormalizeUPIID(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToLower,
	}
	return p.Apply(input)
}
