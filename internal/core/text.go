package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerPT = cases.Lower(language.BrazilianPortuguese)

// Lower folds s using Portuguese casing rules.
func Lower(s string) string {
	return lowerPT.String(s)
}

// Capitalize upper-cases the first letter and lower-cases the rest:
// "visa GOLD" -> "Visa gold", "construção/reforma" -> "Construção/reforma".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + Lower(s[size:])
}

// IsWord reports whether s is non-empty and made only of letters.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// EqualFold compares two category labels ignoring case and surrounding space.
func EqualFold(a, b string) bool {
	return Lower(strings.TrimSpace(a)) == Lower(strings.TrimSpace(b))
}
