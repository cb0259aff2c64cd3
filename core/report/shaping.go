package report

import (
	"unicode"

	"github.com/abdullahdiaa/garabic"
)

// Shaper turns logically ordered text into its visual presentation form.
type Shaper func(string) string

// ArabicShaper joins Arabic letters into their contextual forms and lays them out right to left.
// Text without Arabic letters is returned untouched.
func ArabicShaper(s string) string {
	if !HasArabic(s) {
		return s
	}
	return garabic.Shape(s)
}

// HasArabic reports whether s contains at least one Arabic letter.
func HasArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
