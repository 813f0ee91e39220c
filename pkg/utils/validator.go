package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// DigitsOnly keeps the decimal digits of s, truncated to max runes when max > 0
func DigitsOnly(s string, max int) string {
	return filterRunes(s, max, func(r rune) bool { return r >= '0' && r <= '9' })
}

// LettersOnly keeps the letters of s, accented ones included
func LettersOnly(s string) string {
	return filterRunes(s, 0, unicode.IsLetter)
}

// SanitizeFileComponent makes s safe to embed in a single path element
// by replacing path separators and dropping control characters
func SanitizeFileComponent(s string) string {
	s = SanitizeString(s)
	s = strings.NewReplacer("/", "-", "\\", "-").Replace(s)
	return strings.TrimSpace(s)
}

func filterRunes(s string, max int, keep func(rune) bool) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if !keep(r) {
			continue
		}
		if max > 0 && n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
