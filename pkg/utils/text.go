// Package utils holds small text helpers shared by clients and the engine.
package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateUTF8 cuts s to at most maxBytes without splitting a rune.
func TruncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// SanitizeUTF8 drops invalid byte sequences from s.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			buf.WriteRune(r)
		}
		s = s[size:]
	}
	return buf.String()
}

// CollapseSpace trims s and joins its fields with single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
