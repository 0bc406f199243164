package tui

import (
	"strings"
	"unicode"
)

// StripControl removes control characters, ANSI escapes included, from
// text taken from flow documents before it reaches a terminal. Newlines
// and tabs are kept.
func StripControl(s string) string {
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
