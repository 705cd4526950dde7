// Package textclean canonicalizes extracted document text before it is
// embedded in a prompt.
package textclean

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, collapses whitespace, drops every non-ASCII
// character and then everything outside letters, digits, whitespace and
// ". , ! ?". The result has single spaces and no leading or trailing
// whitespace. Normalize never fails and Normalize(Normalize(s)) == Normalize(s).
//
// Non-ASCII removal runs before the punctuation whitelist so multi-byte
// characters disappear whole instead of leaving stray symbols behind.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = collapseSpace(s)
	s = stripNonASCII(s)
	s = keepAllowed(s)
	// Removals above can leave adjacent spaces behind.
	s = collapseSpace(s)
	return strings.TrimSpace(s)
}

// isSpace also treats the ASCII file/group/record/unit separators as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func stripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepAllowed(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if allowed(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == ',', c == '!', c == '?':
		return true
	}
	return isSpace(rune(c))
}
