// Package normalize derives dedup keys from user-entered titles.
package normalize

import (
	"strings"
	"unicode"
)

// Key lowercases and trims s, replaces emoji and punctuation with spaces,
// and collapses runs of whitespace. Two titles that differ only in case,
// emoji or punctuation produce the same key. Emoji, punctuation and
// symbols all fall outside letter/digit/space, so a single class filter
// covers them.
func Key(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
