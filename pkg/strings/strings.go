package strings

import (
	"fmt"
	"strings"
)

// MinTruncateLen is the smallest maxLen Truncate honours; it leaves room for
// one character plus the ellipsis.
const MinTruncateLen = 4

// SingleLine collapses every run of whitespace (including newlines) into a
// single space and trims the result.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns s on a single line, cut to at most maxLen runes with a
// trailing "..." when it had to be shortened. A maxLen of zero or less
// disables truncation but still collapses whitespace.
func Truncate(s string, maxLen int) string {
	s = SingleLine(s)
	if maxLen <= 0 {
		return s
	}
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Count renders n followed by the singular or plural noun, e.g. "1 record"
// or "3 records".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
