package strings

import (
	"strings"
)

// DefaultValueMaxLen is the maximum length of values in CLI tables.
const DefaultValueMaxLen = 80

// MinTruncateLen is the minimum maxLen value for Truncate.
// Smaller values would not leave room for content plus "...".
const MinTruncateLen = 4

// Truncate shortens s to at most maxLen runes and makes it single-line.
// Runs of whitespace, newlines included, collapse into single spaces, and a
// truncated result ends in "...". maxLen is clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
