package strutil

import "strings"

// NormalizeLower trims surrounding whitespace and converts to lower
// case. Use for config tokens like UI modes where case and padding are
// not significant.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
