package core

import (
	"math"
	"strconv"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseID parses a positive integer identifier, as found in URLs.
// Returns 0 when `s` is not a finite positive integer.
func ParseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// Percent returns round(100 * part / max(total, 1)).
func Percent(part, total int) int {
	if total < 1 {
		total = 1
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
