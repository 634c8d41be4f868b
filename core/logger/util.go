package logger

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// RoundMS converts a duration to milliseconds with 0.1ms precision.
func RoundMS(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*10) / 10
}

// SanitizeLimit trims whitespace, collapses newlines and caps the value length
// so message previews stay single-line in log output.
func SanitizeLimit(s string, limit int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
