// Package timefmt canonicalizes the date and time strings that reservations
// carry. Both functions are total: input they cannot parse comes back as a
// best-effort passthrough instead of an error, so callers can still display
// and roughly compare imperfect data.
package timefmt

import (
	"strings"
	"unicode/utf8"
)

// NormalizeTime turns "8:0", "08:00" or " 8:05 " into "HH:MM". Input with
// fewer than two colon-separated parts is returned trimmed but otherwise as is.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	return pad2(parts[0]) + ":" + pad2(parts[1])
}

// NormalizeDate turns "2025/1/22", "2025-01-22T10:00:00" or "2025-1-22 10:00"
// into "YYYY-MM-DD". Anything that does not split into three parts is returned
// with its time suffix stripped.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	dateOnly, _, _ := strings.Cut(s, " ")
	dateOnly, _, _ = strings.Cut(dateOnly, "T")

	parts := strings.Split(strings.ReplaceAll(dateOnly, "/", "-"), "-")
	if len(parts) != 3 {
		return dateOnly
	}
	return parts[0] + "-" + pad2(parts[1]) + "-" + pad2(parts[2])
}

// pad2 left-pads to two characters (not bytes); longer input is left alone.
func pad2(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= 2 {
		return s
	}
	return strings.Repeat("0", 2-n) + s
}
