package domain

import (
	"fmt"
	"strings"
	"time"
)

// StripVariant removes the trailing variant character from a valve-type code
func StripVariant(code string) string {
	r := []rune(code)
	if len(r) == 0 {
		return ""
	}
	return string(r[:len(r)-1])
}

// NormalizeText upper-cases and trims free text for keyword matching
func NormalizeText(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseOrderDate parses a zero-padded YYYY-MM-DD or YYYY-MM order date
func ParseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid order date %q", s)
}
