package domain

import (
	"fmt"
	"strings"
	"time"
)

// SubmittedAtLayout is the canonical form every stored submittedAt carries.
const SubmittedAtLayout = "2006-01-02T15:04:05Z"

// legacy offset-less Hostaway format, assumed UTC
const legacyLayout = "2006-01-02 15:04:05"

// ParseSubmittedAt parses an upstream or canonical timestamp. Accepted:
// ISO-8601 with an explicit offset or "Z", ISO-8601 without an offset
// (assumed UTC), and the legacy "YYYY-MM-DD HH:MM:SS" form (assumed UTC).
// The result is always UTC.
func ParseSubmittedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("invalid submittedAt %q", s)
	}
	t, err := time.Parse(legacyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid submittedAt %q", s)
	}
	return t, nil
}

// FormatSubmittedAt emits the canonical ISO-8601 UTC form with "Z" suffix.
func FormatSubmittedAt(t time.Time) string {
	return t.UTC().Format(SubmittedAtLayout)
}
