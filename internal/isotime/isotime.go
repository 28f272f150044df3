// Package isotime parses the ISO-8601 timestamps exchanged with clients.
package isotime

import (
	"fmt"
	"strings"
	"time"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Parse reads an ISO-8601 timestamp. A trailing "Z" is taken as UTC and
// timestamps without an offset are assumed to be UTC. The result is in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}

// ParseOptional returns nil for an empty or unparseable string.
func ParseOptional(s string) *time.Time {
	t, err := Parse(s)
	if err != nil {
		return nil
	}
	return &t
}

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}
