package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted and emitted by the API.
const DateLayout = "2006-01-02"

// ParseDate accepts a plain calendar date or an RFC 3339 timestamp and
// returns midnight UTC of that calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
