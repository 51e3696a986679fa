package shared

import (
	"errors"
	"time"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate accepts plain dates and RFC3339 timestamps; plain dates are
// interpreted as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("invalid date format")
}
