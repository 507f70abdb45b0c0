package ingestion

import (
	"strings"
	"time"
)

var (
	dateLayouts  = []string{"2006-01-02", "1/2/2006"}
	clockLayouts = []string{"15:04", "3:04 PM", "3:04PM"}
)

const (
	dateFormats  = "YYYY-MM-DD or MM/DD/YYYY"
	clockFormats = "HH:MM or h:MM AM/PM"
)

func parseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseClock normalizes a time of day to 24 hour HH:MM.
func parseClock(raw string) (string, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}
