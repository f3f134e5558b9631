package utils

import (
	"fmt"
	"time"
)

// audit timestamps are stored with a fixed-width fractional second so that
// lexicographic order matches chronological order. RFC3339Nano drops
// trailing zeros, which breaks that property within a second.
const auditTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// FormatAuditTime renders a timestamp for audit-log storage.
func FormatAuditTime(t time.Time) string {
	return t.UTC().Format(auditTimeFormat)
}

// ParseAuditTime returns the timestamp for a stored audit value. Parsing
// accepts any RFC3339 fraction width, so values written before the format
// was fixed still load.
func ParseAuditTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return t, nil
}
