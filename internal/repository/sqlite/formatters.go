package sqlite

import (
	"time"
)

// TimeLayout is the stored timestamp format: UTC, nanosecond precision and
// fixed width, so stored values sort lexically in time order
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimeForDB formats a time.Time value in TimeLayout
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatTimePtrForDB formats a *time.Time value in TimeLayout, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// FormatInt64PtrForDB returns nil for a nil pointer so the column is stored as NULL
func FormatInt64PtrForDB(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// ParseTimeFromDB parses a stored timestamp. Whole-second RFC3339 values
// written before migration 3 are accepted too.
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
