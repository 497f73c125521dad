package services

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"timetrack/internal/domain"
	"timetrack/internal/errors"
)

// timeServiceImpl implements the TimeService interface
type timeServiceImpl struct {
	now func() time.Time
}

// NewTimeService creates a new TimeService instance reading the given clock.
// A nil clock uses time.Now.
func NewTimeService(now func() time.Time) TimeService {
	if now == nil {
		now = time.Now
	}
	return &timeServiceImpl{now: now}
}

// Now returns the current time as seen by the persistence layer
func (t *timeServiceImpl) Now() time.Time {
	return t.now().UTC()
}

// ParseTimeRange converts time shorthand ("30m", "2h", "1d") to actual time range
func (t *timeServiceImpl) ParseTimeRange(timeStr string) (*TimeRange, error) {
	if timeStr == "" {
		return nil, errors.NewValidationError("time range cannot be empty", nil)
	}

	duration, err := t.parseTimeShorthand(timeStr)
	if err != nil {
		return nil, err
	}

	now := t.Now()
	return &TimeRange{
		Start: now.Add(-duration),
		End:   now,
	}, nil
}

// parseTimeShorthand converts shorthand time strings to durations
func (t *timeServiceImpl) parseTimeShorthand(timeStr string) (time.Duration, error) {
	switch timeStr {
	case "30m":
		return 30 * time.Minute, nil
	case "1h":
		return 1 * time.Hour, nil
	case "2h":
		return 2 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	case "1w":
		return 7 * 24 * time.Hour, nil
	case "1mo":
		return 30 * 24 * time.Hour, nil
	case "1y":
		return 365 * 24 * time.Hour, nil
	}

	// Anything time.ParseDuration accepts is fine too
	if d, err := time.ParseDuration(timeStr); err == nil && d > 0 {
		return d, nil
	}
	return 0, errors.NewValidationError("invalid time format", nil)
}

// FormatDuration formats a duration into human-readable string
func (t *timeServiceImpl) FormatDuration(duration time.Duration) string {
	if duration < 0 {
		return "0h 0m"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatClock formats a duration for a live display, e.g. "1h 05m 09s"
func (t *timeServiceImpl) FormatClock(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	total := int64(duration / time.Second)
	hours, minutes, seconds := total/3600, (total/60)%60, total%60

	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// FormatRelative describes when t happened relative to now, e.g. "5 minutes ago"
func (t *timeServiceImpl) FormatRelative(when time.Time) string {
	return humanize.RelTime(when, t.Now(), "ago", "from now")
}

// CalculateDuration formats the tracked time of an entry
func (t *timeServiceImpl) CalculateDuration(entry domain.TimeEntry) string {
	if entry.IsRunning() {
		return fmt.Sprintf("running for %s", t.FormatDuration(entry.Elapsed(t.Now())))
	}
	return t.FormatDuration(entry.Elapsed(t.Now()))
}
