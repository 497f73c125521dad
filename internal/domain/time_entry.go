package domain

import (
	"time"
)

// TimeEntry represents a time tracking entry in the domain model.
// At most one entry per user has a nil EndTime at any moment.
type TimeEntry struct {
	ID             int64
	UserID         int64
	OrganizationID int64
	ProjectID      int64
	Description    string
	StartTime      time.Time
	EndTime        *time.Time
	// Duration is in seconds; nil while the entry is running.
	Duration *int64
}

// NewTimeEntry creates a new running TimeEntry for the given project.
func NewTimeEntry(owner Identity, projectID int64, description string, startTime time.Time) TimeEntry {
	return TimeEntry{
		UserID:         owner.UserID,
		OrganizationID: owner.OrganizationID,
		ProjectID:      projectID,
		Description:    description,
		StartTime:      startTime,
	}
}

// IsRunning returns true if the time entry is currently running (no end time).
func (te TimeEntry) IsRunning() bool {
	return te.EndTime == nil
}

// Stop sets the end time for the time entry and computes its duration.
func (te TimeEntry) Stop(endTime time.Time) TimeEntry {
	te.EndTime = &endTime
	seconds := DurationSeconds(te.StartTime, endTime)
	te.Duration = &seconds
	return te
}

// Resume reopens a stopped entry at now. The start time moves forward by the
// time the entry sat closed, so now - StartTime equals the time already
// tracked before the pause.
func (te TimeEntry) Resume(now time.Time) TimeEntry {
	if te.EndTime == nil {
		return te
	}
	gap := now.Sub(*te.EndTime)
	if gap < 0 {
		gap = 0
	}
	te.StartTime = te.StartTime.Add(gap)
	te.EndTime = nil
	te.Duration = nil
	return te
}

// Elapsed returns the tracked time up to now for a running entry, or the
// stored duration for a stopped one.
func (te TimeEntry) Elapsed(now time.Time) time.Duration {
	if te.EndTime == nil {
		return now.Sub(te.StartTime)
	}
	if te.Duration != nil {
		return time.Duration(*te.Duration) * time.Second
	}
	return te.EndTime.Sub(te.StartTime)
}

// IsValid checks if the time entry has valid data.
func (te TimeEntry) IsValid() bool {
	if te.UserID <= 0 || te.ProjectID <= 0 {
		return false
	}
	if te.StartTime.IsZero() {
		return false
	}
	if te.EndTime != nil && te.EndTime.Before(te.StartTime) {
		return false
	}
	return true
}

// DurationSeconds returns whole seconds between start and end, never negative.
func DurationSeconds(start, end time.Time) int64 {
	seconds := int64(end.Sub(start) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

// StopOverrides are the optional fields applied when closing the running entry.
type StopOverrides struct {
	Description *string
	ProjectID   *int64
	EndTime     *time.Time
	// EntryID, when set, must match the running entry.
	EntryID *int64
}

// EntryUpdate holds the fields changed by an explicit edit. Nil fields are left as is.
type EntryUpdate struct {
	Description *string
	ProjectID   *int64
	StartTime   *time.Time
	EndTime     *time.Time
	Duration    *int64
}

// IsEmpty reports whether the update changes nothing.
func (u EntryUpdate) IsEmpty() bool {
	return u.Description == nil && u.ProjectID == nil && u.StartTime == nil && u.EndTime == nil && u.Duration == nil
}
