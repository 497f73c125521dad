package sqlite

import "time"

// Project represents a row of the projects table
type Project struct {
	ID             int64
	OrganizationID int64
	Name           string
}

// TimeEntry represents a single time tracking entry
type TimeEntry struct {
	ID             int64
	UserID         int64
	OrganizationID int64
	ProjectID      int64
	Description    string
	StartTime      time.Time
	EndTime        *time.Time // Using pointer to allow NULL values
	Duration       *int64     // Seconds, NULL while running
}

// ListOptions contains the filters for listing a user's time entries
type ListOptions struct {
	ProjectID *int64
	Since     *time.Time
	Limit     int
}
