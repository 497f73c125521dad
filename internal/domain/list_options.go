package domain

import "time"

// ListOptions narrows a listing of a user's time entries.
type ListOptions struct {
	ProjectID *int64
	Since     *time.Time
	Limit     int
}
