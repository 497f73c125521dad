package timer

import (
	"context"
	"time"

	"timetrack/internal/domain"
)

// Persistence is the server side of the timer. Every call acts for the
// authenticated user the implementation is bound to; timestamps are on the
// server clock.
type Persistence interface {
	// CreateRunningEntry closes the user's other running entries and inserts
	// a new running one. A nil startTime means the server's now.
	CreateRunningEntry(ctx context.Context, projectID int64, description string, startTime *time.Time) (int64, error)
	// StopRunningEntry closes the user's running entry.
	StopRunningEntry(ctx context.Context, overrides domain.StopOverrides) error
	// ResumeEntry reopens a stopped entry, shifting its start by the time it
	// sat closed.
	ResumeEntry(ctx context.Context, id int64) (int64, error)
	UpdateEntry(ctx context.Context, id int64, update domain.EntryUpdate) error
}
