package services

import (
	"context"
	"time"

	"timetrack/internal/domain"
)

// TimeRange represents a time period with start and end times
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimeService handles time-related calculations and display formatting
type TimeService interface {
	// Now is the server clock every persistence operation is stamped with
	Now() time.Time

	// Time parsing
	ParseTimeRange(timeStr string) (*TimeRange, error)

	// Duration formatting
	FormatDuration(duration time.Duration) string
	FormatClock(duration time.Duration) string
	FormatRelative(t time.Time) string
	CalculateDuration(entry domain.TimeEntry) string
}

// EntryService owns the time entry lifecycle and the running-timer invariant:
// at most one entry per user has no end time.
type EntryService interface {
	CreateRunningEntry(ctx context.Context, owner domain.Identity, projectID int64, description string, startTime *time.Time) (*domain.TimeEntry, error)
	StopRunningEntry(ctx context.Context, owner domain.Identity, overrides domain.StopOverrides) (*domain.TimeEntry, error)
	ResumeEntry(ctx context.Context, owner domain.Identity, id int64) (*domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, owner domain.Identity, id int64, update domain.EntryUpdate) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, owner domain.Identity, id int64) error

	// GetRunningEntry returns nil without error when nothing is running
	GetRunningEntry(ctx context.Context, owner domain.Identity) (*domain.TimeEntry, error)
	ListEntries(ctx context.Context, owner domain.Identity, opts domain.ListOptions) ([]domain.TimeEntry, error)
}

// ProjectService handles projects scoped to an organization
type ProjectService interface {
	CreateProject(ctx context.Context, organizationID int64, name string) (*domain.Project, error)
	GetProject(ctx context.Context, organizationID int64, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context, organizationID int64) ([]domain.Project, error)

	// ResolveProject finds a project by numeric id or by case-insensitive name
	ResolveProject(ctx context.Context, organizationID int64, ref string) (*domain.Project, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimeService    TimeService
	EntryService   EntryService
	ProjectService ProjectService
}
