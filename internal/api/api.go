package api

import (
	"context"
	"log/slog"
	"time"

	"timetrack/internal/domain"
	"timetrack/internal/logging"
	"timetrack/internal/services"
	"timetrack/internal/timer"
)

// API is the set of server actions the timer relies on. Every call acts for
// the identity the instance was created with.
type API interface {
	timer.Persistence

	DeleteEntry(ctx context.Context, id int64) error
	GetRunningEntryForUser(ctx context.Context) (*domain.TimeEntry, error)
	ServerNow() time.Time
}

type apiImpl struct {
	identity domain.Identity
	entries  services.EntryService
	projects services.ProjectService
	time     services.TimeService
	logger   *slog.Logger
}

var _ timer.Persistence = (*apiImpl)(nil)

func newImpl(container *services.ServiceContainer, identity domain.Identity, logger *slog.Logger) *apiImpl {
	return &apiImpl{
		identity: identity,
		entries:  container.EntryService,
		projects: container.ProjectService,
		time:     container.TimeService,
		logger:   logging.OrDiscard(logger).With("user_id", identity.UserID),
	}
}

func (a *apiImpl) CreateRunningEntry(ctx context.Context, projectID int64, description string, startTime *time.Time) (int64, error) {
	entry, err := a.entries.CreateRunningEntry(ctx, a.identity, projectID, description, startTime)
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (a *apiImpl) StopRunningEntry(ctx context.Context, overrides domain.StopOverrides) error {
	_, err := a.entries.StopRunningEntry(ctx, a.identity, overrides)
	return err
}

func (a *apiImpl) ResumeEntry(ctx context.Context, id int64) (int64, error) {
	entry, err := a.entries.ResumeEntry(ctx, a.identity, id)
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (a *apiImpl) UpdateEntry(ctx context.Context, id int64, update domain.EntryUpdate) error {
	_, err := a.entries.UpdateEntry(ctx, a.identity, id, update)
	return err
}

func (a *apiImpl) DeleteEntry(ctx context.Context, id int64) error {
	return a.entries.DeleteEntry(ctx, a.identity, id)
}

// GetRunningEntryForUser returns the running entry, or nil when nothing runs.
func (a *apiImpl) GetRunningEntryForUser(ctx context.Context) (*domain.TimeEntry, error) {
	return a.entries.GetRunningEntry(ctx, a.identity)
}

func (a *apiImpl) ServerNow() time.Time {
	return a.time.Now()
}
