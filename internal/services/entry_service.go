package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timetrack/internal/domain"
	"timetrack/internal/errors"
	"timetrack/internal/logging"
	"timetrack/internal/repository/sqlite"
	"timetrack/internal/validation"
)

// entryServiceImpl implements the EntryService interface
type entryServiceImpl struct {
	repo         sqlite.Repository
	timeService  TimeService
	mapper       *domain.Mapper
	validator    *validation.Validator
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewEntryService creates a new EntryService instance. A zero queryTimeout
// leaves the caller's deadline in charge.
func NewEntryService(repo sqlite.Repository, timeService TimeService, validator *validation.Validator, logger *slog.Logger, queryTimeout time.Duration) EntryService {
	if validator == nil {
		validator = validation.NewValidator()
	}
	return &entryServiceImpl{
		repo:         repo,
		timeService:  timeService,
		mapper:       domain.NewMapper(),
		validator:    validator,
		logger:       logging.OrDiscard(logger),
		queryTimeout: queryTimeout,
	}
}

// CreateRunningEntry closes every running entry of the owner and opens a new
// one, in a single transaction
func (s *entryServiceImpl) CreateRunningEntry(ctx context.Context, owner domain.Identity, projectID int64, description string, startTime *time.Time) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateStart(projectID, description, startTime); err != nil {
		return nil, errors.NewValidationError("invalid time entry", err)
	}

	now := s.timeService.Now()
	start := now
	if startTime != nil {
		start = startTime.UTC()
	}
	entry := domain.NewTimeEntry(owner, projectID, description, start)

	err := runInTx(ctx, s.repo, s.queryTimeout, "create running entry", func(tx sqlite.Repository) error {
		if _, err := findProject(ctx, tx, owner.OrganizationID, projectID); err != nil {
			return err
		}
		if err := s.closeRunning(ctx, tx, owner, now); err != nil {
			return err
		}

		dbEntry := s.mapper.TimeEntry.ToDatabase(entry)
		if err := tx.CreateTimeEntry(ctx, &dbEntry); err != nil {
			return err
		}
		entry.ID = dbEntry.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("running entry created", "entry_id", entry.ID, "user_id", owner.UserID, "project_id", projectID)
	return &entry, nil
}

// StopRunningEntry closes the owner's running entry, applying the overrides
func (s *entryServiceImpl) StopRunningEntry(ctx context.Context, owner domain.Identity, overrides domain.StopOverrides) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateStopOverrides(overrides); err != nil {
		return nil, errors.NewValidationError("invalid stop request", err)
	}

	var stopped domain.TimeEntry
	err := runInTx(ctx, s.repo, s.queryTimeout, "stop running entry", func(tx sqlite.Repository) error {
		dbEntry, err := tx.GetRunningTimeEntry(ctx, owner.UserID)
		if err != nil {
			return err
		}
		if overrides.EntryID != nil && *overrides.EntryID != dbEntry.ID {
			return errors.NewConflictError(errors.CodeEntryMismatch,
				fmt.Sprintf("entry %d is not the running entry", *overrides.EntryID)).
				WithContext("running_entry_id", dbEntry.ID)
		}

		entry := s.mapper.TimeEntry.FromDatabase(*dbEntry)
		if overrides.Description != nil {
			entry.Description = *overrides.Description
		}
		if overrides.ProjectID != nil {
			if _, err := findProject(ctx, tx, owner.OrganizationID, *overrides.ProjectID); err != nil {
				return err
			}
			entry.ProjectID = *overrides.ProjectID
		}

		end := s.timeService.Now()
		if overrides.EndTime != nil {
			end = overrides.EndTime.UTC()
		}
		if end.Before(entry.StartTime) {
			return errors.NewInvalidInputError("end_time", end, "end time must not be before the entry's start time")
		}
		stopped = entry.Stop(end)

		dbStopped := s.mapper.TimeEntry.ToDatabase(stopped)
		return tx.UpdateTimeEntry(ctx, &dbStopped)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("running entry stopped", "entry_id", stopped.ID, "duration", *stopped.Duration)
	return &stopped, nil
}

// ResumeEntry reopens a closed entry, shifting its start forward by the time
// it sat closed so the tracked time is preserved
func (s *entryServiceImpl) ResumeEntry(ctx context.Context, owner domain.Identity, id int64) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateID("entry_id", id); err != nil {
		return nil, errors.NewValidationError("invalid entry id", err)
	}

	var resumed domain.TimeEntry
	err := runInTx(ctx, s.repo, s.queryTimeout, "resume entry", func(tx sqlite.Repository) error {
		entry, err := s.ownedEntry(ctx, tx, owner, id, "resume")
		if err != nil {
			return err
		}
		if entry.IsRunning() {
			return errors.NewConflictError(errors.CodeAlreadyRunning,
				fmt.Sprintf("time entry %d is already running", id)).
				WithContext("entry_id", id)
		}

		now := s.timeService.Now()
		if err := s.closeRunning(ctx, tx, owner, now); err != nil {
			return err
		}

		resumed = entry.Resume(now)
		dbEntry := s.mapper.TimeEntry.ToDatabase(resumed)
		return tx.UpdateTimeEntry(ctx, &dbEntry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entry resumed", "entry_id", id, "start_time", resumed.StartTime)
	return &resumed, nil
}

// UpdateEntry applies an explicit edit. Moving the start or end of a closed
// entry recomputes its duration unless one is supplied.
func (s *entryServiceImpl) UpdateEntry(ctx context.Context, owner domain.Identity, id int64, update domain.EntryUpdate) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateEntryUpdate(id, update); err != nil {
		return nil, errors.NewValidationError("invalid time entry update", err)
	}

	var updated domain.TimeEntry
	err := runInTx(ctx, s.repo, s.queryTimeout, "update entry", func(tx sqlite.Repository) error {
		entry, err := s.ownedEntry(ctx, tx, owner, id, "update")
		if err != nil {
			return err
		}

		if update.ProjectID != nil {
			if _, err := findProject(ctx, tx, owner.OrganizationID, *update.ProjectID); err != nil {
				return err
			}
			entry.ProjectID = *update.ProjectID
		}
		if update.Description != nil {
			entry.Description = *update.Description
		}
		if update.StartTime != nil {
			entry.StartTime = update.StartTime.UTC()
		}
		if update.EndTime != nil {
			end := update.EndTime.UTC()
			entry.EndTime = &end
		}

		switch {
		case update.Duration != nil:
			if entry.IsRunning() {
				return errors.NewInvalidInputError("duration", *update.Duration, "a running entry has no duration")
			}
			entry.Duration = update.Duration
		case entry.EndTime != nil:
			entry = entry.Stop(*entry.EndTime)
		}

		if err := s.validator.ValidateEntry(entry); err != nil {
			return errors.NewValidationError("invalid time entry", err)
		}

		updated = entry
		dbEntry := s.mapper.TimeEntry.ToDatabase(entry)
		return tx.UpdateTimeEntry(ctx, &dbEntry)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteEntry deletes one of the owner's entries
func (s *entryServiceImpl) DeleteEntry(ctx context.Context, owner domain.Identity, id int64) error {
	if err := s.validator.ValidateID("entry_id", id); err != nil {
		return errors.NewValidationError("invalid entry id", err)
	}

	return runInTx(ctx, s.repo, s.queryTimeout, "delete entry", func(tx sqlite.Repository) error {
		if _, err := s.ownedEntry(ctx, tx, owner, id, "delete"); err != nil {
			return err
		}
		return tx.DeleteTimeEntry(ctx, id)
	})
}

// GetRunningEntry returns the owner's running entry, or nil when none is running
func (s *entryServiceImpl) GetRunningEntry(ctx context.Context, owner domain.Identity) (*domain.TimeEntry, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	dbEntry, err := s.repo.GetRunningTimeEntry(ctx, owner.UserID)
	if errors.HasCode(err, errors.CodeNoRunningTimer) {
		return nil, nil
	}
	if err != nil {
		return nil, contextError("get running entry", ctx, err)
	}

	entry := s.mapper.TimeEntry.FromDatabase(*dbEntry)
	return &entry, nil
}

// ListEntries lists the owner's entries, most recent first
func (s *entryServiceImpl) ListEntries(ctx context.Context, owner domain.Identity, opts domain.ListOptions) ([]domain.TimeEntry, error) {
	if err := s.validator.ValidateListOptions(opts); err != nil {
		return nil, errors.NewValidationError("invalid list options", err)
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	dbEntries, err := s.repo.ListTimeEntries(ctx, owner.UserID, s.mapper.ListOptions.ToDatabase(opts))
	if err != nil {
		return nil, contextError("list entries", ctx, err)
	}
	return s.mapper.TimeEntry.FromDatabaseSlice(dbEntries), nil
}

// closeRunning closes every running entry of the owner at now
func (s *entryServiceImpl) closeRunning(ctx context.Context, tx sqlite.Repository, owner domain.Identity, now time.Time) error {
	closed, err := tx.CloseRunningTimeEntries(ctx, owner.UserID, now)
	if err != nil {
		return err
	}
	for _, entry := range closed {
		s.logger.Debug("closed running entry", "entry_id", entry.ID, "user_id", owner.UserID)
	}
	return nil
}

// ownedEntry loads an entry and checks it belongs to the owner
func (s *entryServiceImpl) ownedEntry(ctx context.Context, tx sqlite.Repository, owner domain.Identity, id int64, operation string) (domain.TimeEntry, error) {
	dbEntry, err := tx.GetTimeEntry(ctx, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if dbEntry.OrganizationID != owner.OrganizationID || dbEntry.UserID != owner.UserID {
		return domain.TimeEntry{}, errors.NewPermissionError(operation, fmt.Sprintf("time entry %d", id))
	}
	return s.mapper.TimeEntry.FromDatabase(*dbEntry), nil
}
