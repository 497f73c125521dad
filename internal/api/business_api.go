package api

import (
	"context"
	"log/slog"
	"time"

	"timetrack/internal/domain"
	"timetrack/internal/services"
	"timetrack/internal/timer"
)

// EntryView is a time entry with its project name and formatted duration
type EntryView struct {
	Entry       domain.TimeEntry `json:"entry"`
	ProjectName string           `json:"project_name"`
	Duration    string           `json:"duration"` // Human-readable
}

// EntryFilter narrows an entry listing. Empty fields do not filter.
type EntryFilter struct {
	Since   string // Time shorthand such as "1d" or "2h"
	Project string // Project id or name
	Limit   int
}

// BusinessAPI defines the workflows the command line host runs for one user
type BusinessAPI interface {
	API

	// ========== Session ==========

	// Bootstrap returns the server time and the running entry a timer session starts from
	Bootstrap(ctx context.Context) (timer.Bootstrap, error)

	// ========== Projects ==========

	CreateProject(ctx context.Context, name string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// ResolveProject finds a project by id or name
	ResolveProject(ctx context.Context, ref string) (*domain.Project, error)

	// ========== Entries ==========

	// ListEntries returns the user's entries, most recent first
	ListEntries(ctx context.Context, filter EntryFilter) ([]EntryView, error)

	// EditEntry applies an explicit edit and returns the stored result
	EditEntry(ctx context.Context, id int64, update domain.EntryUpdate) (*EntryView, error)

	// ========== Formatting ==========

	FormatClock(seconds int64) string
	FormatRelative(t time.Time) string
}

// NewBusinessAPI creates a BusinessAPI bound to identity
func NewBusinessAPI(container *services.ServiceContainer, identity domain.Identity, logger *slog.Logger) BusinessAPI {
	return newImpl(container, identity, logger)
}

// ========== Session ==========

func (a *apiImpl) Bootstrap(ctx context.Context) (timer.Bootstrap, error) {
	now := a.ServerNow()
	boot := timer.Bootstrap{ServerNow: &now}

	entry, err := a.GetRunningEntryForUser(ctx)
	if err != nil {
		return timer.Bootstrap{}, err
	}
	if entry == nil {
		return boot, nil
	}

	running := &timer.RunningEntry{
		ID:          entry.ID,
		ProjectID:   entry.ProjectID,
		Description: entry.Description,
		StartTime:   entry.StartTime,
	}
	if project, err := a.projects.GetProject(ctx, a.identity.OrganizationID, entry.ProjectID); err == nil {
		running.ProjectName = project.Name
	} else {
		// The name is display only
		a.logger.Warn("project lookup failed", "project_id", entry.ProjectID, "error", err)
	}
	boot.Running = running
	return boot, nil
}

// ========== Projects ==========

func (a *apiImpl) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	return a.projects.CreateProject(ctx, a.identity.OrganizationID, name)
}

func (a *apiImpl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return a.projects.ListProjects(ctx, a.identity.OrganizationID)
}

func (a *apiImpl) ResolveProject(ctx context.Context, ref string) (*domain.Project, error) {
	return a.projects.ResolveProject(ctx, a.identity.OrganizationID, ref)
}

// ========== Entries ==========

func (a *apiImpl) ListEntries(ctx context.Context, filter EntryFilter) ([]EntryView, error) {
	opts := domain.ListOptions{Limit: filter.Limit}
	if filter.Since != "" {
		timeRange, err := a.time.ParseTimeRange(filter.Since)
		if err != nil {
			return nil, err
		}
		opts.Since = &timeRange.Start
	}
	if filter.Project != "" {
		project, err := a.ResolveProject(ctx, filter.Project)
		if err != nil {
			return nil, err
		}
		opts.ProjectID = &project.ID
	}

	entries, err := a.entries.ListEntries(ctx, a.identity, opts)
	if err != nil {
		return nil, err
	}

	names, err := a.projectNames(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, a.view(entry, names))
	}
	return views, nil
}

func (a *apiImpl) EditEntry(ctx context.Context, id int64, update domain.EntryUpdate) (*EntryView, error) {
	entry, err := a.entries.UpdateEntry(ctx, a.identity, id, update)
	if err != nil {
		return nil, err
	}

	names, err := a.projectNames(ctx)
	if err != nil {
		return nil, err
	}
	view := a.view(*entry, names)
	return &view, nil
}

func (a *apiImpl) projectNames(ctx context.Context) (map[int64]string, error) {
	projects, err := a.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(projects))
	for _, project := range projects {
		names[project.ID] = project.Name
	}
	return names, nil
}

func (a *apiImpl) view(entry domain.TimeEntry, names map[int64]string) EntryView {
	return EntryView{
		Entry:       entry,
		ProjectName: names[entry.ProjectID],
		Duration:    a.time.CalculateDuration(entry),
	}
}

// ========== Formatting ==========

func (a *apiImpl) FormatClock(seconds int64) string {
	return a.time.FormatClock(time.Duration(seconds) * time.Second)
}

func (a *apiImpl) FormatRelative(t time.Time) string {
	return a.time.FormatRelative(t)
}
