package cli

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"timetrack/internal/api"
	"timetrack/internal/domain"
	"timetrack/internal/errors"
	"timetrack/internal/services"
	"timetrack/internal/timer"
)

// manualClock is shared by the mock server and the timer. Its tickers never
// fire; tests advance it between commands.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) NewTicker(time.Duration) timer.Ticker { return idleTicker{} }

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }

func (idleTicker) Stop() {}

// mockMirror keeps the session records in memory across commands
type mockMirror struct {
	mu     sync.Mutex
	paused *timer.PausedRecord
	active *timer.ActiveRecord
}

func (m *mockMirror) LoadPaused() (*timer.PausedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused == nil {
		return nil, nil
	}
	rec := *m.paused
	return &rec, nil
}

func (m *mockMirror) SavePaused(rec timer.PausedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = &rec
	return nil
}

func (m *mockMirror) ClearPaused() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = nil
	return nil
}

func (m *mockMirror) LoadActive() (*timer.ActiveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, nil
	}
	rec := *m.active
	return &rec, nil
}

func (m *mockMirror) SaveActive(rec timer.ActiveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = &rec
	return nil
}

func (m *mockMirror) ClearActive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = nil
	return nil
}

func (m *mockMirror) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused, m.active = nil, nil
	return nil
}

// mockBusinessAPI implements the BusinessAPI interface in memory for one user
type mockBusinessAPI struct {
	clock    *manualClock
	time     services.TimeService
	projects map[int64]*domain.Project
	entries  map[int64]*domain.TimeEntry

	nextProjectID int64
	nextEntryID   int64

	// failNext is returned by the next server write
	failNext error
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI(clock *manualClock) *mockBusinessAPI {
	return &mockBusinessAPI{
		clock:    clock,
		time:     services.NewTimeService(clock.Now),
		projects: make(map[int64]*domain.Project),
		entries:  make(map[int64]*domain.TimeEntry),

		nextProjectID: 1,
		nextEntryID:   1,
	}
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

func (m *mockBusinessAPI) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockBusinessAPI) running() *domain.TimeEntry {
	for _, entry := range m.entries {
		if entry.IsRunning() {
			return entry
		}
	}
	return nil
}

func (m *mockBusinessAPI) closeRunning(end time.Time) {
	if entry := m.running(); entry != nil {
		*entry = entry.Stop(end)
	}
}

func (m *mockBusinessAPI) CreateRunningEntry(ctx context.Context, projectID int64, description string, startTime *time.Time) (int64, error) {
	if err := m.fail(); err != nil {
		return 0, err
	}
	if _, ok := m.projects[projectID]; !ok {
		return 0, errors.NewNotFoundError("project", strconv.FormatInt(projectID, 10))
	}

	now := m.clock.Now()
	m.closeRunning(now)

	start := now
	if startTime != nil {
		start = *startTime
	}
	entry := &domain.TimeEntry{
		ID:             m.nextEntryID,
		UserID:         1,
		OrganizationID: 1,
		ProjectID:      projectID,
		Description:    description,
		StartTime:      start,
	}
	m.entries[entry.ID] = entry
	m.nextEntryID++
	return entry.ID, nil
}

func (m *mockBusinessAPI) StopRunningEntry(ctx context.Context, overrides domain.StopOverrides) error {
	if err := m.fail(); err != nil {
		return err
	}
	entry := m.running()
	if entry == nil {
		return errors.NewNoRunningTimerError(1)
	}
	if overrides.EntryID != nil && *overrides.EntryID != entry.ID {
		return errors.NewConflictError(errors.CodeEntryMismatch, "the running entry changed")
	}
	if overrides.Description != nil {
		entry.Description = *overrides.Description
	}
	if overrides.ProjectID != nil {
		entry.ProjectID = *overrides.ProjectID
	}
	end := m.clock.Now()
	if overrides.EndTime != nil {
		end = *overrides.EndTime
	}
	*entry = entry.Stop(end)
	return nil
}

func (m *mockBusinessAPI) ResumeEntry(ctx context.Context, id int64) (int64, error) {
	if err := m.fail(); err != nil {
		return 0, err
	}
	entry, ok := m.entries[id]
	if !ok {
		return 0, errors.NewNotFoundError("time entry", strconv.FormatInt(id, 10))
	}
	if entry.IsRunning() {
		return 0, errors.NewConflictError(errors.CodeAlreadyRunning, "the entry is already running")
	}
	now := m.clock.Now()
	m.closeRunning(now)
	*entry = entry.Resume(now)
	return entry.ID, nil
}

func (m *mockBusinessAPI) UpdateEntry(ctx context.Context, id int64, update domain.EntryUpdate) error {
	_, err := m.EditEntry(ctx, id, update)
	return err
}

func (m *mockBusinessAPI) DeleteEntry(ctx context.Context, id int64) error {
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.entries[id]; !ok {
		return errors.NewNotFoundError("time entry", strconv.FormatInt(id, 10))
	}
	delete(m.entries, id)
	return nil
}

func (m *mockBusinessAPI) GetRunningEntryForUser(ctx context.Context) (*domain.TimeEntry, error) {
	if entry := m.running(); entry != nil {
		copied := *entry
		return &copied, nil
	}
	return nil, nil
}

func (m *mockBusinessAPI) ServerNow() time.Time {
	return m.clock.Now()
}

func (m *mockBusinessAPI) Bootstrap(ctx context.Context) (timer.Bootstrap, error) {
	now := m.ServerNow()
	boot := timer.Bootstrap{ServerNow: &now}
	if entry := m.running(); entry != nil {
		boot.Running = &timer.RunningEntry{
			ID:          entry.ID,
			ProjectID:   entry.ProjectID,
			ProjectName: m.projects[entry.ProjectID].Name,
			Description: entry.Description,
			StartTime:   entry.StartTime,
		}
	}
	return boot, nil
}

func (m *mockBusinessAPI) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("project name is required", nil)
	}
	project := &domain.Project{ID: m.nextProjectID, OrganizationID: 1, Name: name}
	m.projects[project.ID] = project
	m.nextProjectID++
	copied := *project
	return &copied, nil
}

func (m *mockBusinessAPI) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects := make([]domain.Project, 0, len(m.projects))
	for _, project := range m.projects {
		projects = append(projects, *project)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (m *mockBusinessAPI) ResolveProject(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if project, ok := m.projects[id]; ok {
			copied := *project
			return &copied, nil
		}
	}
	for _, project := range m.projects {
		if strings.EqualFold(project.Name, ref) {
			copied := *project
			return &copied, nil
		}
	}
	return nil, errors.NewNotFoundError("project", ref)
}

func (m *mockBusinessAPI) ListEntries(ctx context.Context, filter api.EntryFilter) ([]api.EntryView, error) {
	var since *time.Time
	if filter.Since != "" {
		timeRange, err := m.time.ParseTimeRange(filter.Since)
		if err != nil {
			return nil, err
		}
		since = &timeRange.Start
	}
	var projectID int64
	if filter.Project != "" {
		project, err := m.ResolveProject(ctx, filter.Project)
		if err != nil {
			return nil, err
		}
		projectID = project.ID
	}

	views := []api.EntryView{}
	for _, entry := range m.entries {
		if since != nil && entry.StartTime.Before(*since) {
			continue
		}
		if projectID != 0 && entry.ProjectID != projectID {
			continue
		}
		views = append(views, m.view(*entry))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Entry.StartTime.After(views[j].Entry.StartTime)
	})
	if filter.Limit > 0 && len(views) > filter.Limit {
		views = views[:filter.Limit]
	}
	return views, nil
}

func (m *mockBusinessAPI) EditEntry(ctx context.Context, id int64, update domain.EntryUpdate) (*api.EntryView, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, errors.NewValidationError("no changes given", nil)
	}
	entry, ok := m.entries[id]
	if !ok {
		return nil, errors.NewNotFoundError("time entry", strconv.FormatInt(id, 10))
	}

	if update.Description != nil {
		entry.Description = *update.Description
	}
	if update.ProjectID != nil {
		entry.ProjectID = *update.ProjectID
	}
	if update.StartTime != nil {
		entry.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		*entry = entry.Stop(*update.EndTime)
	}
	if update.Duration != nil {
		duration := *update.Duration
		entry.Duration = &duration
	}

	view := m.view(*entry)
	return &view, nil
}

func (m *mockBusinessAPI) view(entry domain.TimeEntry) api.EntryView {
	return api.EntryView{
		Entry:       entry,
		ProjectName: m.projects[entry.ProjectID].Name,
		Duration:    m.time.CalculateDuration(entry),
	}
}

func (m *mockBusinessAPI) FormatClock(seconds int64) string {
	return m.time.FormatClock(time.Duration(seconds) * time.Second)
}

func (m *mockBusinessAPI) FormatRelative(t time.Time) string {
	return m.time.FormatRelative(t)
}
