package domain

import (
	"timetrack/internal/repository/sqlite"
)

// ProjectMapper handles conversion between domain and database Project models.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToDatabase converts a domain Project to a database Project.
func (m *ProjectMapper) ToDatabase(domainProject Project) sqlite.Project {
	return sqlite.Project{
		ID:             domainProject.ID,
		OrganizationID: domainProject.OrganizationID,
		Name:           domainProject.Name,
	}
}

// FromDatabase converts a database Project to a domain Project.
func (m *ProjectMapper) FromDatabase(dbProject sqlite.Project) Project {
	return Project{
		ID:             dbProject.ID,
		OrganizationID: dbProject.OrganizationID,
		Name:           dbProject.Name,
	}
}

// FromDatabaseSlice converts database Projects to domain Projects.
func (m *ProjectMapper) FromDatabaseSlice(dbProjects []*sqlite.Project) []Project {
	domainProjects := make([]Project, len(dbProjects))
	for i, project := range dbProjects {
		domainProjects[i] = m.FromDatabase(*project)
	}
	return domainProjects
}

// TimeEntryMapper handles conversion between domain and database TimeEntry models.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToDatabase converts a domain TimeEntry to a database TimeEntry.
func (m *TimeEntryMapper) ToDatabase(domainEntry TimeEntry) sqlite.TimeEntry {
	return sqlite.TimeEntry{
		ID:             domainEntry.ID,
		UserID:         domainEntry.UserID,
		OrganizationID: domainEntry.OrganizationID,
		ProjectID:      domainEntry.ProjectID,
		Description:    domainEntry.Description,
		StartTime:      domainEntry.StartTime,
		EndTime:        domainEntry.EndTime,
		Duration:       domainEntry.Duration,
	}
}

// FromDatabase converts a database TimeEntry to a domain TimeEntry.
func (m *TimeEntryMapper) FromDatabase(dbEntry sqlite.TimeEntry) TimeEntry {
	return TimeEntry{
		ID:             dbEntry.ID,
		UserID:         dbEntry.UserID,
		OrganizationID: dbEntry.OrganizationID,
		ProjectID:      dbEntry.ProjectID,
		Description:    dbEntry.Description,
		StartTime:      dbEntry.StartTime,
		EndTime:        dbEntry.EndTime,
		Duration:       dbEntry.Duration,
	}
}

// FromDatabaseSlice converts database TimeEntries to domain TimeEntries.
func (m *TimeEntryMapper) FromDatabaseSlice(dbEntries []*sqlite.TimeEntry) []TimeEntry {
	domainEntries := make([]TimeEntry, len(dbEntries))
	for i, entry := range dbEntries {
		domainEntries[i] = m.FromDatabase(*entry)
	}
	return domainEntries
}

// ListOptionsMapper handles conversion between domain and database ListOptions.
type ListOptionsMapper struct{}

// NewListOptionsMapper creates a new ListOptionsMapper instance.
func NewListOptionsMapper() *ListOptionsMapper {
	return &ListOptionsMapper{}
}

// ToDatabase converts domain ListOptions to database ListOptions.
func (m *ListOptionsMapper) ToDatabase(domainOpts ListOptions) sqlite.ListOptions {
	return sqlite.ListOptions{
		ProjectID: domainOpts.ProjectID,
		Since:     domainOpts.Since,
		Limit:     domainOpts.Limit,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Project     *ProjectMapper
	TimeEntry   *TimeEntryMapper
	ListOptions *ListOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Project:     NewProjectMapper(),
		TimeEntry:   NewTimeEntryMapper(),
		ListOptions: NewListOptionsMapper(),
	}
}
