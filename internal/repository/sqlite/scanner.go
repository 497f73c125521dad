package sqlite

import (
	"database/sql"
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

const timeEntryColumns = "id, user_id, organization_id, project_id, description, start_time, end_time, duration"

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*TimeEntry, error) {
	entry := &TimeEntry{}
	var startTime string
	var endTime sql.NullString
	var duration sql.NullInt64

	err := scanner.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.OrganizationID,
		&entry.ProjectID,
		&entry.Description,
		&startTime,
		&endTime,
		&duration,
	)
	if err != nil {
		return nil, err
	}

	entry.StartTime, err = ParseTimeFromDB(startTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time of entry %d: %w", entry.ID, err)
	}

	if endTime.Valid {
		end, err := ParseTimeFromDB(endTime.String)
		if err != nil {
			return nil, fmt.Errorf("parse end_time of entry %d: %w", entry.ID, err)
		}
		entry.EndTime = &end
	}

	if duration.Valid {
		seconds := duration.Int64
		entry.Duration = &seconds
	}

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*TimeEntry, error) {
	var entries []*TimeEntry
	for rows.Next() {
		entry, err := ScanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ScanProject scans a single project from a database row
func ScanProject(scanner Scanner) (*Project, error) {
	project := &Project{}
	err := scanner.Scan(&project.ID, &project.OrganizationID, &project.Name)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ScanProjects scans multiple projects from database rows
func ScanProjects(rows Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		project, err := ScanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}
