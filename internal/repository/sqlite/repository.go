package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"timetrack/internal/errors"
	"timetrack/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations
type Repository interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context, organizationID int64) ([]*Project, error)

	// Time entry operations
	CreateTimeEntry(ctx context.Context, entry *TimeEntry) error
	GetTimeEntry(ctx context.Context, id int64) (*TimeEntry, error)
	ListTimeEntries(ctx context.Context, userID int64, opts ListOptions) ([]*TimeEntry, error)
	GetRunningTimeEntry(ctx context.Context, userID int64) (*TimeEntry, error)
	CloseRunningTimeEntries(ctx context.Context, userID int64, endTime time.Time) ([]*TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id int64) error

	// WithinTx runs fn with a Repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Repository) error) error

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	conn *sql.DB
	db   DBTX
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{conn: db, db: db}, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		return dbPath
	}
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// WithinTx runs fn inside a transaction
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		// Already bound to a transaction.
		return fn(r)
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}

	if err := fn(&SQLiteRepository{db: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}

// CreateProject creates a new project
func (r *SQLiteRepository) CreateProject(ctx context.Context, project *Project) error {
	query := `INSERT INTO projects (organization_id, name) VALUES (?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, project.OrganizationID, project.Name)
	if err != nil {
		return err
	}
	project.ID = id
	return nil
}

// GetProject retrieves a project by ID
func (r *SQLiteRepository) GetProject(ctx context.Context, id int64) (*Project, error) {
	query := `SELECT id, organization_id, name FROM projects WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanProject, "project", fmt.Sprintf("%d", id), id)
}

// ListProjects retrieves all projects of an organization
func (r *SQLiteRepository) ListProjects(ctx context.Context, organizationID int64) ([]*Project, error) {
	query := `SELECT id, organization_id, name FROM projects WHERE organization_id = ? ORDER BY name ASC`
	return QueryMultiple(ctx, r.db, query, ScanProjects, "projects", organizationID)
}

// CreateTimeEntry creates a new time entry
func (r *SQLiteRepository) CreateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	query := `
	INSERT INTO time_entries (user_id, organization_id, project_id, description, start_time, end_time, duration)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query,
		entry.UserID,
		entry.OrganizationID,
		entry.ProjectID,
		entry.Description,
		FormatTimeForDB(entry.StartTime),
		FormatTimePtrForDB(entry.EndTime),
		FormatInt64PtrForDB(entry.Duration),
	)
	if err != nil {
		return err
	}

	entry.ID = id
	return nil
}

// GetTimeEntry retrieves a time entry by ID
func (r *SQLiteRepository) GetTimeEntry(ctx context.Context, id int64) (*TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTimeEntry, "time entry", fmt.Sprintf("%d", id), id)
}

// GetRunningTimeEntry retrieves the user's entry without an end time
func (r *SQLiteRepository) GetRunningTimeEntry(ctx context.Context, userID int64) (*TimeEntry, error) {
	query := `
	SELECT ` + timeEntryColumns + `
	FROM time_entries
	WHERE user_id = ? AND end_time IS NULL
	ORDER BY start_time DESC
	LIMIT 1`

	entry, err := QuerySingle(ctx, r.db, query, ScanTimeEntry, "time entry", "running", userID)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil, errors.NewNoRunningTimerError(userID)
	}
	return entry, err
}

// CloseRunningTimeEntries sets the end time and duration of every running
// entry of the user and returns the closed entries
func (r *SQLiteRepository) CloseRunningTimeEntries(ctx context.Context, userID int64, endTime time.Time) ([]*TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE user_id = ? AND end_time IS NULL`
	running, err := QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries", userID)
	if err != nil {
		return nil, err
	}

	for _, entry := range running {
		end := endTime
		if end.Before(entry.StartTime) {
			end = entry.StartTime
		}
		seconds := int64(end.Sub(entry.StartTime) / time.Second)
		entry.EndTime = &end
		entry.Duration = &seconds
		if err := r.UpdateTimeEntry(ctx, entry); err != nil {
			return nil, err
		}
	}

	return running, nil
}

// ListTimeEntries retrieves a user's time entries, most recent first
func (r *SQLiteRepository) ListTimeEntries(ctx context.Context, userID int64, opts ListOptions) ([]*TimeEntry, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}

	if opts.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *opts.ProjectID)
	}
	if opts.Since != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, FormatTimeForDB(*opts.Since))
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY start_time DESC, id DESC`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	return QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries", args...)
}

// UpdateTimeEntry updates an existing time entry
func (r *SQLiteRepository) UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	query := `
	UPDATE time_entries
	SET project_id = ?, description = ?, start_time = ?, end_time = ?, duration = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "time entry", fmt.Sprintf("%d", entry.ID),
		entry.ProjectID,
		entry.Description,
		FormatTimeForDB(entry.StartTime),
		FormatTimePtrForDB(entry.EndTime),
		FormatInt64PtrForDB(entry.Duration),
		entry.ID,
	)
}

// DeleteTimeEntry deletes a time entry by ID
func (r *SQLiteRepository) DeleteTimeEntry(ctx context.Context, id int64) error {
	query := `DELETE FROM time_entries WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "time entry", fmt.Sprintf("%d", id), id)
}
