package sqlite

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "tt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createProject(t *testing.T, repo *SQLiteRepository, name string) *Project {
	t.Helper()
	project := &Project{OrganizationID: 1, Name: name}
	require.NoError(t, repo.CreateProject(context.Background(), project))
	return project
}

func timePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }

func TestProjects(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	website := createProject(t, repo, "Website")
	createProject(t, repo, "Accounting")
	require.NoError(t, repo.CreateProject(ctx, &Project{OrganizationID: 2, Name: "Other org"}))
	assert.Greater(t, website.ID, int64(0))

	retrieved, err := repo.GetProject(ctx, website.ID)
	require.NoError(t, err)
	assert.Equal(t, website, retrieved)

	projects, err := repo.ListProjects(ctx, 1)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Accounting", projects[0].Name)
	assert.Equal(t, "Website", projects[1].Name)

	_, err = repo.GetProject(ctx, 999)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	// Names are unique per organization
	err = repo.CreateProject(ctx, &Project{OrganizationID: 1, Name: "Website"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDatabase))
}

func TestCreateAndGetTimeEntry(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	project := createProject(t, repo, "Website")

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := &TimeEntry{
		UserID:         1,
		OrganizationID: 1,
		ProjectID:      project.ID,
		Description:    "landing page",
		StartTime:      start,
	}
	require.NoError(t, repo.CreateTimeEntry(ctx, entry))
	assert.Greater(t, entry.ID, int64(0))

	retrieved, err := repo.GetTimeEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, retrieved.ID)
	assert.Equal(t, "landing page", retrieved.Description)
	assert.True(t, start.Equal(retrieved.StartTime))
	assert.Nil(t, retrieved.EndTime)
	assert.Nil(t, retrieved.Duration)

	_, err = repo.GetTimeEntry(ctx, 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetRunningTimeEntry(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	project := createProject(t, repo, "Website")

	_, err := repo.GetRunningTimeEntry(ctx, 1)
	assert.True(t, errors.HasCode(err, errors.CodeNoRunningTimer))

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	closed := &TimeEntry{UserID: 1, OrganizationID: 1, ProjectID: project.ID, StartTime: start.Add(-time.Hour), EndTime: timePtr(start), Duration: int64Ptr(3600)}
	running := &TimeEntry{UserID: 1, OrganizationID: 1, ProjectID: project.ID, StartTime: start}
	otherUser := &TimeEntry{UserID: 2, OrganizationID: 1, ProjectID: project.ID, StartTime: start}
	for _, e := range []*TimeEntry{closed, running, otherUser} {
		require.NoError(t, repo.CreateTimeEntry(ctx, e))
	}

	result, err := repo.GetRunningTimeEntry(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, running.ID, result.ID)
}

func TestCloseRunningTimeEntries(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	project := createProject(t, repo, "Website")

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	running := &TimeEntry{UserID: 1, OrganizationID: 1, ProjectID: project.ID, StartTime: start}
	require.NoError(t, repo.CreateTimeEntry(ctx, running))

	closed, err := repo.CloseRunningTimeEntries(ctx, 1, start.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, closed, 1)

	stored, err := repo.GetTimeEntry(ctx, running.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EndTime)
	require.NotNil(t, stored.Duration)
	assert.Equal(t, int64(5400), *stored.Duration)

	// Nothing left to close
	closed, err = repo.CloseRunningTimeEntries(ctx, 1, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestListTimeEntries(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	website := createProject(t, repo, "Website")
	accounting := createProject(t, repo, "Accounting")

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []*TimeEntry{
		{UserID: 1, OrganizationID: 1, ProjectID: website.ID, StartTime: base, EndTime: timePtr(base.Add(time.Hour))},
		{UserID: 1, OrganizationID: 1, ProjectID: accounting.ID, StartTime: base.Add(2 * time.Hour), EndTime: timePtr(base.Add(3 * time.Hour))},
		{UserID: 1, OrganizationID: 1, ProjectID: website.ID, StartTime: base.Add(4 * time.Hour)},
		{UserID: 2, OrganizationID: 1, ProjectID: website.ID, StartTime: base.Add(5 * time.Hour)},
	}
	for _, e := range entries {
		require.NoError(t, repo.CreateTimeEntry(ctx, e))
	}

	tests := []struct {
		name     string
		opts     ListOptions
		expected []int64
	}{
		{
			name:     "all entries of the user, most recent first",
			opts:     ListOptions{},
			expected: []int64{entries[2].ID, entries[1].ID, entries[0].ID},
		},
		{
			name:     "filtered by project",
			opts:     ListOptions{ProjectID: &website.ID},
			expected: []int64{entries[2].ID, entries[0].ID},
		},
		{
			name:     "since a point in time",
			opts:     ListOptions{Since: timePtr(base.Add(90 * time.Minute))},
			expected: []int64{entries[2].ID, entries[1].ID},
		},
		{
			name:     "limited",
			opts:     ListOptions{Limit: 1},
			expected: []int64{entries[2].ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.ListTimeEntries(ctx, 1, tt.opts)
			require.NoError(t, err)
			var ids []int64
			for _, e := range result {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestUpdateAndDeleteTimeEntry(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	project := createProject(t, repo, "Website")

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := &TimeEntry{UserID: 1, OrganizationID: 1, ProjectID: project.ID, StartTime: start}
	require.NoError(t, repo.CreateTimeEntry(ctx, entry))

	entry.Description = "renamed"
	entry.EndTime = timePtr(start.Add(30 * time.Minute))
	entry.Duration = int64Ptr(1800)
	require.NoError(t, repo.UpdateTimeEntry(ctx, entry))

	stored, err := repo.GetTimeEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Description)
	assert.Equal(t, int64(1800), *stored.Duration)

	require.NoError(t, repo.DeleteTimeEntry(ctx, entry.ID))
	err = repo.DeleteTimeEntry(ctx, entry.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	err = repo.UpdateTimeEntry(ctx, &TimeEntry{ID: 999, StartTime: start})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestWithinTx(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		var id int64
		err := repo.WithinTx(ctx, func(tx Repository) error {
			project := &Project{OrganizationID: 1, Name: "Committed"}
			if err := tx.CreateProject(ctx, project); err != nil {
				return err
			}
			id = project.ID
			return nil
		})
		require.NoError(t, err)

		_, err = repo.GetProject(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := stderrors.New("boom")
		var id int64
		err := repo.WithinTx(ctx, func(tx Repository) error {
			project := &Project{OrganizationID: 1, Name: "Rolled back"}
			if err := tx.CreateProject(ctx, project); err != nil {
				return err
			}
			id = project.ID
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repo.GetProject(ctx, id)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})
}

type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		default:
			if v == nil {
				continue
			}
			if scanner, ok := d.(interface{ Scan(interface{}) error }); ok {
				if err := scanner.Scan(v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func TestScanTimeEntry(t *testing.T) {
	tests := []struct {
		name        string
		row         fakeRow
		expectError bool
		running     bool
	}{
		{
			name:    "running entry",
			row:     fakeRow{values: []interface{}{int64(1), int64(2), int64(3), int64(4), "desc", "2025-03-01T09:00:00Z", nil, nil}},
			running: true,
		},
		{
			name: "stopped entry",
			row:  fakeRow{values: []interface{}{int64(1), int64(2), int64(3), int64(4), "", "2025-03-01T09:00:00Z", "2025-03-01T10:00:00Z", int64(3600)}},
		},
		{
			name:        "bad start time",
			row:         fakeRow{values: []interface{}{int64(1), int64(2), int64(3), int64(4), "", "yesterday", nil, nil}},
			expectError: true,
		},
		{
			name:        "scan error",
			row:         fakeRow{err: stderrors.New("scan failed")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ScanTimeEntry(tt.row)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, entry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(4), entry.ProjectID)
			if tt.running {
				assert.Nil(t, entry.EndTime)
				assert.Nil(t, entry.Duration)
			} else {
				require.NotNil(t, entry.EndTime)
				assert.Equal(t, int64(3600), *entry.Duration)
			}
		})
	}
}
