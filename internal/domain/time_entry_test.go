package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := base.Add(offset)
	return &t
}

func TestNewTimeEntry(t *testing.T) {
	owner := Identity{UserID: 7, OrganizationID: 3}

	result := NewTimeEntry(owner, 2, "design review", base)

	assert.Equal(t, int64(7), result.UserID)
	assert.Equal(t, int64(3), result.OrganizationID)
	assert.Equal(t, int64(2), result.ProjectID)
	assert.Equal(t, "design review", result.Description)
	assert.Equal(t, base, result.StartTime)
	assert.Nil(t, result.EndTime)
	assert.Nil(t, result.Duration)
	assert.True(t, result.IsRunning())
}

func TestTimeEntry_IsRunning(t *testing.T) {
	tests := []struct {
		name     string
		entry    TimeEntry
		expected bool
	}{
		{
			name:     "running entry with nil end time",
			entry:    TimeEntry{ID: 1, ProjectID: 1, StartTime: base},
			expected: true,
		},
		{
			name:     "stopped entry with end time",
			entry:    TimeEntry{ID: 1, ProjectID: 1, StartTime: base, EndTime: at(time.Hour)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.IsRunning())
		})
	}
}

func TestTimeEntry_Stop(t *testing.T) {
	entry := TimeEntry{ID: 1, ProjectID: 1, StartTime: base}

	result := entry.Stop(base.Add(90 * time.Minute))

	assert.False(t, result.IsRunning())
	assert.Equal(t, base.Add(90*time.Minute), *result.EndTime)
	assert.Equal(t, int64(5400), *result.Duration)
	// Original entry should be unchanged
	assert.True(t, entry.IsRunning())
}

func TestTimeEntry_Resume(t *testing.T) {
	tests := []struct {
		name          string
		entry         TimeEntry
		now           time.Time
		expectedStart time.Time
	}{
		{
			name:          "shifts start by the gap since the end",
			entry:         TimeEntry{StartTime: base, EndTime: at(10 * time.Minute)},
			now:           base.Add(40 * time.Minute),
			expectedStart: base.Add(30 * time.Minute),
		},
		{
			name:          "end in the future does not move start backwards",
			entry:         TimeEntry{StartTime: base, EndTime: at(10 * time.Minute)},
			now:           base.Add(5 * time.Minute),
			expectedStart: base,
		},
		{
			name:          "running entry is left alone",
			entry:         TimeEntry{StartTime: base},
			now:           base.Add(time.Hour),
			expectedStart: base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.entry.Resume(tt.now)
			assert.Equal(t, tt.expectedStart, result.StartTime)
			assert.Nil(t, result.EndTime)
			assert.Nil(t, result.Duration)
		})
	}
}

func TestTimeEntry_ResumeKeepsTrackedTime(t *testing.T) {
	entry := TimeEntry{StartTime: base}.Stop(base.Add(25 * time.Minute))
	now := base.Add(3 * time.Hour)

	resumed := entry.Resume(now)

	assert.Equal(t, 25*time.Minute, resumed.Elapsed(now))
}

func TestTimeEntry_Elapsed(t *testing.T) {
	duration := int64(120)
	tests := []struct {
		name     string
		entry    TimeEntry
		expected time.Duration
	}{
		{
			name:     "running",
			entry:    TimeEntry{StartTime: base},
			expected: time.Hour,
		},
		{
			name:     "stopped with stored duration",
			entry:    TimeEntry{StartTime: base, EndTime: at(10 * time.Minute), Duration: &duration},
			expected: 2 * time.Minute,
		},
		{
			name:     "stopped without stored duration",
			entry:    TimeEntry{StartTime: base, EndTime: at(10 * time.Minute)},
			expected: 10 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.Elapsed(base.Add(time.Hour)))
		})
	}
}

func TestTimeEntry_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		entry    TimeEntry
		expected bool
	}{
		{
			name:     "valid running entry",
			entry:    TimeEntry{UserID: 1, ProjectID: 1, StartTime: base},
			expected: true,
		},
		{
			name:     "valid stopped entry",
			entry:    TimeEntry{UserID: 1, ProjectID: 1, StartTime: base, EndTime: at(time.Minute)},
			expected: true,
		},
		{
			name:     "missing user",
			entry:    TimeEntry{ProjectID: 1, StartTime: base},
			expected: false,
		},
		{
			name:     "missing project",
			entry:    TimeEntry{UserID: 1, StartTime: base},
			expected: false,
		},
		{
			name:     "zero start time",
			entry:    TimeEntry{UserID: 1, ProjectID: 1},
			expected: false,
		},
		{
			name:     "end before start",
			entry:    TimeEntry{UserID: 1, ProjectID: 1, StartTime: base, EndTime: at(-time.Minute)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.IsValid())
		})
	}
}

func TestDurationSeconds(t *testing.T) {
	assert.Equal(t, int64(61), DurationSeconds(base, base.Add(61500*time.Millisecond)))
	assert.Equal(t, int64(0), DurationSeconds(base, base.Add(-time.Minute)))
}

func TestEntryUpdate_IsEmpty(t *testing.T) {
	description := "x"
	assert.True(t, EntryUpdate{}.IsEmpty())
	assert.False(t, EntryUpdate{Description: &description}.IsEmpty())
	assert.False(t, EntryUpdate{EndTime: at(0)}.IsEmpty())
}

func TestProject(t *testing.T) {
	project := NewProject(1, "Website")
	assert.True(t, project.IsValid())
	assert.Equal(t, "Website", project.String())

	assert.False(t, NewProject(1, "").IsValid())
	assert.False(t, NewProject(0, "Website").IsValid())
}
