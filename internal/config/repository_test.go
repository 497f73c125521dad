package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetrack/internal/repository/sqlite"
	"timetrack/internal/timer"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewConfig()
	cfg.Database.Dir = filepath.Join(t.TempDir(), "data")
	cfg.Mirror.Dir = filepath.Join(t.TempDir(), "session")
	return cfg
}

func TestCreateRepository(t *testing.T) {
	cfg := testConfig(t)

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	defer repo.Close()

	assert.FileExists(t, cfg.GetDatabasePath())

	project := &sqlite.Project{OrganizationID: 1, Name: "Website"}
	require.NoError(t, repo.CreateProject(context.Background(), project))
	assert.NotZero(t, project.ID)
}

func TestCreateTestRepository(t *testing.T) {
	repo, err := CreateTestRepository()
	require.NoError(t, err)
	defer repo.Close()

	projects, err := repo.ListProjects(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateMirror(t *testing.T) {
	cfg := testConfig(t)

	store, err := CreateMirror(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.ForUser(1).SavePaused(timer.PausedRecord{ID: 42}))
	require.NoError(t, store.Close())

	assert.DirExists(t, cfg.Mirror.Dir)
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		value    string
		expected Environment
	}{
		{"development", Development},
		{"testing", Testing},
		{"production", Production},
		{"", Production},
		{"staging", Production},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TT_ENV", tt.value)
			assert.Equal(t, tt.expected, GetEnvironment())
		})
	}
}

func TestRepositoryFactory_Testing(t *testing.T) {
	cfg := testConfig(t)
	factory := NewRepositoryFactory(Testing, cfg)

	repo, err := factory.CreateRepository()
	require.NoError(t, err)
	defer repo.Close()

	store, err := factory.CreateMirror(nil)
	require.NoError(t, err)
	defer store.Close()

	assert.NoFileExists(t, cfg.GetDatabasePath())
	assert.NoDirExists(t, cfg.Mirror.Dir)
}

func TestRepositoryFactory_Production(t *testing.T) {
	cfg := testConfig(t)
	factory := NewRepositoryFactory(Production, cfg)

	repo, err := factory.CreateRepository()
	require.NoError(t, err)
	defer repo.Close()

	store, err := factory.CreateMirror(nil)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, cfg.GetDatabasePath())
	assert.DirExists(t, cfg.Mirror.Dir)
}
