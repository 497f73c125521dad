package config

import (
	"fmt"
	"log/slog"
	"os"

	"timetrack/internal/mirror"
	"timetrack/internal/repository/sqlite"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment from TT_ENV
func GetEnvironment() Environment {
	switch os.Getenv("TT_ENV") {
	case "development":
		return Development
	case "testing":
		return Testing
	default:
		// Default to production for safety
		return Production
	}
}

// CreateRepository creates a repository instance using the configuration system
func CreateRepository(config *Config) (*sqlite.SQLiteRepository, error) {
	if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	repo, err := sqlite.New(config.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (*sqlite.SQLiteRepository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}

// CreateMirror opens the session mirror store described by the configuration
func CreateMirror(config *Config, logger *slog.Logger) (*mirror.Store, error) {
	cfg := mirror.DefaultConfig(config.Mirror.Dir)
	cfg.SyncWrites = config.Mirror.SyncWrites
	cfg.InMemory = config.Mirror.InMemory
	cfg.Logger = logger

	store, err := mirror.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session mirror: %w", err)
	}

	return store, nil
}

// RepositoryFactory creates storage instances based on environment
type RepositoryFactory struct {
	env    Environment
	config *Config
}

// NewRepositoryFactory creates a new repository factory for the given environment
func NewRepositoryFactory(env Environment, config *Config) *RepositoryFactory {
	return &RepositoryFactory{env: env, config: config}
}

// CreateRepository creates a repository instance based on the current environment
func (rf *RepositoryFactory) CreateRepository() (*sqlite.SQLiteRepository, error) {
	switch rf.env {
	case Testing:
		return CreateTestRepository()
	case Development:
		// Development keeps its database next to the working directory
		cfg := *rf.config
		cfg.Database.Dir = "."
		return CreateRepository(&cfg)
	default:
		return CreateRepository(rf.config)
	}
}

// CreateMirror creates the session mirror for the current environment.
// Testing never touches the disk.
func (rf *RepositoryFactory) CreateMirror(logger *slog.Logger) (*mirror.Store, error) {
	if rf.env == Testing {
		cfg := *rf.config
		cfg.Mirror.InMemory = true
		return CreateMirror(&cfg, logger)
	}
	return CreateMirror(rf.config, logger)
}
