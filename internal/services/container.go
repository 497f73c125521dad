package services

import (
	"log/slog"
	"time"

	"timetrack/internal/config"
	"timetrack/internal/repository/sqlite"
	"timetrack/internal/validation"
)

// NewServiceContainer wires the services over a repository. now is the
// server clock; nil uses time.Now.
func NewServiceContainer(repo sqlite.Repository, cfg *config.Config, now func() time.Time, logger *slog.Logger) *ServiceContainer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	validator := validation.NewValidatorWithConfig(cfg)
	timeService := NewTimeService(now)

	return &ServiceContainer{
		TimeService:    timeService,
		EntryService:   NewEntryService(repo, timeService, validator, logger, cfg.GetQueryTimeout()),
		ProjectService: NewProjectService(repo, validator, cfg.GetQueryTimeout()),
	}
}
