package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"timetrack/internal/api"
	"timetrack/internal/cli"
	"timetrack/internal/config"
	"timetrack/internal/domain"
	"timetrack/internal/services"
	"timetrack/internal/timer"
)

// openBackend opens the database and the session mirror for the configured
// environment and binds the API to the configured identity
func openBackend(cfg *config.Config, logger *slog.Logger) (*cli.Backend, error) {
	factory := config.NewRepositoryFactory(config.GetEnvironment(), cfg)

	repo, err := factory.CreateRepository()
	if err != nil {
		return nil, fmt.Errorf("error creating repository: %w", err)
	}

	store, err := factory.CreateMirror(logger)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("error opening session store: %w", err)
	}

	identity := domain.Identity{
		UserID:         cfg.Identity.UserID,
		OrganizationID: cfg.Identity.OrganizationID,
	}
	container := services.NewServiceContainer(repo, cfg, nil, logger)

	return &cli.Backend{
		API:    api.NewBusinessAPI(container, identity, logger),
		Mirror: store.ForUser(identity.UserID),
		Clock:  timer.SystemClock{},
		Close: func() error {
			return stderrors.Join(store.Close(), repo.Close())
		},
	}, nil
}
