package services

import (
	"context"
	"strconv"
	"time"

	"timetrack/internal/errors"
	"timetrack/internal/repository/sqlite"
)

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// runInTx runs fn in a single transaction bounded by timeout
func runInTx(ctx context.Context, repo sqlite.Repository, timeout time.Duration, operation string, fn func(sqlite.Repository) error) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := repo.WithinTx(ctx, fn); err != nil {
		return contextError(operation, ctx, err)
	}
	return nil
}

// contextError reports an expired or cancelled context in place of the
// database error it caused
func contextError(operation string, ctx context.Context, err error) error {
	if ctxErr := errors.FromContext(operation, ctx.Err()); ctxErr != nil {
		return ctxErr
	}
	return err
}

// findProject loads a project and checks it belongs to the organization
func findProject(ctx context.Context, repo sqlite.Repository, organizationID int64, id int64) (*sqlite.Project, error) {
	project, err := repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OrganizationID != organizationID {
		// Projects of other organizations are reported as missing
		return nil, errors.NewNotFoundError("project", strconv.FormatInt(id, 10)).
			WithContext("organization_id", organizationID)
	}
	return project, nil
}
