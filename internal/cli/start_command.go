package cli

import (
	"context"
	"fmt"
	"strings"

	"timetrack/internal/errors"
	"timetrack/internal/timer"
)

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	errorHandler *ErrorHandler

	description string
	at          string
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the start command. A timer that is already running is stopped
// first, the same way the server closes it when the new entry is created.
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.NewInvalidInputError("command", "start", "usage: tt start <project> [--description text] [--at time]")
	}

	project, err := c.app.api().ResolveProject(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	req := timer.StartRequest{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Description: c.description,
	}
	if c.at != "" {
		startTime, err := c.app.parseTime("at", c.at)
		if err != nil {
			return c.errorHandler.Handle("start timer", err)
		}
		req.StartTime = &startTime
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	if prior := ctl.Snapshot(); prior.Phase == timer.Running {
		if err := ctl.Stop(ctx, timer.StopRequest{}); err != nil {
			return c.errorHandler.Handle("stop running timer", err)
		}
		fmt.Fprintf(c.app.out, "Stopped timer on %s after %s\n", prior.ProjectName, c.app.api().FormatClock(prior.ElapsedSeconds))
	}

	if err := ctl.Start(ctx, req); err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	state := ctl.Snapshot()
	fmt.Fprintf(c.app.out, "Started timer on %s (entry %d)\n", state.ProjectName, state.EntryID)
	return nil
}
