package cli

import (
	"context"
	"fmt"

	"timetrack/internal/errors"
	"timetrack/internal/timer"
)

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	errorHandler *ErrorHandler

	description *string
	project     string
	at          string
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the stop command
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "stop", "usage: tt stop [--description text] [--project name] [--at time]")
	}

	req := timer.StopRequest{Description: c.description}
	if c.project != "" {
		project, err := c.app.api().ResolveProject(ctx, c.project)
		if err != nil {
			return c.errorHandler.Handle("stop timer", err)
		}
		req.ProjectID = &project.ID
	}
	if c.at != "" {
		endTime, err := c.app.parseTime("at", c.at)
		if err != nil {
			return c.errorHandler.Handle("stop timer", err)
		}
		req.EndTime = &endTime
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	ctl.Tick()
	prior := ctl.Snapshot()
	if prior.Phase == timer.Stopped {
		fmt.Fprintln(c.app.out, "No timer is running")
		return nil
	}

	if err := ctl.Stop(ctx, req); err != nil {
		return c.errorHandler.Handle("stop timer", err)
	}

	fmt.Fprintf(c.app.out, "Stopped timer on %s after %s\n", prior.ProjectName, c.app.api().FormatClock(prior.ElapsedSeconds))
	return nil
}
