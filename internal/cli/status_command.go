package cli

import (
	"context"
	"fmt"
	"io"

	"timetrack/internal/errors"
	"timetrack/internal/timer"
)

// StatusCommand handles the status command
type StatusCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute shows the timer as a fresh session sees it
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "status", "usage: tt status")
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	ctl.Tick()
	c.print(c.app.out, ctl.Snapshot())
	return nil
}

func (c *StatusCommand) print(w io.Writer, state timer.State) {
	a := c.app.api()

	switch state.Phase {
	case timer.Stopped:
		fmt.Fprintln(w, "No timer is running")
		return
	case timer.Running:
		fmt.Fprintf(w, "Running: %s%s\n", state.ProjectName, describe(state.Description))
		fmt.Fprintf(w, "  Entry:   %d\n", state.EntryID)
		fmt.Fprintf(w, "  Elapsed: %s\n", a.FormatClock(state.ElapsedSeconds))
		fmt.Fprintf(w, "  Started: %s (%s)\n", a.FormatRelative(state.StartTime), c.app.formatTime(state.StartTime))
	case timer.Paused:
		fmt.Fprintf(w, "Paused: %s%s\n", state.ProjectName, describe(state.Description))
		if state.EntryID != 0 {
			fmt.Fprintf(w, "  Entry:   %d\n", state.EntryID)
		}
		fmt.Fprintf(w, "  Elapsed: %s\n", a.FormatClock(state.ElapsedSeconds))
	}

	if state.ClockSkewSeconds != 0 {
		fmt.Fprintf(w, "  Clock skew: %ds\n", state.ClockSkewSeconds)
	}
}

func describe(description string) string {
	if description == "" {
		return ""
	}
	return " - " + description
}
