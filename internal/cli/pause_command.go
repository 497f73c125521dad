package cli

import (
	"context"
	"fmt"

	"timetrack/internal/errors"
)

// PauseCommand handles the pause command
type PauseCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewPauseCommand creates a new pause command handler
func NewPauseCommand(app *App) *PauseCommand {
	return &PauseCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the pause command
func (c *PauseCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "pause", "usage: tt pause")
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	if err := ctl.Pause(ctx); err != nil {
		return c.errorHandler.Handle("pause timer", err)
	}

	state := ctl.Snapshot()
	fmt.Fprintf(c.app.out, "Paused timer on %s at %s\n", state.ProjectName, c.app.api().FormatClock(state.ElapsedSeconds))
	return nil
}

// ResumeCommand handles the resume command
type ResumeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewResumeCommand creates a new resume command handler
func NewResumeCommand(app *App) *ResumeCommand {
	return &ResumeCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the resume command
func (c *ResumeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "resume", "usage: tt resume")
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	if err := ctl.Resume(ctx); err != nil {
		return c.errorHandler.Handle("resume timer", err)
	}

	state := ctl.Snapshot()
	fmt.Fprintf(c.app.out, "Resumed timer on %s at %s (entry %d)\n",
		state.ProjectName, c.app.api().FormatClock(state.ElapsedSeconds), state.EntryID)
	return nil
}

// ResetCommand handles the reset command
type ResetCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewResetCommand creates a new reset command handler
func NewResetCommand(app *App) *ResetCommand {
	return &ResetCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute clears the local timer state. Entries on the server are untouched.
func (c *ResetCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "reset", "usage: tt reset")
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	ctl.Reset()
	fmt.Fprintln(c.app.out, "Timer reset")
	return nil
}
