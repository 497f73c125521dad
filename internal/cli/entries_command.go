package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"timetrack/internal/api"
	"timetrack/internal/domain"
	"timetrack/internal/errors"
)

// EntriesListCommand handles the entries list command
type EntriesListCommand struct {
	app          *App
	errorHandler *ErrorHandler

	since   string
	project string
	limit   int
}

// NewEntriesListCommand creates a new entries list command handler
func NewEntriesListCommand(app *App) *EntriesListCommand {
	return &EntriesListCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute prints one line per entry, most recent first
func (c *EntriesListCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "entries list", "usage: tt entries list [--since 1d] [--project name] [--limit n]")
	}

	views, err := c.app.api().ListEntries(ctx, api.EntryFilter{
		Since:   c.since,
		Project: c.project,
		Limit:   c.limit,
	})
	if err != nil {
		return c.errorHandler.Handle("list entries", err)
	}

	if len(views) == 0 {
		fmt.Fprintln(c.app.out, "No entries found")
		return nil
	}
	for _, view := range views {
		printEntry(c.app.out, c.app, view)
	}
	return nil
}

// printEntry prints an entry in the format:
// #id startTime - endTime (duration): project - description
func printEntry(w io.Writer, app *App, view api.EntryView) {
	entry := view.Entry
	endStr := "running"
	if entry.EndTime != nil {
		endStr = app.formatTime(*entry.EndTime)
	}
	fmt.Fprintf(w, "#%d %s - %s (%s): %s%s\n",
		entry.ID, app.formatTime(entry.StartTime), endStr, view.Duration, view.ProjectName, describe(entry.Description))
}

// EntriesEditCommand handles the entries edit command
type EntriesEditCommand struct {
	app          *App
	errorHandler *ErrorHandler

	description *string
	project     *string
	start       *string
	end         *string
	duration    *string
}

// NewEntriesEditCommand creates a new entries edit command handler
func NewEntriesEditCommand(app *App) *EntriesEditCommand {
	return &EntriesEditCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute applies the given fields to one entry. Fields that are not given
// keep their stored value.
func (c *EntriesEditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "entries edit", "usage: tt entries edit <id> [--description text] [--project name] [--start time] [--end time] [--duration 1h30m]")
	}
	id, err := parseID("id", args[0])
	if err != nil {
		return c.errorHandler.Handle("edit entry", err)
	}

	update, err := c.update(ctx)
	if err != nil {
		return c.errorHandler.Handle("edit entry", err)
	}

	view, err := c.app.api().EditEntry(ctx, id, update)
	if err != nil {
		return c.errorHandler.Handle("edit entry", err)
	}

	printEntry(c.app.out, c.app, *view)
	return nil
}

func (c *EntriesEditCommand) update(ctx context.Context) (domain.EntryUpdate, error) {
	update := domain.EntryUpdate{Description: c.description}

	if c.project != nil {
		project, err := c.app.api().ResolveProject(ctx, *c.project)
		if err != nil {
			return update, err
		}
		update.ProjectID = &project.ID
	}
	if c.start != nil {
		start, err := c.app.parseTime("start", *c.start)
		if err != nil {
			return update, err
		}
		update.StartTime = &start
	}
	if c.end != nil {
		end, err := c.app.parseTime("end", *c.end)
		if err != nil {
			return update, err
		}
		update.EndTime = &end
	}
	if c.duration != nil {
		d, err := time.ParseDuration(*c.duration)
		if err != nil {
			return update, errors.NewInvalidInputError("duration", *c.duration, "expected a duration like 1h30m")
		}
		seconds := int64(d / time.Second)
		update.Duration = &seconds
	}
	return update, nil
}

// EntriesDeleteCommand handles the entries delete command
type EntriesDeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewEntriesDeleteCommand creates a new entries delete command handler
func NewEntriesDeleteCommand(app *App) *EntriesDeleteCommand {
	return &EntriesDeleteCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute deletes one entry. When the timer is showing that entry the local
// timer state is reset as well.
func (c *EntriesDeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "entries delete", "usage: tt entries delete <id>")
	}
	id, err := parseID("id", args[0])
	if err != nil {
		return c.errorHandler.Handle("delete entry", err)
	}

	if err := c.app.api().DeleteEntry(ctx, id); err != nil {
		return c.errorHandler.Handle("delete entry", err)
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()
	if ctl.Snapshot().EntryID == id {
		ctl.Reset()
	}

	fmt.Fprintf(c.app.out, "Deleted entry %d\n", id)
	return nil
}
