package cli

import (
	"context"
	"fmt"
	"strings"

	"timetrack/internal/errors"
)

// ProjectAddCommand handles the project add command
type ProjectAddCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectAddCommand creates a new project add command handler
func NewProjectAddCommand(app *App) *ProjectAddCommand {
	return &ProjectAddCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute creates a project in the user's organization
func (c *ProjectAddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "project add", "usage: tt project add \"project name\"")
	}

	project, err := c.app.api().CreateProject(ctx, strings.Join(args, " "))
	if err != nil {
		return c.errorHandler.Handle("add project", err)
	}

	fmt.Fprintf(c.app.out, "Added project %d: %s\n", project.ID, project.Name)
	return nil
}

// ProjectListCommand handles the project list command
type ProjectListCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectListCommand creates a new project list command handler
func NewProjectListCommand(app *App) *ProjectListCommand {
	return &ProjectListCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute lists the organization's projects by name
func (c *ProjectListCommand) Execute(ctx context.Context, args []string) error {
	projects, err := c.app.api().ListProjects(ctx)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}

	if len(projects) == 0 {
		fmt.Fprintln(c.app.out, "No projects found")
		return nil
	}
	for _, project := range projects {
		fmt.Fprintf(c.app.out, "%4d  %s\n", project.ID, project.Name)
	}
	return nil
}
