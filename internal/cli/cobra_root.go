package cli

import (
	"context"

	"github.com/spf13/cobra"

	"timetrack/internal/config"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd *cobra.Command
	app *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(app *App) *RootCommand {
	root := &RootCommand{app: app}

	root.cmd = &cobra.Command{
		Use:   "tt",
		Short: "A command-line running timer for time entries",
		Long: `Time Tracker (tt) runs one timer per user against a project.

Every command loads the timer the way a new session would: the server's
running entry wins, otherwise a timer paused earlier is restored from the
local session store.

EXAMPLES:
  tt project add "Website"                 # Create a project
  tt start Website -d "landing page"       # Start a timer on a project
  tt start Website --at 15m                # Start a timer backdated by 15 minutes
  tt pause                                 # Close the running entry, keep the time
  tt resume                                # Reopen the paused entry
  tt status                                # Show the timer
  tt watch                                 # Show the timer ticking until interrupted
  tt stop -d "shipped"                     # Stop and set the description
  tt reset                                 # Forget the local timer state
  tt entries list --since 1d               # Entries from the last day
  tt entries edit 12 --duration 45m        # Fix an entry's duration

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  The config file is YAML, read from TT_CONFIG or ~/.tt/config.yaml.

  Database Configuration:
    TT_DB_DIR                              Database directory (default: ~/.tt)
    TT_DB_FILENAME                         Database filename (default: tt.db)
    TT_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)

  Session Configuration:
    TT_MIRROR_DIR                          Session store directory (default: ~/.tt/session)
    TT_MIRROR_SYNC_WRITES                  Sync session writes (default: true)
    TT_MIRROR_IN_MEMORY                    Keep the session store in memory (default: false)
    TT_TIMER_TICK_INTERVAL                 Watch refresh interval (default: 1s)

  Identity Configuration:
    TT_USER_ID                             User the commands act for (default: 1)
    TT_ORG_ID                              User's organization (default: 1)

  Display and Application Configuration:
    TT_DISPLAY_TIME_FORMAT                 Time format (default: 2006-01-02 15:04:05)
    TT_APP_TIMEOUT                         Command timeout (default: 60s)
    TT_APP_VERBOSE                         Enable verbose output (default: false)
    TT_DEBUG                               Debug logging

TIME FORMATS:
  --at, --start and --end accept 30s, 15m, 2h, 1d, 1w (that long ago),
  RFC3339 timestamps, or local times in the display format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := root.cmd.PersistentFlags().GetString("config")
			return app.setup(configFile, root.overridesFromFlags())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.teardown()
		},
	}
	root.cmd.SetOut(app.out)
	root.cmd.SetErr(app.errOut)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx. The backend is closed even
// when the command fails.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if closeErr := r.app.teardown(); err == nil {
		err = closeErr
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML config file (overrides TT_CONFIG)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides TT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TT_DB_FILENAME)")

	// Session configuration
	flags.String("mirror-dir", "", "Session store directory (overrides TT_MIRROR_DIR)")
	flags.Bool("mirror-in-memory", false, "Keep the session store in memory (overrides TT_MIRROR_IN_MEMORY)")
	flags.Duration("tick-interval", 0, "Watch refresh interval (overrides TT_TIMER_TICK_INTERVAL)")

	// Identity configuration
	flags.Int64("user-id", 0, "User the command acts for (overrides TT_USER_ID)")
	flags.Int64("org-id", 0, "User's organization (overrides TT_ORG_ID)")

	// Display configuration
	flags.String("time-format", "", "Time display format (overrides TT_DISPLAY_TIME_FORMAT)")

	// Application configuration
	flags.Duration("timeout", 0, "Command timeout (overrides TT_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TT_APP_VERBOSE)")
}

// overridesFromFlags collects the global flags the user actually set
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("db-dir") {
		v, _ := flags.GetString("db-dir")
		overrides.DBDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if flags.Changed("mirror-dir") {
		v, _ := flags.GetString("mirror-dir")
		overrides.MirrorDir = &v
	}
	if flags.Changed("mirror-in-memory") {
		v, _ := flags.GetBool("mirror-in-memory")
		overrides.MirrorInMemory = &v
	}
	if flags.Changed("tick-interval") {
		v, _ := flags.GetDuration("tick-interval")
		overrides.TickInterval = &v
	}
	if flags.Changed("user-id") {
		v, _ := flags.GetInt64("user-id")
		overrides.UserID = &v
	}
	if flags.Changed("org-id") {
		v, _ := flags.GetInt64("org-id")
		overrides.OrganizationID = &v
	}
	if flags.Changed("time-format") {
		v, _ := flags.GetString("time-format")
		overrides.TimeFormat = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	return overrides
}

// optionalString returns the flag's value only when the user set it
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// runWithTimeout adapts a command handler to cobra, bounded by the
// configured command timeout
func (r *RootCommand) runWithTimeout(execute func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := r.app.timeout(cmd.Context())
		defer cancel()
		return execute(ctx, args)
	}
}

// addSubcommands adds all subcommands to the root command
func (r *RootCommand) addSubcommands() {
	app := r.app

	start := NewStartCommand(app)
	startCmd := &cobra.Command{
		Use:   "start <project>",
		Short: "Start a timer on a project",
		Long: `Start a running timer on a project, given by id or name.

A timer that is already running is stopped first. A paused timer is
abandoned; its entry keeps the time recorded when it was paused.`,
		Args: cobra.ExactArgs(1),
		RunE: r.runWithTimeout(start.Execute),
	}
	startCmd.Flags().StringVarP(&start.description, "description", "d", "", "What you are working on")
	startCmd.Flags().StringVar(&start.at, "at", "", "Start time, e.g. 15m or 2025-03-10 09:00:00")

	stop := NewStopCommand(app)
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer",
		Long: `Stop the running or paused timer.

A running entry is closed on the server. For a paused timer the entry is
already closed and only the description and project are applied.`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			stop.description = optionalString(cmd, "description")
		},
		RunE: r.runWithTimeout(stop.Execute),
	}
	stopCmd.Flags().StringP("description", "d", "", "Replace the entry's description")
	stopCmd.Flags().StringVarP(&stop.project, "project", "p", "", "Move the entry to another project")
	stopCmd.Flags().StringVar(&stop.at, "at", "", "End time of a running entry, e.g. 5m")

	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause the running timer",
		Long: `Pause closes the running entry on the server and keeps the elapsed
time in the local session store, so a later resume continues the count.`,
		Args: cobra.NoArgs,
		RunE: r.runWithTimeout(NewPauseCommand(app).Execute),
	}

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused timer",
		Long: `Resume reopens the paused entry. Its start time is moved forward by
the time it sat paused so the entry's duration only counts working time.`,
		Args: cobra.NoArgs,
		RunE: r.runWithTimeout(NewResumeCommand(app).Execute),
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the local timer state",
		Long: `Reset clears the local session store without touching any entry.
A timer still running on the server is picked up again by the next command.`,
		Args: cobra.NoArgs,
		RunE: r.runWithTimeout(NewResetCommand(app).Execute),
	}

	statusCmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"current"},
		Short:   "Show the timer",
		Args:    cobra.NoArgs,
		RunE:    r.runWithTimeout(NewStatusCommand(app).Execute),
	}

	watch := NewWatchCommand(app)
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the running timer until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Runs until interrupted, not bounded by the command timeout
			return watch.Execute(cmd.Context(), args)
		},
	}

	r.cmd.AddCommand(
		startCmd,
		stopCmd,
		pauseCmd,
		resumeCmd,
		resetCmd,
		statusCmd,
		watchCmd,
		r.projectCommand(),
		r.entriesCommand(),
	)
}

func (r *RootCommand) projectCommand() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE:  r.runWithTimeout(NewProjectAddCommand(r.app).Execute),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE:  r.runWithTimeout(NewProjectListCommand(r.app).Execute),
	}

	projectCmd.AddCommand(addCmd, listCmd)
	return projectCmd
}

func (r *RootCommand) entriesCommand() *cobra.Command {
	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "List and edit time entries",
	}

	list := NewEntriesListCommand(r.app)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries, most recent first",
		Long: `List time entries, most recent first.

Time filters support: 30m, 2h, 1d, 2w, 3mo, 1y

Examples:
  tt entries list                        # All entries
  tt entries list --since 1w             # Entries started in the last week
  tt entries list -p Website -n 10       # Last 10 entries of a project`,
		Args: cobra.NoArgs,
		RunE: r.runWithTimeout(list.Execute),
	}
	listCmd.Flags().StringVarP(&list.since, "since", "s", "", "Only entries started within this range")
	listCmd.Flags().StringVarP(&list.project, "project", "p", "", "Only entries of this project")
	listCmd.Flags().IntVarP(&list.limit, "limit", "n", 0, "Maximum number of entries")

	edit := NewEntriesEditCommand(r.app)
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a time entry",
		Long: `Edit a time entry. Only the fields given are changed.

An end time recomputes the duration of a closed entry. An explicit
duration is stored as given.`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			edit.description = optionalString(cmd, "description")
			edit.project = optionalString(cmd, "project")
			edit.start = optionalString(cmd, "start")
			edit.end = optionalString(cmd, "end")
			edit.duration = optionalString(cmd, "duration")
		},
		RunE: r.runWithTimeout(edit.Execute),
	}
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().StringP("project", "p", "", "New project id or name")
	editCmd.Flags().String("start", "", "New start time")
	editCmd.Flags().String("end", "", "New end time")
	editCmd.Flags().String("duration", "", "New duration, e.g. 1h30m")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a time entry",
		Long:  `Delete a time entry. This operation cannot be undone.`,
		Args:  cobra.ExactArgs(1),
		RunE:  r.runWithTimeout(NewEntriesDeleteCommand(r.app).Execute),
	}

	entriesCmd.AddCommand(listCmd, editCmd, deleteCmd)
	return entriesCmd
}
