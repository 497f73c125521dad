package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"timetrack/internal/api"
	"timetrack/internal/config"
	"timetrack/internal/errors"
	"timetrack/internal/logging"
	"timetrack/internal/timer"
)

// Backend is what commands run against once the configuration is final
type Backend struct {
	API    api.BusinessAPI
	Mirror timer.Mirror
	Clock  timer.Clock
	// Close releases the stores behind API and Mirror. May be nil.
	Close func() error
}

// Opener builds the backend from the loaded configuration
type Opener func(cfg *config.Config, logger *slog.Logger) (*Backend, error)

// App represents the main CLI application
type App struct {
	configFile string
	open       Opener
	out        io.Writer
	errOut     io.Writer

	config  *config.Config
	logger  *slog.Logger
	backend *Backend
}

// NewApp creates a new CLI application reading configFile, which may be
// empty. Configuration is loaded and the backend opened only when a command
// runs, after flags are parsed.
func NewApp(configFile string, open Opener, out, errOut io.Writer) *App {
	return &App{
		configFile: configFile,
		open:       open,
		out:        out,
		errOut:     errOut,
	}
}

// Run executes the CLI application with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	root := NewRootCommand(a)
	root.cmd.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// setup loads the configuration with the flag overrides and opens the backend.
// A non-empty configFile replaces the one the app was created with.
func (a *App) setup(configFile string, overrides *config.ConfigOverrides) error {
	if configFile == "" {
		configFile = a.configFile
	}
	cfg, err := config.NewLoaderWithFile(configFile).LoadWithOverrides(overrides)
	if err != nil {
		return err
	}
	a.config = cfg
	a.logger = logging.New(a.errOut, cfg.Application.Verbose)

	backend, err := a.open(cfg, a.logger)
	if err != nil {
		return err
	}
	if backend.Clock == nil {
		backend.Clock = timer.SystemClock{}
	}
	a.backend = backend
	return nil
}

// teardown closes the backend opened by setup
func (a *App) teardown() error {
	if a.backend == nil || a.backend.Close == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	return err
}

func (a *App) api() api.BusinessAPI {
	return a.backend.API
}

func (a *App) now() time.Time {
	return a.backend.Clock.Now()
}

// session loads a timer session: the server's clock and running entry first,
// then whatever the mirror kept from earlier invocations
func (a *App) session(ctx context.Context) (*timer.Controller, error) {
	boot, err := a.api().Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	ctl := timer.NewController(a.api(), a.backend.Mirror,
		timer.WithClock(a.backend.Clock),
		timer.WithLogger(a.logger),
		timer.WithTickInterval(a.config.Timer.TickInterval),
	)
	if err := ctl.Load(boot); err != nil {
		ctl.Close()
		return nil, err
	}
	return ctl, nil
}

// timeout bounds a single command by the configured application timeout
func (a *App) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.Application.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.Application.Timeout)
}

func (a *App) formatTime(t time.Time) string {
	return t.Local().Format(a.config.Display.TimeFormat)
}

// parseTime reads a point in time given on the command line: a shorthand such
// as "15m" meaning that long ago, an RFC3339 timestamp, or a local time in the
// configured display format
func (a *App) parseTime(field, value string) (time.Time, error) {
	if d, err := parseTimeShorthand(value); err == nil {
		return a.now().Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(a.config.Display.TimeFormat, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, errors.NewInvalidInputError(field, value,
		fmt.Sprintf("expected a duration like 15m, RFC3339, or %q", a.config.Display.TimeFormat))
}

var shorthandPattern = regexp.MustCompile(`^(\d+)(s|m|h|d|w)$`)

// parseTimeShorthand parses time shorthand like "30s", "15m", "2h", "1d" or "1w"
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	matches := shorthandPattern.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	switch matches[2] {
	case "s":
		return time.Duration(value) * time.Second, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
}

// parseID reads a positive entry or project id argument
func parseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, value, "must be a positive number")
	}
	return id, nil
}
