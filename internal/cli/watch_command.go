package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/mattn/go-isatty"

	"timetrack/internal/errors"
	"timetrack/internal/timer"
)

// WatchCommand keeps a timer session open and shows the clock as it ticks
type WatchCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewWatchCommand creates a new watch command handler
func NewWatchCommand(app *App) *WatchCommand {
	return &WatchCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs until ctx is cancelled. A timer that is not running is shown
// once.
func (c *WatchCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "watch", "usage: tt watch")
	}

	ctl, err := c.app.session(ctx)
	if err != nil {
		return c.errorHandler.Handle("load timer", err)
	}
	defer ctl.Close()

	state := ctl.Snapshot()
	if state.Phase != timer.Running {
		NewStatusCommand(c.app).print(c.app.out, state)
		return nil
	}

	line := newLineWriter(c.app.out)
	render := func(s timer.State) {
		line.write(c.render(s))
	}
	unsubscribe := ctl.Subscribe(render)
	defer unsubscribe()
	render(state)

	err = ctl.Run(ctx)
	line.finish()
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (c *WatchCommand) render(state timer.State) string {
	return fmt.Sprintf("%s %s%s", c.app.api().FormatClock(state.ElapsedSeconds), state.ProjectName, describe(state.Description))
}

// lineWriter redraws a single line in place on a terminal and prints one
// line per update otherwise
type lineWriter struct {
	mu       sync.Mutex
	w        io.Writer
	terminal bool
	dirty    bool
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: w, terminal: isTerminal(w)}
}

func (l *lineWriter) write(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.terminal {
		fmt.Fprintf(l.w, "\r\033[K%s", s)
		l.dirty = true
		return
	}
	fmt.Fprintln(l.w, s)
}

func (l *lineWriter) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dirty {
		fmt.Fprintln(l.w)
		l.dirty = false
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
