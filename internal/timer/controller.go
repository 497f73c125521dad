package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"timetrack/internal/domain"
	"timetrack/internal/errors"
	"timetrack/internal/logging"
)

// DefaultTickInterval is how often a running timer recomputes its elapsed time.
const DefaultTickInterval = time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger sets the logger transitions and mirror failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.baseLogger = logging.OrDiscard(logger)
	}
}

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// session is the mutable timer state guarded by Controller.mu.
type session struct {
	phase       Phase
	entryID     int64
	projectID   int64
	projectName string
	description string
	startTime   time.Time
	accumulated int64
	elapsed     int64
	paused      *PausedRecord
}

func (s session) elapsedAt(now time.Time) int64 {
	switch s.phase {
	case Running:
		delta := int64(now.Sub(s.startTime) / time.Second)
		if delta < 0 {
			delta = 0
		}
		return s.accumulated + delta
	case Paused:
		return s.accumulated
	default:
		return 0
	}
}

var _ Timer = (*Controller)(nil)

// Controller owns the timer state of one user session. All mutation goes
// through its transition methods; consumers get a Reader.
type Controller struct {
	store      Persistence
	mirror     Mirror
	clock      Clock
	interval   time.Duration
	baseLogger *slog.Logger
	logger     atomic.Pointer[slog.Logger]

	// inFlight admits one transition at a time; a second is rejected.
	inFlight *semaphore.Weighted

	mu     sync.Mutex
	cur    session
	skew   Skew
	epoch  uint64
	ticker Ticker
	tickC  <-chan time.Time
	wake   chan struct{}

	subMu       sync.Mutex
	nextSub     int
	subscribers map[int]func(State)
}

// NewController returns a stopped timer backed by store and mirror.
func NewController(store Persistence, mirror Mirror, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		mirror:      mirror,
		clock:       SystemClock{},
		interval:    DefaultTickInterval,
		baseLogger:  logging.Discard(),
		inFlight:    semaphore.NewWeighted(1),
		wake:        make(chan struct{}),
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Store(c.baseLogger)
	return c
}

func (c *Controller) log() *slog.Logger {
	return c.logger.Load()
}

func (c *Controller) acquire(operation string) error {
	if !c.inFlight.TryAcquire(1) {
		return errors.NewConflictError(errors.CodeTransitionInFlight, "another timer operation is still in progress").
			WithContext("operation", operation)
	}
	return nil
}

func invalidTransition(operation string, from Phase) error {
	return errors.NewConflictError(errors.CodeInvalidTransition, fmt.Sprintf("cannot %s a %s timer", operation, from)).
		WithContext("phase", from.String())
}

// Load initialises the session from the server's clock and running entry.
// A running entry on the server always wins over the mirror; otherwise a
// paused record in the mirror restores the Paused phase.
func (c *Controller) Load(b Bootstrap) error {
	if err := c.acquire("load"); err != nil {
		return err
	}
	defer c.inFlight.Release(1)

	var paused *PausedRecord
	var stale *ActiveRecord
	if b.Running == nil {
		paused = c.loadPaused()
		stale = c.loadActive()
	}

	c.logger.Store(c.baseLogger.With(slog.String("session", uuid.NewString())))

	now := c.clock.Now()
	c.mu.Lock()
	c.stopTickerLocked()
	c.epoch++
	c.skew = NewSkew(b.ServerNow, now)

	switch {
	case b.Running != nil:
		r := b.Running
		// Every resume shifts the server start time, so it already holds all
		// previously banked time.
		c.cur = session{
			phase:       Running,
			entryID:     r.ID,
			projectID:   r.ProjectID,
			projectName: r.ProjectName,
			description: r.Description,
			startTime:   c.skew.ToClient(r.StartTime),
		}
		c.cur.elapsed = c.cur.elapsedAt(now)
		c.startTickerLocked()
	case paused != nil:
		rec := *paused
		c.cur = session{
			phase:       Paused,
			projectID:   rec.ProjectID,
			projectName: rec.ProjectName,
			description: rec.Description,
			accumulated: rec.AccumulatedSeconds,
			elapsed:     rec.AccumulatedSeconds,
			paused:      &rec,
		}
	default:
		c.cur = session{}
	}
	cur := c.cur
	skew := c.skew
	c.mu.Unlock()

	if cur.phase == Running {
		c.saveActive(ActiveRecord{ProjectID: cur.projectID})
	} else if stale != nil {
		// The server has no running entry, so the timer was stopped elsewhere
		// or a stop was never confirmed.
		c.log().Info("clearing stale active session",
			slog.Int64("project_id", stale.ProjectID),
			slog.Int64("accumulated", stale.AccumulatedSeconds))
		c.clearActive()
	}

	c.log().Debug("session loaded",
		slog.String("phase", cur.phase.String()),
		slog.Int64("entry_id", cur.entryID),
		slog.Int64("elapsed", cur.elapsed),
		slog.Int64("skew_seconds", skew.Seconds()))
	c.notify()
	return nil
}

// Start begins a new running timer. The phase flips to Running before the
// server call and rolls back to the previous phase if it fails.
func (c *Controller) Start(ctx context.Context, req StartRequest) error {
	if err := c.acquire("start"); err != nil {
		return err
	}
	defer c.inFlight.Release(1)

	c.mu.Lock()
	if c.cur.phase == Running {
		c.mu.Unlock()
		return invalidTransition("start", Running)
	}
	prior := c.cur
	epoch := c.epoch
	now := c.clock.Now()

	startTime := now
	var serverStart *time.Time
	if req.StartTime != nil {
		startTime = *req.StartTime
		s := c.skew.ToServer(startTime)
		serverStart = &s
	}

	c.cur = session{
		phase:       Running,
		projectID:   req.ProjectID,
		projectName: req.ProjectName,
		description: req.Description,
		startTime:   startTime,
	}
	c.cur.elapsed = c.cur.elapsedAt(now)
	c.startTickerLocked()
	c.mu.Unlock()

	c.saveActive(ActiveRecord{ProjectID: req.ProjectID})
	c.notify()

	id, err := c.store.CreateRunningEntry(ctx, req.ProjectID, req.Description, serverStart)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.clearActive()
		c.log().Warn("start finished after the session was reset", slog.Int64("entry_id", id), slog.Any("error", err))
		return err
	}
	if err != nil {
		c.stopTickerLocked()
		c.cur = prior
		c.mu.Unlock()

		c.clearActive()
		c.log().Warn("start failed, timer rolled back",
			slog.String("phase", prior.phase.String()),
			slog.Any("error", err))
		c.notify()
		return err
	}
	c.cur.entryID = id
	c.mu.Unlock()

	if prior.phase == Paused {
		c.clearPaused()
	}
	c.log().Debug("timer started", slog.Int64("entry_id", id), slog.Int64("project_id", req.ProjectID))
	c.notify()
	return nil
}

// Pause closes the running entry on the server and keeps the elapsed time
// locally. On failure the timer keeps running.
func (c *Controller) Pause(ctx context.Context) error {
	if err := c.acquire("pause"); err != nil {
		return err
	}
	defer c.inFlight.Release(1)

	c.mu.Lock()
	if c.cur.phase != Running {
		phase := c.cur.phase
		c.mu.Unlock()
		return invalidTransition("pause", phase)
	}
	if c.cur.entryID == 0 {
		c.mu.Unlock()
		return errors.NewConflictError(errors.CodeInvalidTransition, "the running timer has no entry yet")
	}
	c.stopTickerLocked()
	elapsed := c.cur.elapsedAt(c.clock.Now())
	c.cur.elapsed = elapsed
	snap := PausedRecord{
		ID:                 c.cur.entryID,
		ProjectID:          c.cur.projectID,
		Description:        c.cur.description,
		ProjectName:        c.cur.projectName,
		AccumulatedSeconds: elapsed,
	}
	epoch := c.epoch
	c.mu.Unlock()

	c.savePaused(snap)

	entryID := snap.ID
	err := c.store.StopRunningEntry(ctx, domain.StopOverrides{EntryID: &entryID})

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		// The snapshot may have landed after Reset cleared the mirror
		c.clearPaused()
		c.log().Warn("pause finished after the session was reset", slog.Int64("entry_id", entryID), slog.Any("error", err))
		return err
	}
	if err != nil {
		c.startTickerLocked()
		c.mu.Unlock()

		c.clearPaused()
		c.log().Warn("pause failed, timer still running", slog.Int64("entry_id", entryID), slog.Any("error", err))
		c.notify()
		return err
	}
	c.cur = session{
		phase:       Paused,
		projectID:   snap.ProjectID,
		projectName: snap.ProjectName,
		description: snap.Description,
		accumulated: elapsed,
		elapsed:     elapsed,
		paused:      &snap,
	}
	c.mu.Unlock()

	c.clearActive()
	c.log().Debug("timer paused", slog.Int64("entry_id", entryID), slog.Int64("elapsed", elapsed))
	c.notify()
	return nil
}

// Resume reopens the paused entry. The banked time is carried over and the
// timer runs again from now. On failure the timer stays paused.
func (c *Controller) Resume(ctx context.Context) error {
	if err := c.acquire("resume"); err != nil {
		return err
	}
	defer c.inFlight.Release(1)

	c.mu.Lock()
	if c.cur.phase != Paused || c.cur.paused == nil {
		phase := c.cur.phase
		c.mu.Unlock()
		return invalidTransition("resume", phase)
	}
	snap := *c.cur.paused
	epoch := c.epoch
	now := c.clock.Now()
	skew := c.skew
	c.mu.Unlock()

	c.saveActive(ActiveRecord{ProjectID: snap.ProjectID, AccumulatedSeconds: snap.AccumulatedSeconds})

	var id int64
	var err error
	if snap.ID == 0 {
		// Nothing to reopen; book the banked time on a new entry.
		c.log().Warn("paused timer has no entry id, creating a new entry", slog.Int64("project_id", snap.ProjectID))
		start := skew.ToServer(now.Add(-time.Duration(snap.AccumulatedSeconds) * time.Second))
		id, err = c.store.CreateRunningEntry(ctx, snap.ProjectID, snap.Description, &start)
	} else {
		id, err = c.store.ResumeEntry(ctx, snap.ID)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.clearActive()
		c.log().Warn("resume finished after the session was reset", slog.Int64("entry_id", id), slog.Any("error", err))
		return err
	}
	if err != nil {
		c.mu.Unlock()

		c.clearActive()
		c.log().Warn("resume failed, timer still paused", slog.Int64("entry_id", snap.ID), slog.Any("error", err))
		return err
	}
	c.cur = session{
		phase:       Running,
		entryID:     id,
		projectID:   snap.ProjectID,
		projectName: snap.ProjectName,
		description: snap.Description,
		startTime:   c.clock.Now(),
		accumulated: snap.AccumulatedSeconds,
		elapsed:     snap.AccumulatedSeconds,
	}
	c.startTickerLocked()
	c.mu.Unlock()

	c.clearPaused()
	c.log().Debug("timer resumed", slog.Int64("entry_id", id), slog.Int64("accumulated", snap.AccumulatedSeconds))
	c.notify()
	return nil
}

// Stop ends the timer. Local state and the mirror are cleared before the
// server call and are not restored if it fails; the next Load reconciles
// against the server. Stopping a paused timer only applies the description
// and project overrides to the already closed entry.
func (c *Controller) Stop(ctx context.Context, req StopRequest) error {
	if err := c.acquire("stop"); err != nil {
		return err
	}
	defer c.inFlight.Release(1)

	c.mu.Lock()
	prior := c.cur
	if prior.phase == Stopped {
		c.mu.Unlock()
		return invalidTransition("stop", Stopped)
	}
	c.stopTickerLocked()
	c.cur = session{}
	var endTime *time.Time
	if req.EndTime != nil {
		e := c.skew.ToServer(*req.EndTime)
		endTime = &e
	}
	c.mu.Unlock()

	c.clearMirror()
	c.notify()

	if prior.phase == Running {
		overrides := domain.StopOverrides{
			Description: req.Description,
			ProjectID:   req.ProjectID,
			EndTime:     endTime,
		}
		if prior.entryID != 0 {
			id := prior.entryID
			overrides.EntryID = &id
		}
		if err := c.store.StopRunningEntry(ctx, overrides); err != nil {
			c.log().Warn("stop failed after local state was cleared", slog.Int64("entry_id", prior.entryID), slog.Any("error", err))
			return err
		}
		c.log().Debug("timer stopped", slog.Int64("entry_id", prior.entryID))
		return nil
	}

	update := domain.EntryUpdate{Description: req.Description, ProjectID: req.ProjectID}
	if update.IsEmpty() {
		return nil
	}
	if prior.paused == nil || prior.paused.ID == 0 {
		c.log().Warn("paused timer has no entry id, overrides not applied")
		return errors.NewConflictError(errors.CodeInvalidTransition, "the paused timer has no entry to update")
	}
	if err := c.store.UpdateEntry(ctx, prior.paused.ID, update); err != nil {
		c.log().Warn("updating the paused entry failed", slog.Int64("entry_id", prior.paused.ID), slog.Any("error", err))
		return err
	}
	c.log().Debug("paused timer stopped", slog.Int64("entry_id", prior.paused.ID))
	return nil
}

// Reset clears the timer locally and empties the mirror. It never touches the
// server and is accepted even while a transition is in flight; that
// transition's result is then discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.stopTickerLocked()
	c.cur = session{}
	c.epoch++
	c.mu.Unlock()

	c.clearMirror()
	c.log().Debug("timer reset")
	c.notify()
}

// Tick recomputes the elapsed time of a running timer.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.cur.phase != Running || c.ticker == nil {
		c.mu.Unlock()
		return
	}
	c.cur.elapsed = c.cur.elapsedAt(c.clock.Now())
	c.mu.Unlock()
	c.notify()
}

// Run delivers ticks while the timer is running until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	for {
		c.mu.Lock()
		tickC, wake := c.tickC, c.wake
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		case <-tickC:
			c.Tick()
		}
	}
}

// Close stops the ticker. The state is left as is.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopTickerLocked()
	c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.cur
	state := State{
		Phase:              s.phase,
		EntryID:            s.entryID,
		ProjectID:          s.projectID,
		ProjectName:        s.projectName,
		Description:        s.description,
		StartTime:          s.startTime,
		AccumulatedSeconds: s.accumulated,
		ElapsedSeconds:     s.elapsed,
		ClockSkewSeconds:   c.skew.Seconds(),
	}
	if s.phase == Paused && state.EntryID == 0 && s.paused != nil {
		state.EntryID = s.paused.ID
	}
	return state
}

// Subscribe registers fn for state changes.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) notify() {
	state := c.Snapshot()

	c.subMu.Lock()
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (c *Controller) startTickerLocked() {
	c.stopTickerLocked()
	c.ticker = c.clock.NewTicker(c.interval)
	c.tickC = c.ticker.C()
	c.wakeLocked()
}

func (c *Controller) stopTickerLocked() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
	c.tickC = nil
	c.wakeLocked()
}

// wakeLocked makes Run pick up a replaced ticker channel.
func (c *Controller) wakeLocked() {
	close(c.wake)
	c.wake = make(chan struct{})
}

// Mirror access is best-effort: failures are logged and otherwise ignored.

func (c *Controller) loadPaused() *PausedRecord {
	rec, err := c.mirror.LoadPaused()
	if err != nil {
		c.log().Warn("discarding unreadable paused timer", slog.Any("error", err))
		return nil
	}
	return rec
}

func (c *Controller) loadActive() *ActiveRecord {
	rec, err := c.mirror.LoadActive()
	if err != nil {
		c.log().Warn("discarding unreadable active session", slog.Any("error", err))
		return nil
	}
	return rec
}

func (c *Controller) savePaused(rec PausedRecord) {
	c.mirrorWrite("save paused", func() error { return c.mirror.SavePaused(rec) })
}

func (c *Controller) clearPaused() {
	c.mirrorWrite("clear paused", c.mirror.ClearPaused)
}

func (c *Controller) saveActive(rec ActiveRecord) {
	c.mirrorWrite("save active", func() error { return c.mirror.SaveActive(rec) })
}

func (c *Controller) clearActive() {
	c.mirrorWrite("clear active", c.mirror.ClearActive)
}

func (c *Controller) clearMirror() {
	c.mirrorWrite("clear", c.mirror.Clear)
}

func (c *Controller) mirrorWrite(operation string, fn func() error) {
	if err := fn(); err != nil {
		c.log().Warn("session mirror write failed", slog.String("operation", operation), slog.Any("error", err))
	}
}
