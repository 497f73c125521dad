package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"timetrack/internal/domain"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

// active returns the tickers that have not been stopped.
func (f *fakeClock) active() []*fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	var live []*fakeTicker
	for _, t := range f.tickers {
		if !t.stopped.Load() {
			live = append(live, t)
		}
	}
	return live
}

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() { t.stopped.Store(true) }

type createCall struct {
	projectID   int64
	description string
	startTime   *time.Time
}

type updateCall struct {
	id     int64
	update domain.EntryUpdate
}

type fakePersistence struct {
	mu      sync.Mutex
	nextID  int64
	creates []createCall
	stops   []domain.StopOverrides
	resumes []int64
	updates []updateCall

	createErr error
	stopErr   error
	resumeErr error
	updateErr error

	// When gate is set every call signals entered and blocks until gate is closed.
	gate    chan struct{}
	entered chan struct{}
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{nextID: 41}
}

func (f *fakePersistence) hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 4)
}

func (f *fakePersistence) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.gate)
	f.gate = nil
}

func (f *fakePersistence) wait() {
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
}

func (f *fakePersistence) CreateRunningEntry(ctx context.Context, projectID int64, description string, startTime *time.Time) (int64, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{projectID: projectID, description: description, startTime: startTime})
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakePersistence) StopRunningEntry(ctx context.Context, overrides domain.StopOverrides) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, overrides)
	return f.stopErr
}

func (f *fakePersistence) ResumeEntry(ctx context.Context, id int64) (int64, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes = append(f.resumes, id)
	if f.resumeErr != nil {
		return 0, f.resumeErr
	}
	return id, nil
}

func (f *fakePersistence) UpdateEntry(ctx context.Context, id int64, update domain.EntryUpdate) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{id: id, update: update})
	return f.updateErr
}

type memMirror struct {
	mu       sync.Mutex
	paused   *PausedRecord
	active   *ActiveRecord
	loadErr  error
	writeErr error

	// When saveGate is set SavePaused signals saving and blocks until the gate is closed.
	saveGate chan struct{}
	saving   chan struct{}
}

func (m *memMirror) holdSavePaused() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveGate = make(chan struct{})
	m.saving = make(chan struct{}, 1)
}

func (m *memMirror) releaseSavePaused() {
	m.mu.Lock()
	defer m.mu.Unlock()
	close(m.saveGate)
	m.saveGate = nil
}

func (m *memMirror) LoadPaused() (*PausedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.paused == nil {
		return nil, nil
	}
	rec := *m.paused
	return &rec, nil
}

func (m *memMirror) SavePaused(rec PausedRecord) error {
	m.mu.Lock()
	gate, saving := m.saveGate, m.saving
	m.mu.Unlock()
	if gate != nil {
		saving <- struct{}{}
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.paused = &rec
	return nil
}

func (m *memMirror) ClearPaused() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.paused = nil
	return nil
}

func (m *memMirror) LoadActive() (*ActiveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.active == nil {
		return nil, nil
	}
	rec := *m.active
	return &rec, nil
}

func (m *memMirror) SaveActive(rec ActiveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.active = &rec
	return nil
}

func (m *memMirror) ClearActive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.active = nil
	return nil
}

func (m *memMirror) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.paused = nil
	m.active = nil
	return nil
}

func (m *memMirror) snapshot() (*PausedRecord, *ActiveRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused, m.active
}
