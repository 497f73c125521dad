package timer

import (
	"context"
	"time"
)

// Phase is the timer's lifecycle phase.
type Phase int

const (
	Stopped Phase = iota
	Running
	Paused
)

// String returns the lowercase phase name
func (p Phase) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// State is a read-only snapshot of the timer.
type State struct {
	Phase Phase
	// EntryID is the running entry's id, or the paused entry's id while
	// Paused. Zero means no entry is known yet. A non-zero id does not imply
	// Running.
	EntryID     int64
	ProjectID   int64
	ProjectName string
	Description string
	// StartTime is when the current running interval began, on the local
	// clock. Zero unless Running.
	StartTime          time.Time
	AccumulatedSeconds int64
	ElapsedSeconds     int64
	ClockSkewSeconds   int64
}

// Elapsed returns ElapsedSeconds as a time.Duration.
func (s State) Elapsed() time.Duration {
	return time.Duration(s.ElapsedSeconds) * time.Second
}

// StartRequest describes a new running timer.
type StartRequest struct {
	ProjectID   int64
	ProjectName string
	Description string
	// StartTime backdates the entry. Local clock; nil means now.
	StartTime *time.Time
}

// StopRequest carries optional overrides applied when the timer stops.
type StopRequest struct {
	Description *string
	ProjectID   *int64
	// EndTime is on the local clock and only applies to a running timer.
	EndTime *time.Time
}

// RunningEntry is the server's running entry handed to Load.
type RunningEntry struct {
	ID          int64
	ProjectID   int64
	ProjectName string
	Description string
	// StartTime is on the server clock.
	StartTime time.Time
}

// Bootstrap is what a host supplies when a session is loaded.
type Bootstrap struct {
	ServerNow *time.Time
	Running   *RunningEntry
}

// Reader is the read-only view handed to consumers of the timer.
type Reader interface {
	Snapshot() State
	// Subscribe registers fn to be called after every state change. The
	// returned func removes the subscription.
	Subscribe(fn func(State)) (unsubscribe func())
}

// Timer is the full set of operations of a timer session.
type Timer interface {
	Reader
	Start(ctx context.Context, req StartRequest) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context, req StopRequest) error
	Reset()
}
