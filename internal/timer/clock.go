package timer

import "time"

// Clock is the single source of wall-clock time for the controller.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock reads the machine clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }

func (s systemTicker) Stop() { s.t.Stop() }

// Skew is the fixed offset between the local clock and the server clock,
// measured once when a session is loaded.
type Skew struct {
	offset time.Duration
}

// NewSkew computes clientNow - serverNow. A nil server time means the clocks
// are assumed to agree.
func NewSkew(serverNow *time.Time, clientNow time.Time) Skew {
	if serverNow == nil {
		return Skew{}
	}
	return Skew{offset: clientNow.Sub(*serverNow)}
}

// ToClient shifts a server timestamp onto the local clock.
func (s Skew) ToClient(serverTime time.Time) time.Time {
	return serverTime.Add(s.offset)
}

// ToServer shifts a local timestamp onto the server clock.
func (s Skew) ToServer(clientTime time.Time) time.Time {
	return clientTime.Add(-s.offset)
}

// Duration returns the signed offset.
func (s Skew) Duration() time.Duration {
	return s.offset
}

// Seconds returns the signed offset rounded to whole seconds.
func (s Skew) Seconds() int64 {
	return int64(s.offset.Round(time.Second) / time.Second)
}
