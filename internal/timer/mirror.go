package timer

// PausedRecord is the mirror's snapshot of a paused timer.
type PausedRecord struct {
	ID                 int64  `json:"id"`
	ProjectID          int64  `json:"projectId"`
	Description        string `json:"description"`
	ProjectName        string `json:"projectName"`
	AccumulatedSeconds int64  `json:"accumulatedTime"`
}

// ActiveRecord marks a timer the client believes is running. It is advisory:
// Load reads it only to clear it when the server has no running entry.
type ActiveRecord struct {
	ProjectID          int64 `json:"projectId"`
	AccumulatedSeconds int64 `json:"accumulatedTime"`
}

// Mirror is the reload-surviving local store of timer state. Loads return
// nil with no error when the record is absent. Implementations delete a
// record that cannot be decoded and report the failure.
type Mirror interface {
	LoadPaused() (*PausedRecord, error)
	SavePaused(rec PausedRecord) error
	ClearPaused() error
	LoadActive() (*ActiveRecord, error)
	SaveActive(rec ActiveRecord) error
	ClearActive() error
	// Clear removes both records.
	Clear() error
}
