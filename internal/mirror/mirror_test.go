package mirror

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetrack/internal/timer"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUserMirror_Records(t *testing.T) {
	m := openInMemory(t).ForUser(1)

	paused, err := m.LoadPaused()
	require.NoError(t, err)
	assert.Nil(t, paused)
	active, err := m.LoadActive()
	require.NoError(t, err)
	assert.Nil(t, active)

	rec := timer.PausedRecord{ID: 42, ProjectID: 7, Description: "landing page", ProjectName: "Website", AccumulatedSeconds: 90}
	require.NoError(t, m.SavePaused(rec))
	require.NoError(t, m.SaveActive(timer.ActiveRecord{ProjectID: 7, AccumulatedSeconds: 90}))

	paused, err = m.LoadPaused()
	require.NoError(t, err)
	assert.Equal(t, &rec, paused)
	active, err = m.LoadActive()
	require.NoError(t, err)
	assert.Equal(t, &timer.ActiveRecord{ProjectID: 7, AccumulatedSeconds: 90}, active)

	require.NoError(t, m.ClearPaused())
	paused, err = m.LoadPaused()
	require.NoError(t, err)
	assert.Nil(t, paused)

	require.NoError(t, m.ClearActive())
	active, err = m.LoadActive()
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestUserMirror_Clear(t *testing.T) {
	m := openInMemory(t).ForUser(1)
	require.NoError(t, m.SavePaused(timer.PausedRecord{ID: 1}))
	require.NoError(t, m.SaveActive(timer.ActiveRecord{ProjectID: 1}))

	require.NoError(t, m.Clear())

	paused, _ := m.LoadPaused()
	active, _ := m.LoadActive()
	assert.Nil(t, paused)
	assert.Nil(t, active)

	// Clearing nothing is fine
	assert.NoError(t, m.Clear())
}

func TestUserMirror_UsersAreIsolated(t *testing.T) {
	store := openInMemory(t)
	alice := store.ForUser(1)
	bob := store.ForUser(2)

	require.NoError(t, alice.SavePaused(timer.PausedRecord{ID: 10}))

	paused, err := bob.LoadPaused()
	require.NoError(t, err)
	assert.Nil(t, paused)

	require.NoError(t, bob.Clear())
	paused, err = alice.LoadPaused()
	require.NoError(t, err)
	require.NotNil(t, paused)
	assert.Equal(t, int64(10), paused.ID)
}

func TestUserMirror_CorruptRecordIsDiscarded(t *testing.T) {
	store := openInMemory(t)
	m := store.ForUser(1)

	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(m.pausedKey, []byte("{not json"))
	}))

	paused, err := m.LoadPaused()
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.Nil(t, paused)

	// The record was deleted, so the next load sees nothing
	paused, err = m.LoadPaused()
	assert.NoError(t, err)
	assert.Nil(t, paused)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, store.ForUser(1).SavePaused(timer.PausedRecord{ID: 42, AccumulatedSeconds: 90}))
	require.NoError(t, store.Close())

	store, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer store.Close()

	paused, err := store.ForUser(1).LoadPaused()
	require.NoError(t, err)
	require.NotNil(t, paused)
	assert.Equal(t, int64(90), paused.AccumulatedSeconds)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestUserMirror_DrivesController(t *testing.T) {
	m := openInMemory(t).ForUser(1)
	require.NoError(t, m.SavePaused(timer.PausedRecord{ID: 42, ProjectID: 7, AccumulatedSeconds: 90}))

	c := timer.NewController(nil, m)
	defer c.Close()
	require.NoError(t, c.Load(timer.Bootstrap{}))

	state := c.Snapshot()
	assert.Equal(t, timer.Paused, state.Phase)
	assert.Equal(t, int64(42), state.EntryID)
	assert.Equal(t, int64(90), state.ElapsedSeconds)
}
