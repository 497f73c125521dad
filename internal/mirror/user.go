package mirror

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"timetrack/internal/timer"
)

// ErrCorruptRecord is wrapped by load errors for records that could not be
// decoded. The record is deleted before the error is returned.
var ErrCorruptRecord = stderrors.New("corrupt mirror record")

// UserMirror implements timer.Mirror for a single user.
type UserMirror struct {
	db        *badger.DB
	pausedKey []byte
	activeKey []byte
}

var _ timer.Mirror = (*UserMirror)(nil)

func (m *UserMirror) LoadPaused() (*timer.PausedRecord, error) {
	var rec timer.PausedRecord
	found, err := m.load(m.pausedKey, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (m *UserMirror) SavePaused(rec timer.PausedRecord) error {
	return m.save(m.pausedKey, rec)
}

func (m *UserMirror) ClearPaused() error {
	return m.delete(m.pausedKey)
}

func (m *UserMirror) LoadActive() (*timer.ActiveRecord, error) {
	var rec timer.ActiveRecord
	found, err := m.load(m.activeKey, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (m *UserMirror) SaveActive(rec timer.ActiveRecord) error {
	return m.save(m.activeKey, rec)
}

func (m *UserMirror) ClearActive() error {
	return m.delete(m.activeKey)
}

func (m *UserMirror) Clear() error {
	return m.delete(m.pausedKey, m.activeKey)
}

func (m *UserMirror) load(key []byte, dst interface{}) (bool, error) {
	var decodeErr error
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decodeErr = json.Unmarshal(val, dst)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if decodeErr != nil {
		if delErr := m.delete(key); delErr != nil {
			return false, stderrors.Join(fmt.Errorf("%w %s: %v", ErrCorruptRecord, key, decodeErr), delErr)
		}
		return false, fmt.Errorf("%w %s: %v", ErrCorruptRecord, key, decodeErr)
	}
	return true, nil
}

func (m *UserMirror) save(key []byte, rec interface{}) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (m *UserMirror) delete(keys ...[]byte) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete mirror records: %w", err)
	}
	return nil
}
