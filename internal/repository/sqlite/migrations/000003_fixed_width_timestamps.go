package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

// storedTimeLayout mirrors sqlite.TimeLayout; the sqlite package imports this one.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func init() {
	RegisterGoMigration(3, Up_000003_fixed_width_timestamps, Down_000003_fixed_width_timestamps)
}

// Up_000003_fixed_width_timestamps rewrites start and end times into the
// fixed-width nanosecond layout so old and new rows sort together. Values that
// do not parse as RFC3339 are left untouched.
func Up_000003_fixed_width_timestamps(tx *sql.Tx) error {
	return rewriteTimestamps(tx, func(s string) (string, bool) {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return "", false
		}
		return t.UTC().Format(storedTimeLayout), true
	})
}

// Down_000003_fixed_width_timestamps goes back to whole-second RFC3339.
func Down_000003_fixed_width_timestamps(tx *sql.Tx) error {
	return rewriteTimestamps(tx, func(s string) (string, bool) {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return "", false
		}
		return t.UTC().Format(time.RFC3339), true
	})
}

func rewriteTimestamps(tx *sql.Tx, convert func(string) (string, bool)) error {
	// Read all rows into memory first to avoid locking issues
	type entry struct {
		id        int64
		startTime string
		endTime   sql.NullString
	}
	var entries []entry

	rows, err := tx.Query("SELECT id, start_time, end_time FROM time_entries")
	if err != nil {
		return fmt.Errorf("failed to query time entries: %w", err)
	}
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.startTime, &e.endTime); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating time entries: %w", err)
	}
	rows.Close()

	startStmt, err := tx.Prepare("UPDATE time_entries SET start_time = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare start_time update statement: %w", err)
	}
	defer startStmt.Close()

	endStmt, err := tx.Prepare("UPDATE time_entries SET end_time = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare end_time update statement: %w", err)
	}
	defer endStmt.Close()

	for _, e := range entries {
		if start, ok := convert(e.startTime); ok {
			if _, err := startStmt.Exec(start, e.id); err != nil {
				return fmt.Errorf("failed to update start_time for id %d: %w", e.id, err)
			}
		}
		if !e.endTime.Valid {
			continue
		}
		if end, ok := convert(e.endTime.String); ok {
			if _, err := endStmt.Exec(end, e.id); err != nil {
				return fmt.Errorf("failed to update end_time for id %d: %w", e.id, err)
			}
		}
	}

	return nil
}
