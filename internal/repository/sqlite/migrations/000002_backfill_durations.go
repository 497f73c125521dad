package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

func init() {
	RegisterGoMigration(2, Up_000002_backfill_durations, Down_000002_backfill_durations)
}

// Up_000002_backfill_durations fills the duration column of closed entries
// that were written without one. Entries whose timestamps cannot be parsed
// are left untouched.
func Up_000002_backfill_durations(tx *sql.Tx) error {
	type entry struct {
		id        int64
		startTime string
		endTime   string
	}
	var entries []entry

	rows, err := tx.Query("SELECT id, start_time, end_time FROM time_entries WHERE end_time IS NOT NULL AND duration IS NULL")
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

	stmt, err := tx.Prepare("UPDATE time_entries SET duration = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare duration update statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		start, err := time.Parse(time.RFC3339Nano, e.startTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339Nano, e.endTime)
		if err != nil {
			continue
		}
		seconds := int64(end.Sub(start) / time.Second)
		if seconds < 0 {
			seconds = 0
		}
		if _, err := stmt.Exec(seconds, e.id); err != nil {
			return fmt.Errorf("failed to update duration of entry %d: %w", e.id, err)
		}
	}

	return nil
}

// Down_000002_backfill_durations is a no-op; backfilled durations stay valid.
func Down_000002_backfill_durations(tx *sql.Tx) error {
	return nil
}
