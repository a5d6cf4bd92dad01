package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"tracker/internal/domain"
	"tracker/internal/logging"
)

func init() {
	registerGoMigration(2, "backfill_durations", upBackfillDurations, nil)
}

// upBackfillDurations normalises stored start and stop times to HH:MM:SS and
// fills in the duration of closed entries imported without one. Rows that
// cannot be parsed are left untouched and reported.
func upBackfillDurations(ctx context.Context, tx *sql.Tx, d Dialect) error {
	type row struct {
		id    int64
		day   string
		start string
		stop  sql.NullString
		dur   sql.NullInt64
	}

	query := fmt.Sprintf("SELECT id, %s, %s, %s, duration FROM time_entries",
		d.DateText("day"), d.TimeText("start"), d.TimeText("stop"))
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query time entries: %w", err)
	}
	var entries []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.day, &r.start, &r.stop, &r.dur); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating time entries: %w", err)
	}
	rows.Close()

	update := fmt.Sprintf("UPDATE time_entries SET start = %s, stop = %s, duration = %s WHERE id = %s",
		d.TimeArg(d.Bind(1)), d.TimeArg(d.Bind(2)), d.Bind(3), d.Bind(4))
	stmt, err := tx.PrepareContext(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	updated, skipped := 0, 0
	for _, e := range entries {
		day, err := domain.ParseDate(e.day)
		if err != nil {
			logging.Debugf("backfill: skipping entry %d: %v\n", e.id, err)
			skipped++
			continue
		}
		start, err := domain.ParseTimeOfDay(e.start)
		if err != nil {
			logging.Debugf("backfill: skipping entry %d: %v\n", e.id, err)
			skipped++
			continue
		}

		var stop interface{}
		var duration interface{}
		if e.dur.Valid {
			duration = e.dur.Int64
		}
		if e.stop.Valid {
			tod, err := domain.ParseTimeOfDay(e.stop.String)
			if err != nil {
				logging.Debugf("backfill: skipping entry %d: %v\n", e.id, err)
				skipped++
				continue
			}
			stop = tod.String()
			if !e.dur.Valid {
				duration = domain.DurationHours(day, start, tod)
			}
		} else {
			duration = nil
		}

		if _, err := stmt.ExecContext(ctx, start.String(), stop, duration, e.id); err != nil {
			return fmt.Errorf("failed to update time entry %d: %w", e.id, err)
		}
		updated++
	}

	logging.Debugf("backfill: processed %d entries, updated %d, skipped %d\n", len(entries), updated, skipped)
	return nil
}
