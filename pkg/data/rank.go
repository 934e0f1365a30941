package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

const (
	// Standard competition ranking: ties share a rank and the next distinct
	// average skips ahead by the size of the tie (1, 1, 3).
	insertRankSQL = `INSERT INTO ranking (result_id, submission, schedule, rank)
		SELECT id, submission, schedule,
			RANK() OVER (PARTITION BY schedule ORDER BY average)
		FROM result
	`

	insertScheduleMaxSQL = `INSERT INTO schedule_max (schedule, max_rank)
		SELECT schedule, MAX(rank) FROM ranking GROUP BY schedule
	`

	updateMaxRankSQL = `UPDATE ranking SET max_rank = (
			SELECT max_rank FROM schedule_max
			WHERE schedule_max.schedule = ranking.schedule
		)
	`

	selectRankSQL = `SELECT submission, schedule, rank, max_rank
		FROM ranking
		ORDER BY schedule, rank, result_id
	`
)

// Rank assigns every result its competition rank within its schedule along
// with the highest rank of that schedule. Call Normalize first so missing
// averages sort last.
func (s *Store) Rank(ctx context.Context) ([]RankedEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	if err := execTx(ctx, db,
		"DELETE FROM ranking",
		"DELETE FROM schedule_max",
		insertRankSQL,
		insertScheduleMaxSQL,
		updateMaxRankSQL,
	); err != nil {
		return nil, fmt.Errorf("error ranking results: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectRankSQL)
	if err != nil {
		return nil, fmt.Errorf("error selecting ranks: %w", err)
	}
	defer rows.Close()

	list := make([]RankedEntry, 0)
	schedules := make(map[string]struct{})
	for rows.Next() {
		var e RankedEntry
		if err := rows.Scan(&e.Submission, &e.Schedule, &e.Rank, &e.MaxRank); err != nil {
			return nil, fmt.Errorf("failed to scan rank row: %w", err)
		}
		schedules[e.Schedule] = struct{}{}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank rows: %w", err)
	}

	slog.Debug("results ranked", "entries", len(list), "schedules", len(schedules))
	return list, nil
}

func execTx(ctx context.Context, db *sql.DB, stmts ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return tx.Commit()
}
