package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	insertScoreSQL = `INSERT INTO score (result_id, submission, schedule, score)
		SELECT result_id, submission, schedule,
			1.0 - (rank - 1) / (max_rank * 1.0)
		FROM ranking
	`

	// Applied after scoring so it wins over whatever rank the sentinel got.
	updateMissingScoreSQL = `UPDATE score SET score = 0
		WHERE result_id IN (SELECT id FROM result WHERE missing = 1)
	`

	selectScoreSQL = `SELECT s.submission, s.schedule, r.rank, r.max_rank, res.missing, s.score
		FROM score s
		JOIN ranking r ON r.result_id = s.result_id
		JOIN result res ON res.id = s.result_id
		ORDER BY s.schedule, r.rank, s.result_id
	`

	// SQLite round() rounds half away from zero.
	selectMarkSQL = `SELECT submission, ROUND(AVG(score) * ?, 1) AS mark
		FROM score
		GROUP BY submission
		ORDER BY submission
	`
)

// Score converts every rank into a score in [0, 1] and zeroes the score of
// results whose average was missing. Call Rank first.
func (s *Store) Score(ctx context.Context) ([]ScoredEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	if err := execTx(ctx, db,
		"DELETE FROM score",
		insertScoreSQL,
		updateMissingScoreSQL,
	); err != nil {
		return nil, fmt.Errorf("error scoring ranks: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectScoreSQL)
	if err != nil {
		return nil, fmt.Errorf("error selecting scores: %w", err)
	}
	defer rows.Close()

	list := make([]ScoredEntry, 0)
	for rows.Next() {
		var e ScoredEntry
		if err := rows.Scan(&e.Submission, &e.Schedule, &e.Rank, &e.MaxRank, &e.Missing, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score rows: %w", err)
	}

	slog.Debug("ranks scored", "entries", len(list))
	return list, nil
}

// Marks averages each submission's scores across its schedules, scaled to
// maxScore and rounded to one decimal place. Call Score first.
func (s *Store) Marks(ctx context.Context, maxScore int) ([]FinalMark, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if maxScore < 0 {
		return nil, fmt.Errorf("invalid max score: %d", maxScore)
	}

	rows, err := db.QueryContext(ctx, selectMarkSQL, maxScore)
	if err != nil {
		return nil, fmt.Errorf("error selecting marks: %w", err)
	}
	defer rows.Close()

	list := make([]FinalMark, 0)
	for rows.Next() {
		var m FinalMark
		if err := rows.Scan(&m.Submission, &m.Mark); err != nil {
			return nil, fmt.Errorf("failed to scan mark row: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mark rows: %w", err)
	}

	slog.Debug("marks computed", "submissions", len(list), "max_score", maxScore)
	return list, nil
}

// Run scores observations end to end in a fresh in-memory store.
func Run(ctx context.Context, list []Observation, maxScore int) (report *Report, err error) {
	s, err := Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	if err := s.Load(ctx, list); err != nil {
		return nil, err
	}

	sentinel, err := s.Normalize(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.Rank(ctx); err != nil {
		return nil, err
	}

	entries, err := s.Score(ctx)
	if err != nil {
		return nil, err
	}

	marks, err := s.Marks(ctx, maxScore)
	if err != nil {
		return nil, err
	}

	report = &Report{
		MaxScore:     maxScore,
		Observations: len(list),
		Sentinel:     sentinel,
		Marks:        marks,
		Entries:      entries,
	}
	for _, o := range list {
		if !o.Average.Valid {
			report.Missing++
		}
	}
	return report, nil
}
