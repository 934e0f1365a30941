package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

const (
	selectMaxAverageSQL = `SELECT MAX(average) FROM result WHERE missing = 0`

	updateMissingAverageSQL = `UPDATE result SET average = ? WHERE missing = 1`
)

// Normalize replaces every missing average with a sentinel one greater than the
// largest valid average in the whole dataset (or 1 when that is not positive),
// so missing entries rank last in every schedule. The missing flag is kept.
func (s *Store) Normalize(ctx context.Context) (float64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	var maxVal sql.NullFloat64
	if err := db.QueryRowContext(ctx, selectMaxAverageSQL).Scan(&maxVal); err != nil {
		return 0, fmt.Errorf("error selecting max average: %w", err)
	}

	sentinel := Sentinel(maxVal.Float64)

	res, err := db.ExecContext(ctx, updateMissingAverageSQL, sentinel)
	if err != nil {
		return 0, fmt.Errorf("error updating missing averages: %w", err)
	}

	n, _ := res.RowsAffected()
	slog.Debug("missing averages normalized", "sentinel", sentinel, "rows", n)
	return sentinel, nil
}

// Sentinel returns the imputed average for missing values given the largest
// valid average. The search for the maximum starts at 0, so negative data
// still yields a sentinel of 1.
func Sentinel(maxVal float64) float64 {
	return max(maxVal, 0) + 1
}
