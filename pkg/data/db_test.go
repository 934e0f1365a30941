package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func obs(submission, schedule, average string) Observation {
	return Observation{
		Submission: submission,
		Schedule:   schedule,
		Average:    ParseAverage(average),
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := setupTestStore(t)

	for _, table := range []string{"result", "ranking", "schedule_max", "score"} {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		require.NoError(t, err, table)
		assert.Equal(t, 0, count, table)
	}
}

func TestGetDB_EmptyPath(t *testing.T) {
	_, err := GetDB("")
	assert.Error(t, err)
}

func TestStore_NilDB(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.ErrorIs(t, s.Load(ctx, nil), errDBNotInitialized)
	_, err := s.Normalize(ctx)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = s.Rank(ctx)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = s.Score(ctx)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = s.Marks(ctx, 100)
	assert.ErrorIs(t, err, errDBNotInitialized)
	assert.NoError(t, s.Close())
}

func TestStore_ClosedDB(t *testing.T) {
	s, err := Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Load(context.Background(), []Observation{obs("a", "s1", "1")})
	assert.ErrorIs(t, err, errDBNotInitialized)
}

func TestLoad_KeepsEveryRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.Load(ctx, []Observation{
		obs("a", "s1", "10"),
		obs("a", "s1", "10"),
		obs("b", "s1", "oops"),
	})
	require.NoError(t, err)

	var total, missing int
	err = s.db.QueryRow("SELECT COUNT(*), SUM(missing) FROM result").Scan(&total, &missing)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, missing)

	var nulls int
	err = s.db.QueryRow("SELECT COUNT(*) FROM result WHERE average IS NULL").Scan(&nulls)
	require.NoError(t, err)
	assert.Equal(t, 1, nulls)
}
