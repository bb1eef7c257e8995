package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLXSessionRepository_GetSessionStats(t *testing.T) {
	ctx := context.Background()
	db, mockSQL := newMockDB(t)
	mockSQL.ExpectQuery("SELECT user_id,").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total", "correct_count"}).
			AddRow("ua", 4, 3).
			AddRow("ub", 2, 0))

	repo := NewSQLXSessionRepository(db)
	stats, err := repo.GetSessionStats(ctx, "s1")

	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 3, stats[0].CorrectCount)
	assert.Equal(t, 2, stats[1].Total)
}

func TestSQLXSessionRepository_GetLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("all time", func(t *testing.T) {
		db, mockSQL := newMockDB(t)
		mockSQL.ExpectQuery("SELECT u\\.id AS user_id, u\\.username, COUNT\\(\\*\\) AS correct_count").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "correct_count"}).
				AddRow("ua", "alice", 7).
				AddRow("ub", "bob", 7))

		repo := NewSQLXSessionRepository(db)
		rows, err := repo.GetLeaderboard(ctx, nil, 10)

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "alice", rows[0].Username)
	})

	t.Run("windowed", func(t *testing.T) {
		db, mockSQL := newMockDB(t)
		since := time.Now().AddDate(0, 0, -7)
		mockSQL.ExpectQuery("SELECT u\\.id AS user_id, u\\.username, COUNT\\(\\*\\) AS correct_count").
			WithArgs(since, 10).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "correct_count"}))

		repo := NewSQLXSessionRepository(db)
		rows, err := repo.GetLeaderboard(ctx, &since, 10)

		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mockSQL.ExpectationsWereMet())
	})
}

func TestSQLXSessionRepository_UpdateSessionStatus(t *testing.T) {
	ctx := context.Background()
	db, mockSQL := newMockDB(t)
	mockSQL.ExpectExec("UPDATE study_sessions SET status = \\?, last_activity = \\? WHERE id = \\?").
		WithArgs("archived", sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSQLXSessionRepository(db)
	require.NoError(t, repo.UpdateSessionStatus(ctx, "s1", "archived"))
	assert.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestSQLXSessionRepository_GetCorrectWordIDs(t *testing.T) {
	ctx := context.Background()
	db, mockSQL := newMockDB(t)
	mockSQL.ExpectQuery("SELECT DISTINCT word_id FROM attempts").
		WithArgs("s1", "ua", "zh2en").
		WillReturnRows(sqlmock.NewRows([]string{"word_id"}).AddRow("w1").AddRow("w3"))

	repo := NewSQLXSessionRepository(db)
	ids, err := repo.GetCorrectWordIDs(ctx, "s1", "ua", "zh2en")

	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w3"}, ids)
}
