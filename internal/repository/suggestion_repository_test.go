package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

func newSuggestionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSuggestionRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newSuggestionMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	mock.ExpectExec("INSERT INTO scheduling_suggestions").
		WillReturnResult(sqlmock.NewResult(0, 2))

	batch := []models.SchedulingSuggestion{
		{SessionID: "s1", SuggestedTime: "08:00", Score: 100, Reason: "faculty is free at this time"},
		{SessionID: "s1", SuggestedTime: "09:00", Score: 95},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), batch))
	assert.NotEmpty(t, batch[0].ID)
	assert.False(t, batch[1].CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryCreateBatchEmpty(t *testing.T) {
	db, _, cleanup := newSuggestionMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	// No statement expected for an empty batch.
	require.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestSuggestionRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newSuggestionMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "session_id", "suggested_date", "suggested_time", "score", "reason", "is_accepted", "created_at"}).
		AddRow("sug1", "s1", time.Now(), "08:00", 100, "faculty is free at this time", false, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM scheduling_suggestions WHERE session_id").
		WithArgs("s1", 3).
		WillReturnRows(rows)

	suggestions, err := repo.ListBySession(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 100, suggestions[0].Score)
}

func TestSuggestionRepositorySetAccepted(t *testing.T) {
	db, mock, cleanup := newSuggestionMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	mock.ExpectExec("UPDATE scheduling_suggestions SET is_accepted").
		WithArgs("sug1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetAccepted(context.Background(), "sug1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
