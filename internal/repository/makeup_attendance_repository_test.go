package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

func newAttendanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMakeupAttendanceRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewMakeupAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO makeup_attendances").
		WithArgs(sqlmock.AnyArg(), "s1", "st1", models.AttendancePresent, sqlmock.AnyArg(), "A3X7K2", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	attendance := &models.MakeUpAttendance{SessionID: "s1", StudentID: "st1", CodeUsed: "A3X7K2"}
	require.NoError(t, repo.Create(context.Background(), attendance))
	assert.NotEmpty(t, attendance.ID)
	assert.False(t, attendance.MarkedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMakeupAttendanceRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewMakeupAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO makeup_attendances").
		WillReturnError(&pq.Error{Code: "23505", Constraint: ConstraintAttendanceOnce})

	err := repo.Create(context.Background(), &models.MakeUpAttendance{SessionID: "s1", StudentID: "st1"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err, ConstraintAttendanceOnce))
}

func TestMakeupAttendanceRepositoryExists(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewMakeupAttendanceRepository(db)

	mock.ExpectQuery("SELECT 1 FROM makeup_attendances").
		WithArgs("s1", "st1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), "s1", "st1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMakeupAttendanceRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewMakeupAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "session_id", "student_id", "status", "marked_at", "code_used", "ip_address"}).
		AddRow("a1", "s1", "st1", "PRESENT", time.Now(), "A3X7K2", "203.0.113.7").
		AddRow("a2", "s1", "st2", "PRESENT", time.Now(), "A3X7K2", nil)
	mock.ExpectQuery("SELECT (.+) FROM makeup_attendances WHERE session_id").
		WithArgs("s1").
		WillReturnRows(rows)

	marks, err := repo.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, marks, 2)
	require.NotNil(t, marks[0].IPAddress)
	assert.Equal(t, "203.0.113.7", *marks[0].IPAddress)
	assert.Nil(t, marks[1].IPAddress)
}

func TestMakeupAttendanceRepositoryCountPresent(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewMakeupAttendanceRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("s1", models.AttendancePresent).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountPresent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
