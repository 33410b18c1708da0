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

func newWorkloadMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWorkloadRepositoryAggregateByFaculty(t *testing.T) {
	db, mock, cleanup := newWorkloadMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	rows := sqlmock.NewRows([]string{"faculty_id", "faculty_name", "total_courses", "total_hours_week", "total_students"}).
		AddRow("f1", "Dr. Rao", 4, 24, 180).
		AddRow("f2", "Dr. Gill", 1, 4, 30)
	mock.ExpectQuery("SELECT f.id AS faculty_id").
		WillReturnRows(rows)

	aggregates, err := repo.AggregateByFaculty(context.Background())
	require.NoError(t, err)
	require.Len(t, aggregates, 2)
	assert.Equal(t, 24, aggregates[0].TotalHoursWeek)
}

func TestWorkloadRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newWorkloadMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	mock.ExpectExec("INSERT INTO workload_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.WorkloadRecord{
		FacultyID:      "f1",
		Semester:       3,
		AcademicYear:   "2025-2026",
		TotalCourses:   4,
		TotalHoursWeek: 24,
		TotalStudents:  180,
		Status:         models.WorkloadOverloaded,
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CalculatedOn.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkloadRepositoryListByPeriod(t *testing.T) {
	db, mock, cleanup := newWorkloadMock(t)
	defer cleanup()
	repo := NewWorkloadRepository(db)

	rows := sqlmock.NewRows([]string{"id", "faculty_id", "faculty_name", "semester", "academic_year",
		"total_courses", "total_hours_week", "total_students", "status", "calculated_on"}).
		AddRow("w1", "f1", "Dr. Rao", 3, "2025-2026", 4, 24, 180, "OVERLOADED", time.Now())
	mock.ExpectQuery("SELECT w.id, w.faculty_id").
		WithArgs(3, "2025-2026").
		WillReturnRows(rows)

	records, err := repo.ListByPeriod(context.Background(), 3, "2025-2026")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.WorkloadOverloaded, records[0].Status)
}
