package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

// WorkloadRepository persists faculty workload aggregates.
type WorkloadRepository struct {
	db *sqlx.DB
}

// NewWorkloadRepository constructs the repository.
func NewWorkloadRepository(db *sqlx.DB) *WorkloadRepository {
	return &WorkloadRepository{db: db}
}

// WorkloadAggregate is one faculty's load computed from course records.
type WorkloadAggregate struct {
	FacultyID      string `db:"faculty_id"`
	FacultyName    string `db:"faculty_name"`
	TotalCourses   int    `db:"total_courses"`
	TotalHoursWeek int    `db:"total_hours_week"`
	TotalStudents  int    `db:"total_students"`
}

// AggregateByFaculty sums weekly contact hours, course counts and enrolled
// students across every faculty member's courses.
func (r *WorkloadRepository) AggregateByFaculty(ctx context.Context) ([]WorkloadAggregate, error) {
	const query = `SELECT f.id AS faculty_id, f.full_name AS faculty_name,
        COUNT(c.id) AS total_courses,
        COALESCE(SUM(c.hours_per_week), 0) AS total_hours_week,
        COALESCE(SUM(cs.enrolled), 0) AS total_students
        FROM faculties f
        LEFT JOIN courses c ON c.faculty_id = f.id
        LEFT JOIN (SELECT course_id, COUNT(*) AS enrolled FROM course_students GROUP BY course_id) cs
            ON cs.course_id = c.id
        GROUP BY f.id, f.full_name
        ORDER BY f.full_name`
	var aggregates []WorkloadAggregate
	if err := r.db.SelectContext(ctx, &aggregates, query); err != nil {
		return nil, fmt.Errorf("aggregate faculty workloads: %w", err)
	}
	return aggregates, nil
}

// Upsert writes a workload record for a (faculty, semester, year) period,
// replacing any previous calculation.
func (r *WorkloadRepository) Upsert(ctx context.Context, record *models.WorkloadRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CalculatedOn.IsZero() {
		record.CalculatedOn = time.Now().UTC()
	}
	const query = `INSERT INTO workload_records (id, faculty_id, semester, academic_year, total_courses, total_hours_week, total_students, status, calculated_on)
        VALUES (:id, :faculty_id, :semester, :academic_year, :total_courses, :total_hours_week, :total_students, :status, :calculated_on)
        ON CONFLICT ON CONSTRAINT uq_workload_records_faculty_period
        DO UPDATE SET total_courses = EXCLUDED.total_courses, total_hours_week = EXCLUDED.total_hours_week,
            total_students = EXCLUDED.total_students, status = EXCLUDED.status, calculated_on = EXCLUDED.calculated_on`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert workload record: %w", err)
	}
	return nil
}

// ListByPeriod returns stored workload records for a semester and year.
func (r *WorkloadRepository) ListByPeriod(ctx context.Context, semester int, academicYear string) ([]models.WorkloadRecord, error) {
	const query = `SELECT w.id, w.faculty_id, f.full_name AS faculty_name, w.semester, w.academic_year,
        w.total_courses, w.total_hours_week, w.total_students, w.status, w.calculated_on
        FROM workload_records w
        LEFT JOIN faculties f ON f.id = w.faculty_id
        WHERE w.semester = $1 AND w.academic_year = $2
        ORDER BY w.total_hours_week DESC`
	var records []models.WorkloadRecord
	if err := r.db.SelectContext(ctx, &records, query, semester, academicYear); err != nil {
		return nil, fmt.Errorf("list workload records: %w", err)
	}
	return records, nil
}
