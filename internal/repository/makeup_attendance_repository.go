package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

// MakeupAttendanceRepository handles persistence of remedial attendance rows.
type MakeupAttendanceRepository struct {
	db *sqlx.DB
}

// NewMakeupAttendanceRepository constructs the repository.
func NewMakeupAttendanceRepository(db *sqlx.DB) *MakeupAttendanceRepository {
	return &MakeupAttendanceRepository{db: db}
}

// Create inserts a single attendance row. The (session, student) unique
// constraint serialises concurrent submissions; callers translate that
// violation to the already-marked outcome.
func (r *MakeupAttendanceRepository) Create(ctx context.Context, attendance *models.MakeUpAttendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	if attendance.Status == "" {
		attendance.Status = models.AttendancePresent
	}
	if attendance.MarkedAt.IsZero() {
		attendance.MarkedAt = time.Now().UTC()
	}
	const query = `INSERT INTO makeup_attendances (id, session_id, student_id, status, marked_at, code_used, ip_address)
        VALUES (:id, :session_id, :student_id, :status, :marked_at, :code_used, :ip_address)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("create makeup attendance: %w", err)
	}
	return nil
}

// Exists checks whether the student already marked this session.
func (r *MakeupAttendanceRepository) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM makeup_attendances WHERE session_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, sessionID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check makeup attendance: %w", err)
	}
	return true, nil
}

// ListBySession returns the roster marks ordered by marking time.
func (r *MakeupAttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.MakeUpAttendance, error) {
	const query = `SELECT id, session_id, student_id, status, marked_at, code_used, ip_address
        FROM makeup_attendances WHERE session_id = $1 ORDER BY marked_at`
	var rows []models.MakeUpAttendance
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list makeup attendances: %w", err)
	}
	return rows, nil
}

// CountPresent counts PRESENT marks for a session.
func (r *MakeupAttendanceRepository) CountPresent(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM makeup_attendances WHERE session_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sessionID, models.AttendancePresent); err != nil {
		return 0, fmt.Errorf("count present attendances: %w", err)
	}
	return count, nil
}
