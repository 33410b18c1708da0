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

const sessionColumns = `id, faculty_id, course_id, date, start_time, end_time, venue, reason, notes,
        remedial_code, code_active, code_activated_at, code_expires_at, status, ai_score, created_at`

// MakeupSessionRepository handles persistence of make-up sessions.
type MakeupSessionRepository struct {
	db *sqlx.DB
}

// NewMakeupSessionRepository constructs the repository.
func NewMakeupSessionRepository(db *sqlx.DB) *MakeupSessionRepository {
	return &MakeupSessionRepository{db: db}
}

// Create persists a new session. The remedial code's unique constraint may
// fire here; callers retry with a fresh code on IsUniqueViolation.
func (r *MakeupSessionRepository) Create(ctx context.Context, session *models.MakeUpSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	if session.Reason == "" {
		session.Reason = models.ReasonOther
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO makeup_sessions (id, faculty_id, course_id, date, start_time, end_time, venue, reason, notes,
        remedial_code, code_active, code_activated_at, code_expires_at, status, ai_score, created_at)
        VALUES (:id, :faculty_id, :course_id, :date, :start_time, :end_time, :venue, :reason, :notes,
        :remedial_code, :code_active, :code_activated_at, :code_expires_at, :status, :ai_score, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create makeup session: %w", err)
	}
	return nil
}

// FindByID returns a session by its ID.
func (r *MakeupSessionRepository) FindByID(ctx context.Context, id string) (*models.MakeUpSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM makeup_sessions WHERE id = $1`, sessionColumns)
	var session models.MakeUpSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByCode looks a session up by its remedial code.
func (r *MakeupSessionRepository) FindByCode(ctx context.Context, code string) (*models.MakeUpSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM makeup_sessions WHERE remedial_code = $1`, sessionColumns)
	var session models.MakeUpSession
	if err := r.db.GetContext(ctx, &session, query, code); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindDetailByID returns a session with course context.
func (r *MakeupSessionRepository) FindDetailByID(ctx context.Context, id string) (*models.SessionDetail, error) {
	const query = `SELECT ms.id, ms.faculty_id, ms.course_id, ms.date, ms.start_time, ms.end_time, ms.venue,
        ms.reason, ms.notes, ms.remedial_code, ms.code_active, ms.code_activated_at, ms.code_expires_at,
        ms.status, ms.ai_score, ms.created_at, c.code AS course_code, c.name AS course_name
        FROM makeup_sessions ms
        LEFT JOIN courses c ON c.id = ms.course_id
        WHERE ms.id = $1`
	var detail models.SessionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByFaculty returns all sessions owned by a faculty member, newest first.
func (r *MakeupSessionRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.SessionDetail, error) {
	const query = `SELECT ms.id, ms.faculty_id, ms.course_id, ms.date, ms.start_time, ms.end_time, ms.venue,
        ms.reason, ms.notes, ms.remedial_code, ms.code_active, ms.code_activated_at, ms.code_expires_at,
        ms.status, ms.ai_score, ms.created_at, c.code AS course_code, c.name AS course_name
        FROM makeup_sessions ms
        LEFT JOIN courses c ON c.id = ms.course_id
        WHERE ms.faculty_id = $1
        ORDER BY ms.date DESC, ms.start_time DESC`
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty sessions: %w", err)
	}
	return sessions, nil
}

// ListActiveByFacultyBetween returns the faculty's SCHEDULED/ONGOING sessions
// whose date falls inside [from, to], excluding one session. Feeds conflict
// and day-load computation in the scoring engine.
func (r *MakeupSessionRepository) ListActiveByFacultyBetween(ctx context.Context, facultyID string, from, to time.Time, excludeID string) ([]models.MakeUpSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM makeup_sessions
        WHERE faculty_id = $1 AND date >= $2 AND date <= $3 AND status IN ($4, $5)`, sessionColumns)
	args := []interface{}{facultyID, from, to, models.SessionStatusScheduled, models.SessionStatusOngoing}
	if excludeID != "" {
		query += " AND id <> $6"
		args = append(args, excludeID)
	}
	var sessions []models.MakeUpSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list active faculty sessions: %w", err)
	}
	return sessions, nil
}

// LastCompletedDate returns the date of the most recent COMPLETED session for
// a course, or nil when the course has none.
func (r *MakeupSessionRepository) LastCompletedDate(ctx context.Context, courseID string) (*time.Time, error) {
	const query = `SELECT date FROM makeup_sessions WHERE course_id = $1 AND status = $2
        ORDER BY date DESC LIMIT 1`
	var date time.Time
	if err := r.db.GetContext(ctx, &date, query, courseID, models.SessionStatusCompleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("last completed session date: %w", err)
	}
	return &date, nil
}

// ActivateCode opens the attendance window and forces ONGOING. Re-activation
// simply resets the window.
func (r *MakeupSessionRepository) ActivateCode(ctx context.Context, id string, activatedAt, expiresAt time.Time) error {
	const query = `UPDATE makeup_sessions
        SET code_active = TRUE, code_activated_at = $2, code_expires_at = $3, status = $4
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, activatedAt, expiresAt, models.SessionStatusOngoing); err != nil {
		return fmt.Errorf("activate remedial code: %w", err)
	}
	return nil
}

// DeactivateCode closes the window and completes the session. The expiry
// timestamp is intentionally left in place for audit.
func (r *MakeupSessionRepository) DeactivateCode(ctx context.Context, id string) error {
	const query = `UPDATE makeup_sessions SET code_active = FALSE, status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.SessionStatusCompleted); err != nil {
		return fmt.Errorf("deactivate remedial code: %w", err)
	}
	return nil
}

// UpdateCode swaps in a regenerated remedial code without touching the
// activation window. Subject to the same unique constraint as Create.
func (r *MakeupSessionRepository) UpdateCode(ctx context.Context, id, code string) error {
	const query = `UPDATE makeup_sessions SET remedial_code = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, code); err != nil {
		return fmt.Errorf("update remedial code: %w", err)
	}
	return nil
}

// UpdateStatus moves the session to the given lifecycle state.
func (r *MakeupSessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	const query = `UPDATE makeup_sessions SET status = $2, code_active = FALSE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}
