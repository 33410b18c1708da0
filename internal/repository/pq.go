package repository

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, optionally scoped to a named constraint. The unique constraints
// on the remedial code and the (session, student) attendance pair are the
// backstop against concurrent duplicates.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// Constraint names referenced by services when translating integrity errors.
const (
	ConstraintSessionCode    = "uq_makeup_sessions_remedial_code"
	ConstraintAttendanceOnce = "uq_makeup_attendances_session_student"
	ConstraintWorkloadPeriod = "uq_workload_records_faculty_period"
)
