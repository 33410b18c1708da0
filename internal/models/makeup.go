package models

import "time"

// SessionStatus is the lifecycle state of a make-up session. Transitions only
// move forward: SCHEDULED -> ONGOING -> COMPLETED, with CANCELLED reachable
// from SCHEDULED or ONGOING through an explicit cancel action.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusOngoing   SessionStatus = "ONGOING"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// Valid reports whether the status is a supported value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusOngoing, SessionStatusCompleted, SessionStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// CanTransitionTo enforces the forward-only state machine.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case SessionStatusOngoing:
		return s == SessionStatusScheduled || s == SessionStatusOngoing
	case SessionStatusCompleted, SessionStatusCancelled:
		return s == SessionStatusScheduled || s == SessionStatusOngoing
	default:
		return false
	}
}

// SessionReason categorises why a make-up class is needed.
type SessionReason string

const (
	ReasonHoliday SessionReason = "HOLIDAY"
	ReasonSick    SessionReason = "SICK"
	ReasonEvent   SessionReason = "EVENT"
	ReasonExtra   SessionReason = "EXTRA"
	ReasonOther   SessionReason = "OTHER"
)

// Valid reports whether the reason is a supported value.
func (r SessionReason) Valid() bool {
	switch r {
	case ReasonHoliday, ReasonSick, ReasonEvent, ReasonExtra, ReasonOther:
		return true
	default:
		return false
	}
}

// RemedialCodeLength is the fixed length of attendance codes.
const RemedialCodeLength = 6

// MakeUpSession is a scheduled remedial class instance. The remedial code is
// globally unique across all sessions; code_active implies the activation and
// expiry timestamps are set.
type MakeUpSession struct {
	ID              string        `db:"id" json:"id"`
	FacultyID       string        `db:"faculty_id" json:"faculty_id"`
	CourseID        string        `db:"course_id" json:"course_id"`
	Date            time.Time     `db:"date" json:"date"`
	StartTime       string        `db:"start_time" json:"start_time"`
	EndTime         string        `db:"end_time" json:"end_time"`
	Venue           string        `db:"venue" json:"venue"`
	Reason          SessionReason `db:"reason" json:"reason"`
	Notes           string        `db:"notes" json:"notes"`
	RemedialCode    string        `db:"remedial_code" json:"remedial_code"`
	CodeActive      bool          `db:"code_active" json:"code_active"`
	CodeActivatedAt *time.Time    `db:"code_activated_at" json:"code_activated_at,omitempty"`
	CodeExpiresAt   *time.Time    `db:"code_expires_at" json:"code_expires_at,omitempty"`
	Status          SessionStatus `db:"status" json:"status"`
	AIScore         int           `db:"ai_score" json:"ai_score"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// IsCodeValid reports whether the remedial code admits attendance at the given
// instant. Expiry is enforced lazily here, never by a background sweep.
func (s *MakeUpSession) IsCodeValid(now time.Time) bool {
	if !s.CodeActive {
		return false
	}
	if s.CodeExpiresAt != nil && now.After(*s.CodeExpiresAt) {
		return false
	}
	return true
}

// SessionDetail enriches a session with course context for listings.
type SessionDetail struct {
	MakeUpSession
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
}

// AttendanceStatus is the per-student outcome for a make-up session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// MakeUpAttendance records a single student mark for a session. Rows are
// created once and never mutated; (session, student) is unique.
type MakeUpAttendance struct {
	ID        string           `db:"id" json:"id"`
	SessionID string           `db:"session_id" json:"session_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
	CodeUsed  string           `db:"code_used" json:"code_used"`
	IPAddress *string          `db:"ip_address" json:"ip_address,omitempty"`
}

// SchedulingSuggestion is a scored, explained candidate slot persisted for a
// session. Only the acceptance flag mutates after creation.
type SchedulingSuggestion struct {
	ID            string    `db:"id" json:"id"`
	SessionID     string    `db:"session_id" json:"session_id"`
	SuggestedDate time.Time `db:"suggested_date" json:"suggested_date"`
	SuggestedTime string    `db:"suggested_time" json:"suggested_time"`
	Score         int       `db:"score" json:"score"`
	Reason        string    `db:"reason" json:"reason"`
	IsAccepted    bool      `db:"is_accepted" json:"is_accepted"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
