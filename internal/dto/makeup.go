package dto

import (
	"time"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

// CreateSessionRequest schedules a new make-up class. Caller identity arrives
// in the payload; there is no authentication layer in this service.
type CreateSessionRequest struct {
	FacultyID string `json:"facultyId" validate:"required"`
	CourseID  string `json:"courseId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
	Venue     string `json:"venue" validate:"required,max=100"`
	Reason    string `json:"reason" validate:"omitempty,oneof=HOLIDAY SICK EVENT EXTRA OTHER"`
	Notes     string `json:"notes"`
}

// SuggestionItem is one scored candidate slot returned to the caller.
type SuggestionItem struct {
	Date   time.Time `json:"date"`
	Time   string    `json:"time"`
	Score  int       `json:"score"`
	Reason string    `json:"reason"`
}

// CreateSessionResponse carries the stored session plus any best-effort
// suggestions. Suggestions may be empty when generation failed.
type CreateSessionResponse struct {
	Session     models.MakeUpSession `json:"session"`
	Suggestions []SuggestionItem     `json:"suggestions"`
}

// ActivateCodeRequest opens the attendance window.
type ActivateCodeRequest struct {
	DurationMinutes int `json:"durationMinutes" validate:"omitempty,min=1,max=480"`
}

// CodeStatusResponse is the polling payload for the remedial code.
type CodeStatusResponse struct {
	Active           bool                 `json:"active"`
	ExpiresInSeconds int                  `json:"expiresInSeconds"`
	Status           models.SessionStatus `json:"status"`
}

// MarkAttendanceRequest is a student code submission.
type MarkAttendanceRequest struct {
	Code      string `json:"code" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
}

// MarkAttendanceResponse confirms a stored attendance row.
type MarkAttendanceResponse struct {
	SessionID  string    `json:"sessionId"`
	CourseCode string    `json:"courseCode"`
	Date       time.Time `json:"date"`
	MarkedAt   time.Time `json:"markedAt"`
}

// SessionListResponse splits a faculty's sessions by lifecycle.
type SessionListResponse struct {
	Upcoming  []models.SessionDetail `json:"upcoming"`
	Completed []models.SessionDetail `json:"completed"`
}

// SessionDetailResponse is the faculty session view: roster marks, top
// suggestions and attendance aggregates.
type SessionDetailResponse struct {
	Session           models.SessionDetail          `json:"session"`
	Attendances       []models.MakeUpAttendance     `json:"attendances"`
	Suggestions       []models.SchedulingSuggestion `json:"suggestions"`
	PresentCount      int                           `json:"presentCount"`
	TotalEnrolled     int                           `json:"totalEnrolled"`
	AttendancePercent float64                       `json:"attendancePercent"`
}
