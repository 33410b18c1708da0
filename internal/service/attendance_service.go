package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/models"
	"github.com/noah-isme/campus-cms-api/internal/repository"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
)

type sessionByCodeFinder interface {
	FindByCode(ctx context.Context, code string) (*models.MakeUpSession, error)
}

type attendanceWriter interface {
	Create(ctx context.Context, attendance *models.MakeUpAttendance) error
	Exists(ctx context.Context, sessionID, studentID string) (bool, error)
}

type enrollmentChecker interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// AttendanceService validates student code submissions and records marks.
// Rejections follow a fixed order so a submission never reveals more than the
// first failing check: malformed, unknown code, inactive, expired, not
// enrolled, already marked.
type AttendanceService struct {
	sessions    sessionByCodeFinder
	attendances attendanceWriter
	courses     enrollmentChecker
	validator   *validator.Validate
	clock       clock.Clock
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewAttendanceService wires the attendance capture dependencies.
func NewAttendanceService(
	sessions sessionByCodeFinder,
	attendances attendanceWriter,
	courses enrollmentChecker,
	validate *validator.Validate,
	clk clock.Clock,
	logger *zap.Logger,
	metrics *MetricsService,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		sessions:    sessions,
		attendances: attendances,
		courses:     courses,
		validator:   validate,
		clock:       clk,
		logger:      logger,
		metrics:     metrics,
	}
}

// Mark runs the validation chain for a code submission and stores a single
// PRESENT row on success. originIP is the submitter's address as seen by the
// HTTP layer; it is stored verbatim for audit.
func (s *AttendanceService) Mark(ctx context.Context, req dto.MarkAttendanceRequest, originIP string) (*dto.MarkAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) != models.RemedialCodeLength {
		return nil, s.reject(appErrors.ErrCodeMalformed)
	}

	session, err := s.sessions.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.reject(appErrors.ErrCodeInvalid)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up code")
	}

	now := s.clock.Now().UTC()
	if !session.CodeActive {
		return nil, s.reject(appErrors.ErrCodeNotActive)
	}
	if session.CodeExpiresAt != nil && now.After(*session.CodeExpiresAt) {
		return nil, s.reject(appErrors.ErrCodeExpired)
	}

	enrolled, err := s.courses.IsEnrolled(ctx, session.CourseID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, s.reject(appErrors.ErrNotEnrolled)
	}

	marked, err := s.attendances.Exists(ctx, session.ID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance")
	}
	if marked {
		return nil, s.reject(appErrors.ErrAlreadyMarked)
	}

	attendance := &models.MakeUpAttendance{
		SessionID: session.ID,
		StudentID: req.StudentID,
		Status:    models.AttendancePresent,
		MarkedAt:  now,
		CodeUsed:  code,
	}
	if originIP != "" {
		attendance.IPAddress = &originIP
	}
	if err := s.attendances.Create(ctx, attendance); err != nil {
		// A concurrent submission can slip past the Exists check; the unique
		// constraint is the arbiter.
		if repository.IsUniqueViolation(err, repository.ConstraintAttendanceOnce) {
			return nil, s.reject(appErrors.ErrAlreadyMarked)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	if s.metrics != nil {
		s.metrics.RecordAttendanceOutcome("success")
	}
	s.logger.Info("attendance marked",
		zap.String("session_id", session.ID),
		zap.String("student_id", req.StudentID))

	courseCode := ""
	if course, err := s.courses.FindByID(ctx, session.CourseID); err == nil {
		courseCode = course.Code
	}

	return &dto.MarkAttendanceResponse{
		SessionID:  session.ID,
		CourseCode: courseCode,
		Date:       session.Date,
		MarkedAt:   attendance.MarkedAt,
	}, nil
}

func (s *AttendanceService) reject(cause *appErrors.Error) *appErrors.Error {
	if s.metrics != nil {
		s.metrics.RecordAttendanceOutcome(strings.ToLower(cause.Code))
	}
	return cause
}
