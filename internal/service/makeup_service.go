package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/models"
	"github.com/noah-isme/campus-cms-api/internal/repository"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	"github.com/noah-isme/campus-cms-api/pkg/config"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
)

// remedialCodeAlphabet holds the 36 symbols codes are drawn from.
const remedialCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRemedialCode returns a fresh 6-character attendance code, e.g.
// "A3X7K2". Uniqueness is not checked here; the database constraint catches
// collisions and callers retry.
func GenerateRemedialCode() string {
	buf := make([]byte, models.RemedialCodeLength)
	for i := range buf {
		buf[i] = remedialCodeAlphabet[rand.Intn(len(remedialCodeAlphabet))]
	}
	return string(buf)
}

type makeupSessionRepository interface {
	Create(ctx context.Context, session *models.MakeUpSession) error
	FindByID(ctx context.Context, id string) (*models.MakeUpSession, error)
	FindDetailByID(ctx context.Context, id string) (*models.SessionDetail, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.SessionDetail, error)
	ActivateCode(ctx context.Context, id string, activatedAt, expiresAt time.Time) error
	DeactivateCode(ctx context.Context, id string) error
	UpdateCode(ctx context.Context, id, code string) error
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
}

type suggestionStore interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.SchedulingSuggestion, error)
	FindByID(ctx context.Context, id string) (*models.SchedulingSuggestion, error)
	SetAccepted(ctx context.Context, id string, accepted bool) error
}

type attendanceReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.MakeUpAttendance, error)
	CountPresent(ctx context.Context, sessionID string) (int, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	CountEnrolled(ctx context.Context, courseID string) (int, error)
}

type suggestionGenerator interface {
	CreateSuggestions(ctx context.Context, session *models.MakeUpSession, count int) ([]dto.SuggestionItem, error)
}

// MakeupService owns the make-up session lifecycle: creation with a unique
// remedial code, the code activation window, and the forward-only status
// machine.
type MakeupService struct {
	sessions    makeupSessionRepository
	suggestions suggestionStore
	attendances attendanceReader
	courses     courseReader
	scheduler   suggestionGenerator
	cfg         config.MakeupConfig
	validator   *validator.Validate
	clock       clock.Clock
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewMakeupService wires session lifecycle dependencies.
func NewMakeupService(
	sessions makeupSessionRepository,
	suggestions suggestionStore,
	attendances attendanceReader,
	courses courseReader,
	scheduler suggestionGenerator,
	cfg config.MakeupConfig,
	validate *validator.Validate,
	clk clock.Clock,
	logger *zap.Logger,
	metrics *MetricsService,
) *MakeupService {
	if validate == nil {
		validate = validator.New()
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 30 * time.Minute
	}
	if cfg.CodeInsertAttempts <= 0 {
		cfg.CodeInsertAttempts = 5
	}
	if cfg.SuggestionCount <= 0 {
		cfg.SuggestionCount = 3
	}
	return &MakeupService{
		sessions:    sessions,
		suggestions: suggestions,
		attendances: attendances,
		courses:     courses,
		scheduler:   scheduler,
		cfg:         cfg,
		validator:   validate,
		clock:       clk,
		logger:      logger,
		metrics:     metrics,
	}
}

// CreateSession stores a new make-up session and then generates scheduling
// suggestions best-effort: a suggestion failure is logged and swallowed, the
// session stays durable with zero suggestions.
func (s *MakeupService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.FacultyID != req.FacultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course does not belong to this faculty")
	}

	reason := models.SessionReason(req.Reason)
	if req.Reason == "" {
		reason = models.ReasonOther
	}

	session := &models.MakeUpSession{
		FacultyID: req.FacultyID,
		CourseID:  req.CourseID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Venue:     req.Venue,
		Reason:    reason,
		Notes:     req.Notes,
		Status:    models.SessionStatusScheduled,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.insertWithFreshCode(ctx, session); err != nil {
		return nil, err
	}

	items, sugErr := s.scheduler.CreateSuggestions(ctx, session, s.cfg.SuggestionCount)
	if sugErr != nil {
		s.logger.Warn("suggestion generation failed, session kept without suggestions",
			zap.String("session_id", session.ID), zap.Error(sugErr))
		if s.metrics != nil {
			s.metrics.RecordSuggestionGeneration(false)
		}
		items = nil
	} else if s.metrics != nil {
		s.metrics.RecordSuggestionGeneration(true)
	}

	return &dto.CreateSessionResponse{Session: *session, Suggestions: items}, nil
}

// insertWithFreshCode retries session creation with a newly drawn code while
// the remedial-code unique constraint fires.
func (s *MakeupService) insertWithFreshCode(ctx context.Context, session *models.MakeUpSession) error {
	for attempt := 0; attempt < s.cfg.CodeInsertAttempts; attempt++ {
		session.ID = ""
		session.RemedialCode = GenerateRemedialCode()
		err := s.sessions.Create(ctx, session)
		if err == nil {
			return nil
		}
		if repository.IsUniqueViolation(err, repository.ConstraintSessionCode) {
			s.logger.Debug("remedial code collision, retrying", zap.Int("attempt", attempt+1))
			continue
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return appErrors.Clone(appErrors.ErrInternal, "could not allocate a unique remedial code")
}

// Activate opens the attendance window for the configured (or requested)
// duration and forces the session to ONGOING. Re-activation is idempotent and
// simply resets the window to now + duration.
func (s *MakeupService) Activate(ctx context.Context, sessionID string, durationMinutes int) (*dto.CodeStatusResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(models.SessionStatusOngoing) {
		return nil, appErrors.ErrSessionFinalized
	}

	duration := s.cfg.CodeTTL
	if durationMinutes > 0 {
		duration = time.Duration(durationMinutes) * time.Minute
	}
	now := s.clock.Now().UTC()
	expiresAt := now.Add(duration)
	if err := s.sessions.ActivateCode(ctx, session.ID, now, expiresAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate code")
	}

	return &dto.CodeStatusResponse{
		Active:           true,
		ExpiresInSeconds: int(duration.Seconds()),
		Status:           models.SessionStatusOngoing,
	}, nil
}

// Deactivate closes the window and marks the session COMPLETED.
func (s *MakeupService) Deactivate(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Status.CanTransitionTo(models.SessionStatusCompleted) {
		return appErrors.ErrSessionFinalized
	}
	if err := s.sessions.DeactivateCode(ctx, session.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate code")
	}
	return nil
}

// Cancel abandons the session. Terminal, reachable only through this explicit
// action, never inferred from code expiry.
func (s *MakeupService) Cancel(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Status.CanTransitionTo(models.SessionStatusCancelled) {
		return appErrors.ErrSessionFinalized
	}
	if err := s.sessions.UpdateStatus(ctx, session.ID, models.SessionStatusCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel session")
	}
	return nil
}

// Regenerate replaces a suspected-leaked code with a fresh one. The
// activation window is left untouched; a regeneration racing an in-flight
// validity check is last-write-wins.
func (s *MakeupService) Regenerate(ctx context.Context, sessionID string) (*models.MakeUpSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.cfg.CodeInsertAttempts; attempt++ {
		code := GenerateRemedialCode()
		err := s.sessions.UpdateCode(ctx, session.ID, code)
		if err == nil {
			session.RemedialCode = code
			return session, nil
		}
		if repository.IsUniqueViolation(err, repository.ConstraintSessionCode) {
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to regenerate code")
	}
	return nil, appErrors.Clone(appErrors.ErrInternal, "could not allocate a unique remedial code")
}

// CodeStatus is the polling endpoint payload. Expiry is evaluated lazily on
// every call; the stored status may still read ONGOING after the window
// closed, but active reports false and the countdown clamps to zero.
func (s *MakeupService) CodeStatus(ctx context.Context, sessionID string) (*dto.CodeStatusResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	valid := session.IsCodeValid(now)
	expiresIn := 0
	if valid && session.CodeExpiresAt != nil {
		if remaining := int(session.CodeExpiresAt.Sub(now).Seconds()); remaining > 0 {
			expiresIn = remaining
		}
	}

	return &dto.CodeStatusResponse{
		Active:           valid,
		ExpiresInSeconds: expiresIn,
		Status:           session.Status,
	}, nil
}

// GetSession returns the faculty detail view: roster marks, top suggestions
// and attendance aggregates.
func (s *MakeupService) GetSession(ctx context.Context, sessionID string) (*dto.SessionDetailResponse, error) {
	detail, err := s.sessions.FindDetailByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	attendances, err := s.attendances.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendances")
	}
	suggestions, err := s.suggestions.ListBySession(ctx, sessionID, s.cfg.SuggestionCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestions")
	}
	present, err := s.attendances.CountPresent(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendances")
	}
	enrolled, err := s.courses.CountEnrolled(ctx, detail.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrolled students")
	}

	percent := 0.0
	if enrolled > 0 {
		percent = math.Round(float64(present)/float64(enrolled)*1000) / 10
	}

	return &dto.SessionDetailResponse{
		Session:           *detail,
		Attendances:       attendances,
		Suggestions:       suggestions,
		PresentCount:      present,
		TotalEnrolled:     enrolled,
		AttendancePercent: percent,
	}, nil
}

// ListSessions splits a faculty's sessions into upcoming and completed.
// Cancelled sessions are hidden from both buckets.
func (s *MakeupService) ListSessions(ctx context.Context, facultyID string) (*dto.SessionListResponse, error) {
	if facultyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId is required")
	}
	sessions, err := s.sessions.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	resp := &dto.SessionListResponse{
		Upcoming:  []models.SessionDetail{},
		Completed: []models.SessionDetail{},
	}
	for _, session := range sessions {
		switch session.Status {
		case models.SessionStatusScheduled, models.SessionStatusOngoing:
			resp.Upcoming = append(resp.Upcoming, session)
		case models.SessionStatusCompleted:
			resp.Completed = append(resp.Completed, session)
		}
	}
	return resp, nil
}

// AcceptSuggestion marks one stored suggestion as accepted by the faculty.
func (s *MakeupService) AcceptSuggestion(ctx context.Context, suggestionID string) (*models.SchedulingSuggestion, error) {
	suggestion, err := s.suggestions.FindByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestion")
	}
	if err := s.suggestions.SetAccepted(ctx, suggestionID, true); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept suggestion")
	}
	suggestion.IsAccepted = true
	return suggestion, nil
}

func (s *MakeupService) loadSession(ctx context.Context, sessionID string) (*models.MakeUpSession, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}
