package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/models"
	"github.com/noah-isme/campus-cms-api/internal/repository"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
)

var attendanceNow = time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)

type codeFinderStub struct {
	session *models.MakeUpSession
}

func (s *codeFinderStub) FindByCode(ctx context.Context, code string) (*models.MakeUpSession, error) {
	if s.session == nil {
		return nil, sql.ErrNoRows
	}
	return s.session, nil
}

type attendanceWriterStub struct {
	exists    bool
	created   *models.MakeUpAttendance
	createErr error
}

func (s *attendanceWriterStub) Create(ctx context.Context, attendance *models.MakeUpAttendance) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = attendance
	return nil
}

func (s *attendanceWriterStub) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	return s.exists, nil
}

type enrollmentCheckerStub struct {
	course   *models.Course
	enrolled bool
}

func (s *enrollmentCheckerStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if s.course == nil {
		return nil, sql.ErrNoRows
	}
	return s.course, nil
}

func (s *enrollmentCheckerStub) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return s.enrolled, nil
}

func activeSession() *models.MakeUpSession {
	expiresAt := attendanceNow.Add(15 * time.Minute)
	return &models.MakeUpSession{
		ID:            "s1",
		CourseID:      "c1",
		Date:          time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		Status:        models.SessionStatusOngoing,
		RemedialCode:  "A3X7K2",
		CodeActive:    true,
		CodeExpiresAt: &expiresAt,
	}
}

func newTestAttendanceService(finder *codeFinderStub, writer *attendanceWriterStub, checker *enrollmentCheckerStub) *AttendanceService {
	return NewAttendanceService(finder, writer, checker, nil, clock.Fixed(attendanceNow), nil, nil)
}

func TestMarkRejectsMalformedCode(t *testing.T) {
	svc := newTestAttendanceService(&codeFinderStub{}, &attendanceWriterStub{}, &enrollmentCheckerStub{})

	for _, code := range []string{"ABC", "ABCDEFG", "  AB12  "} {
		_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: code, StudentID: "st1"}, "")
		assert.ErrorIs(t, err, appErrors.ErrCodeMalformed, "code %q", code)
	}
}

func TestMarkRejectsUnknownCode(t *testing.T) {
	svc := newTestAttendanceService(&codeFinderStub{}, &attendanceWriterStub{}, &enrollmentCheckerStub{})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "ZZZZZZ", StudentID: "st1"}, "")
	assert.ErrorIs(t, err, appErrors.ErrCodeInvalid)
}

func TestMarkRejectsInactiveCode(t *testing.T) {
	session := activeSession()
	session.CodeActive = false
	svc := newTestAttendanceService(&codeFinderStub{session: session}, &attendanceWriterStub{}, &enrollmentCheckerStub{enrolled: true})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"}, "")
	assert.ErrorIs(t, err, appErrors.ErrCodeNotActive)
}

func TestMarkRejectsExpiredCode(t *testing.T) {
	session := activeSession()
	expired := attendanceNow.Add(-time.Second)
	session.CodeExpiresAt = &expired
	svc := newTestAttendanceService(&codeFinderStub{session: session}, &attendanceWriterStub{}, &enrollmentCheckerStub{enrolled: true})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"}, "")
	assert.ErrorIs(t, err, appErrors.ErrCodeExpired)
}

func TestMarkRejectsUnenrolledStudent(t *testing.T) {
	svc := newTestAttendanceService(&codeFinderStub{session: activeSession()}, &attendanceWriterStub{}, &enrollmentCheckerStub{enrolled: false})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"}, "")
	assert.ErrorIs(t, err, appErrors.ErrNotEnrolled)
}

func TestMarkRejectsDuplicate(t *testing.T) {
	svc := newTestAttendanceService(&codeFinderStub{session: activeSession()}, &attendanceWriterStub{exists: true}, &enrollmentCheckerStub{enrolled: true})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"}, "")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyMarked)
}

func TestMarkTranslatesUniqueViolationRace(t *testing.T) {
	writer := &attendanceWriterStub{
		createErr: &pq.Error{Code: "23505", Constraint: repository.ConstraintAttendanceOnce},
	}
	svc := newTestAttendanceService(&codeFinderStub{session: activeSession()}, writer, &enrollmentCheckerStub{enrolled: true})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"}, "")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyMarked)
}

func TestMarkNormalisesCodeAndRecords(t *testing.T) {
	writer := &attendanceWriterStub{}
	checker := &enrollmentCheckerStub{enrolled: true, course: &models.Course{ID: "c1", Code: "CSE101"}}
	svc := newTestAttendanceService(&codeFinderStub{session: activeSession()}, writer, checker)

	resp, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "  a3x7k2 ", StudentID: "st1"}, "203.0.113.7")
	require.NoError(t, err)

	require.NotNil(t, writer.created)
	assert.Equal(t, "A3X7K2", writer.created.CodeUsed)
	assert.Equal(t, models.AttendancePresent, writer.created.Status)
	assert.Equal(t, attendanceNow, writer.created.MarkedAt)
	require.NotNil(t, writer.created.IPAddress)
	assert.Equal(t, "203.0.113.7", *writer.created.IPAddress)

	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "CSE101", resp.CourseCode)
	assert.Equal(t, attendanceNow, resp.MarkedAt)
}

func TestMarkNoExpiryMeansNoDeadline(t *testing.T) {
	session := activeSession()
	session.CodeExpiresAt = nil
	writer := &attendanceWriterStub{}
	svc := newTestAttendanceService(&codeFinderStub{session: session}, writer, &enrollmentCheckerStub{enrolled: true})

	_, err := svc.Mark(context.Background(), dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"}, "")
	require.NoError(t, err)
	assert.Nil(t, writer.created.IPAddress)
}
