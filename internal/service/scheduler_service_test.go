package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-cms-api/internal/models"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	"github.com/noah-isme/campus-cms-api/pkg/config"
)

type schedulerReaderStub struct {
	sessions  []models.MakeUpSession
	lastDate  *time.Time
	listErr   error
	lastErr   error
	excludeID string
}

func (s *schedulerReaderStub) ListActiveByFacultyBetween(ctx context.Context, facultyID string, from, to time.Time, excludeID string) ([]models.MakeUpSession, error) {
	s.excludeID = excludeID
	return s.sessions, s.listErr
}

func (s *schedulerReaderStub) LastCompletedDate(ctx context.Context, courseID string) (*time.Time, error) {
	return s.lastDate, s.lastErr
}

type suggestionWriterStub struct {
	batch []models.SchedulingSuggestion
	err   error
}

func (s *suggestionWriterStub) CreateBatch(ctx context.Context, suggestions []models.SchedulingSuggestion) error {
	s.batch = suggestions
	return s.err
}

func schedulingConfig() config.MakeupConfig {
	return config.MakeupConfig{
		SuggestionCount:  3,
		HorizonDays:      14,
		GapWeight:        30,
		MorningWeight:    20,
		NoConflictWeight: 40,
		BalanceWeight:    10,
		ConflictPenalty:  20,
		PreferredTimes:   []string{"08:00", "09:00", "10:00", "11:00", "14:00"},
	}
}

// Monday, so the horizon contains two Sundays (Jan 11 and Jan 18).
var schedulerNow = time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)

func newTestScheduler(reader *schedulerReaderStub, writer *suggestionWriterStub) *SchedulerService {
	return NewSchedulerService(reader, writer, schedulingConfig(), clock.Fixed(schedulerNow), nil)
}

func TestSchedulerSuggestPerfectSlot(t *testing.T) {
	reader := &schedulerReaderStub{}
	svc := newTestScheduler(reader, &suggestionWriterStub{})

	session := &models.MakeUpSession{ID: "s1", FacultyID: "f1", CourseID: "c1"}
	items, err := svc.Suggest(context.Background(), session, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// No history and no conflicts: a 2-day gap morning slot collects every
	// weight and lands exactly on the cap.
	top := items[0]
	assert.Equal(t, 100, top.Score)
	assert.Equal(t, time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC), top.Date)
	assert.Equal(t, "08:00", top.Time)
	assert.Contains(t, top.Reason, "good gap of 2 days from last session")
	assert.Contains(t, top.Reason, "morning slot, better learning retention")
	assert.Contains(t, top.Reason, "faculty is free at this time")
	assert.Contains(t, top.Reason, "no other sessions on this day")

	// Ties keep generation order: same date, later preferred times.
	assert.Equal(t, "09:00", items[1].Time)
	assert.Equal(t, "10:00", items[2].Time)
	assert.Equal(t, top.Date, items[1].Date)

	assert.Equal(t, "s1", reader.excludeID)
}

func TestSchedulerSuggestSkipsSundays(t *testing.T) {
	svc := newTestScheduler(&schedulerReaderStub{}, &suggestionWriterStub{})

	session := &models.MakeUpSession{FacultyID: "f1", CourseID: "c1"}
	items, err := svc.Suggest(context.Background(), session, 1000)
	require.NoError(t, err)

	// 14 horizon days minus two Sundays, times five preferred slots.
	assert.Len(t, items, 60)
	for _, item := range items {
		assert.NotEqual(t, time.Sunday, item.Date.Weekday())
	}
}

func TestSchedulerSuggestUsesLastCompletedDate(t *testing.T) {
	last := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	svc := newTestScheduler(&schedulerReaderStub{lastDate: &last}, &suggestionWriterStub{})

	session := &models.MakeUpSession{FacultyID: "f1", CourseID: "c1"}
	items, err := svc.Suggest(context.Background(), session, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Gap measured from the last completed class, not from today: Jan 6 is a
	// 4-day gap and already optimal.
	assert.Equal(t, time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC), items[0].Date)
	assert.Equal(t, 100, items[0].Score)
	assert.Contains(t, items[0].Reason, "good gap of 4 days")
}

func TestSchedulerScoreSlotConflictAndLoad(t *testing.T) {
	svc := newTestScheduler(&schedulerReaderStub{}, &suggestionWriterStub{})

	date := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	booked := map[string]bool{"08:00": true}

	score, reason := svc.scoreSlot(date, preferredTime{raw: "08:00", hour: 8}, last, booked, 2)
	// gap 30 + morning 20 - conflict 20 + no day-balance bonus.
	assert.Equal(t, 30, score)
	assert.Contains(t, reason, "faculty has another session at this time")
	assert.Contains(t, reason, "2 sessions already on this day")
}

func TestSchedulerScoreSlotHasNoFloor(t *testing.T) {
	svc := newTestScheduler(&schedulerReaderStub{}, &suggestionWriterStub{})

	date := time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	booked := map[string]bool{"16:00": true}

	score, reason := svc.scoreSlot(date, preferredTime{raw: "16:00", hour: 16}, last, booked, 3)
	// close-to-last 5 + late afternoon 5 - conflict 20.
	assert.Equal(t, -10, score)
	assert.Contains(t, reason, "close to last session")
	assert.Contains(t, reason, "late afternoon slot")
}

func TestSchedulerScoreSlotCapsAtHundred(t *testing.T) {
	cfg := schedulingConfig()
	cfg.NoConflictWeight = 90
	svc := NewSchedulerService(&schedulerReaderStub{}, &suggestionWriterStub{}, cfg, clock.Fixed(schedulerNow), nil)

	date := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	score, _ := svc.scoreSlot(date, preferredTime{raw: "08:00", hour: 8}, last, nil, 0)
	assert.Equal(t, 100, score)
}

func TestSchedulerCreateSuggestionsPersistsBatch(t *testing.T) {
	writer := &suggestionWriterStub{}
	svc := newTestScheduler(&schedulerReaderStub{}, writer)

	session := &models.MakeUpSession{ID: "s1", FacultyID: "f1", CourseID: "c1"}
	items, err := svc.CreateSuggestions(context.Background(), session, 3)
	require.NoError(t, err)
	require.Len(t, writer.batch, 3)

	for i, record := range writer.batch {
		assert.Equal(t, "s1", record.SessionID)
		assert.Equal(t, items[i].Score, record.Score)
		assert.Equal(t, items[i].Time, record.SuggestedTime)
		assert.Equal(t, items[i].Date, record.SuggestedDate)
	}
}

func TestSchedulerCreateSuggestionsPropagatesErrors(t *testing.T) {
	reader := &schedulerReaderStub{listErr: errors.New("db down")}
	svc := newTestScheduler(reader, &suggestionWriterStub{})

	_, err := svc.CreateSuggestions(context.Background(), &models.MakeUpSession{}, 3)
	assert.Error(t, err)
}

func TestSchedulerSkipsMalformedPreferredTimes(t *testing.T) {
	cfg := schedulingConfig()
	cfg.PreferredTimes = []string{"08:00", "bogus", "25:00", "14:00"}
	svc := NewSchedulerService(&schedulerReaderStub{}, &suggestionWriterStub{}, cfg, clock.Fixed(schedulerNow), nil)

	assert.Len(t, svc.times, 2)
}
