package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/models"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	"github.com/noah-isme/campus-cms-api/pkg/config"
)

type schedulerSessionReader interface {
	ListActiveByFacultyBetween(ctx context.Context, facultyID string, from, to time.Time, excludeID string) ([]models.MakeUpSession, error)
	LastCompletedDate(ctx context.Context, courseID string) (*time.Time, error)
}

type suggestionWriter interface {
	CreateBatch(ctx context.Context, suggestions []models.SchedulingSuggestion) error
}

// preferredTime is a pre-parsed entry of the configured time-of-day list.
type preferredTime struct {
	raw  string
	hour int
}

// SchedulerService scores candidate slots for a make-up session. Candidates
// are every non-Sunday date in the look-ahead horizon crossed with the
// configured preferred times; four weighted heuristics rank them.
type SchedulerService struct {
	sessions    schedulerSessionReader
	suggestions suggestionWriter
	cfg         config.MakeupConfig
	times       []preferredTime
	clock       clock.Clock
	logger      *zap.Logger
}

// NewSchedulerService wires the scoring engine. Weights and preferred times
// come from configuration so they stay tunable without redeploy.
func NewSchedulerService(sessions schedulerSessionReader, suggestions suggestionWriter, cfg config.MakeupConfig, clk clock.Clock, logger *zap.Logger) *SchedulerService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 14
	}
	if cfg.SuggestionCount <= 0 {
		cfg.SuggestionCount = 3
	}
	if len(cfg.PreferredTimes) == 0 {
		cfg.PreferredTimes = []string{"08:00", "09:00", "10:00", "11:00", "14:00"}
	}

	times := make([]preferredTime, 0, len(cfg.PreferredTimes))
	for _, raw := range cfg.PreferredTimes {
		hour, err := parseHour(raw)
		if err != nil {
			logger.Warn("skipping malformed preferred time", zap.String("value", raw), zap.Error(err))
			continue
		}
		times = append(times, preferredTime{raw: raw, hour: hour})
	}

	return &SchedulerService{
		sessions:    sessions,
		suggestions: suggestions,
		cfg:         cfg,
		times:       times,
		clock:       clk,
		logger:      logger,
	}
}

// Suggest computes the top-count ranked slots for the session. Ties keep
// generation order: earlier dates, then earlier entries of the preferred-time
// list, which the stable sort preserves.
func (s *SchedulerService) Suggest(ctx context.Context, session *models.MakeUpSession, count int) ([]dto.SuggestionItem, error) {
	if count <= 0 {
		count = s.cfg.SuggestionCount
	}

	today := dateOnly(s.clock.Now())
	horizonEnd := today.AddDate(0, 0, s.cfg.HorizonDays)

	existing, err := s.sessions.ListActiveByFacultyBetween(ctx, session.FacultyID, today, horizonEnd, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load faculty sessions: %w", err)
	}

	booked := make(map[string]map[string]bool)
	dayLoad := make(map[time.Weekday]int)
	for _, other := range existing {
		key := other.Date.Format("2006-01-02")
		if booked[key] == nil {
			booked[key] = make(map[string]bool)
		}
		booked[key][other.StartTime] = true
		dayLoad[other.Date.Weekday()]++
	}

	lastDate, err := s.sessions.LastCompletedDate(ctx, session.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load last completed session: %w", err)
	}
	last := today
	if lastDate != nil {
		last = dateOnly(*lastDate)
	}

	var candidates []dto.SuggestionItem
	for offset := 1; offset <= s.cfg.HorizonDays; offset++ {
		date := today.AddDate(0, 0, offset)
		if date.Weekday() == time.Sunday {
			continue
		}
		dateKey := date.Format("2006-01-02")
		for _, t := range s.times {
			score, reason := s.scoreSlot(date, t, last, booked[dateKey], dayLoad[date.Weekday()])
			candidates = append(candidates, dto.SuggestionItem{
				Date:   date,
				Time:   t.raw,
				Score:  score,
				Reason: reason,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates, nil
}

// scoreSlot applies the four heuristics. The final score is capped at 100 but
// has no floor: a conflicted, badly spaced afternoon slot may go negative.
func (s *SchedulerService) scoreSlot(date time.Time, t preferredTime, last time.Time, bookedTimes map[string]bool, weekdayLoad int) (int, string) {
	score := 0
	var reasons []string

	gap := daysBetween(last, date)
	switch {
	case gap >= 2 && gap <= 4:
		score += s.cfg.GapWeight
		reasons = append(reasons, fmt.Sprintf("good gap of %d days from last session", gap))
	case gap >= 5:
		score += s.cfg.GapWeight / 2
		reasons = append(reasons, fmt.Sprintf("adequate gap of %d days", gap))
	default:
		score += 5
		reasons = append(reasons, "close to last session")
	}

	switch {
	case t.hour <= 11:
		score += s.cfg.MorningWeight
		reasons = append(reasons, "morning slot, better learning retention")
	case t.hour <= 14:
		score += s.cfg.MorningWeight / 2
		reasons = append(reasons, "early afternoon slot")
	default:
		score += 5
		reasons = append(reasons, "late afternoon slot")
	}

	if !bookedTimes[t.raw] {
		score += s.cfg.NoConflictWeight
		reasons = append(reasons, "faculty is free at this time")
	} else {
		score -= s.cfg.ConflictPenalty
		reasons = append(reasons, "faculty has another session at this time")
	}

	switch {
	case weekdayLoad == 0:
		score += s.cfg.BalanceWeight
		reasons = append(reasons, "no other sessions on this day")
	case weekdayLoad == 1:
		score += s.cfg.BalanceWeight / 2
	default:
		reasons = append(reasons, fmt.Sprintf("%d sessions already on this day", weekdayLoad))
	}

	if score > 100 {
		score = 100
	}
	return score, strings.Join(reasons, " · ")
}

// CreateSuggestions computes and persists the ranked slots for a freshly
// created session. Callers treat failures as best-effort: the session is
// already durable and must not be rolled back.
func (s *SchedulerService) CreateSuggestions(ctx context.Context, session *models.MakeUpSession, count int) ([]dto.SuggestionItem, error) {
	items, err := s.Suggest(ctx, session, count)
	if err != nil {
		return nil, err
	}

	batch := make([]models.SchedulingSuggestion, 0, len(items))
	for _, item := range items {
		batch = append(batch, models.SchedulingSuggestion{
			SessionID:     session.ID,
			SuggestedDate: item.Date,
			SuggestedTime: item.Time,
			Score:         item.Score,
			Reason:        item.Reason,
		})
	}
	if err := s.suggestions.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("persist suggestions: %w", err)
	}
	return items, nil
}

func parseHour(raw string) (int, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	return hour, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
