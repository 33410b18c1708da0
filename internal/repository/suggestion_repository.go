package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

// SuggestionRepository handles persistence of scheduling suggestions.
type SuggestionRepository struct {
	db *sqlx.DB
}

// NewSuggestionRepository constructs the repository.
func NewSuggestionRepository(db *sqlx.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// CreateBatch inserts the generated suggestions for a session in one statement.
func (r *SuggestionRepository) CreateBatch(ctx context.Context, suggestions []models.SchedulingSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range suggestions {
		if suggestions[i].ID == "" {
			suggestions[i].ID = uuid.NewString()
		}
		if suggestions[i].CreatedAt.IsZero() {
			suggestions[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO scheduling_suggestions (id, session_id, suggested_date, suggested_time, score, reason, is_accepted, created_at)
        VALUES (:id, :session_id, :suggested_date, :suggested_time, :score, :reason, :is_accepted, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, suggestions); err != nil {
		return fmt.Errorf("create scheduling suggestions: %w", err)
	}
	return nil
}

// ListBySession returns suggestions ordered by descending score. Insertion
// order breaks ties, which keeps the generator's stable ranking intact.
func (r *SuggestionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.SchedulingSuggestion, error) {
	if limit <= 0 {
		limit = 3
	}
	const query = `SELECT id, session_id, suggested_date, suggested_time, score, reason, is_accepted, created_at
        FROM scheduling_suggestions WHERE session_id = $1 ORDER BY score DESC, created_at LIMIT $2`
	var suggestions []models.SchedulingSuggestion
	if err := r.db.SelectContext(ctx, &suggestions, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("list scheduling suggestions: %w", err)
	}
	return suggestions, nil
}

// FindByID returns a suggestion by its ID.
func (r *SuggestionRepository) FindByID(ctx context.Context, id string) (*models.SchedulingSuggestion, error) {
	const query = `SELECT id, session_id, suggested_date, suggested_time, score, reason, is_accepted, created_at
        FROM scheduling_suggestions WHERE id = $1`
	var suggestion models.SchedulingSuggestion
	if err := r.db.GetContext(ctx, &suggestion, query, id); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// SetAccepted flips the acceptance flag. The only mutable suggestion field.
func (r *SuggestionRepository) SetAccepted(ctx context.Context, id string, accepted bool) error {
	const query = `UPDATE scheduling_suggestions SET is_accepted = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, accepted); err != nil {
		return fmt.Errorf("accept scheduling suggestion: %w", err)
	}
	return nil
}
