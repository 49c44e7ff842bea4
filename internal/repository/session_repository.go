package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/gradebook-api/internal/models"
)

// SessionRepository reads the academic calendar (sessions and their terms).
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListWithTerms returns the school's sessions in chronological order, each
// with its terms ordered by position.
func (r *SessionRepository) ListWithTerms(ctx context.Context, schoolID string) ([]models.Session, error) {
	const sessionQuery = `SELECT id, school_id, name, starts_on, ends_on, is_active, created_at
        FROM sessions WHERE school_id = $1 ORDER BY starts_on`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, sessionQuery, schoolID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	const termQuery = `SELECT id, session_id, name, position FROM terms WHERE session_id = $1 ORDER BY position`
	for i := range sessions {
		var terms []models.Term
		if err := r.db.SelectContext(ctx, &terms, termQuery, sessions[i].ID); err != nil {
			return nil, fmt.Errorf("list terms: %w", err)
		}
		sessions[i].Terms = terms
	}
	return sessions, nil
}
