package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/gradebook-api/internal/models"
)

// GradeBandRepository manages school grade band persistence.
type GradeBandRepository struct {
	db *sqlx.DB
}

// NewGradeBandRepository creates a new repository instance.
func NewGradeBandRepository(db *sqlx.DB) *GradeBandRepository {
	return &GradeBandRepository{db: db}
}

// ListBySchool returns the school's bands in insertion order.
func (r *GradeBandRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.GradeBand, error) {
	const query = `SELECT id, school_id, letter_grade, min_score, max_score, position, created_at
        FROM grade_bands WHERE school_id = $1 ORDER BY position`
	var bands []models.GradeBand
	if err := r.db.SelectContext(ctx, &bands, query, schoolID); err != nil {
		return nil, fmt.Errorf("list grade bands: %w", err)
	}
	return bands, nil
}

// Replace rewrites the school's band set in one transaction.
func (r *GradeBandRepository) Replace(ctx context.Context, schoolID string, bands []models.GradeBand) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_bands WHERE school_id = $1", schoolID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear grade bands: %w", err)
	}
	const insertBand = `INSERT INTO grade_bands (id, school_id, letter_grade, min_score, max_score, position, created_at)
        VALUES (:id, :school_id, :letter_grade, :min_score, :max_score, :position, :created_at)`
	now := time.Now().UTC()
	for i := range bands {
		if bands[i].ID == "" {
			bands[i].ID = uuid.NewString()
		}
		bands[i].SchoolID = schoolID
		bands[i].Position = i
		if bands[i].CreatedAt.IsZero() {
			bands[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertBand, bands[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert grade band: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade bands: %w", err)
	}
	return nil
}
