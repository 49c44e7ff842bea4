package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/gradebook-api/internal/models"
)

// SchemeRepository manages grading scheme persistence.
type SchemeRepository struct {
	db *sqlx.DB
}

// NewSchemeRepository creates a new repository instance.
func NewSchemeRepository(db *sqlx.DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

// FindByScope retrieves the scheme owned by a (school, class, subject, teacher) tuple.
func (r *SchemeRepository) FindByScope(ctx context.Context, scope models.SchemeScope) (*models.GradingScheme, error) {
	const query = `SELECT id, school_id, class_id, subject_id, teacher_id, created_at, updated_at
        FROM grading_schemes WHERE school_id = $1 AND class_id = $2 AND subject_id = $3 AND teacher_id = $4`
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, scope.SchoolID, scope.ClassID, scope.SubjectID, scope.TeacherID); err != nil {
		return nil, err
	}
	components, err := r.loadComponents(ctx, scheme.ID)
	if err != nil {
		return nil, err
	}
	scheme.Components = components
	return &scheme, nil
}

// Exists checks whether a scheme already exists for the tuple.
func (r *SchemeRepository) Exists(ctx context.Context, scope models.SchemeScope) (bool, error) {
	const query = `SELECT 1 FROM grading_schemes WHERE school_id = $1 AND class_id = $2 AND subject_id = $3 AND teacher_id = $4 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, scope.SchoolID, scope.ClassID, scope.SubjectID, scope.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grading scheme: %w", err)
	}
	return true, nil
}

// Create inserts a scheme with its components in one transaction.
func (r *SchemeRepository) Create(ctx context.Context, scheme *models.GradingScheme) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if scheme.ID == "" {
		scheme.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if scheme.CreatedAt.IsZero() {
		scheme.CreatedAt = now
	}
	scheme.UpdatedAt = now
	const insertScheme = `INSERT INTO grading_schemes (id, school_id, class_id, subject_id, teacher_id, created_at, updated_at)
        VALUES (:id, :school_id, :class_id, :subject_id, :teacher_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertScheme, scheme); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert grading scheme: %w", err)
	}
	if err := r.replaceComponentsTx(ctx, tx, scheme.ID, scheme.Components); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grading scheme: %w", err)
	}
	return nil
}

// Update replaces the scheme's component list in full.
func (r *SchemeRepository) Update(ctx context.Context, scheme *models.GradingScheme) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	scheme.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE grading_schemes SET updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateQuery, scheme); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update grading scheme: %w", err)
	}
	if err := r.replaceComponentsTx(ctx, tx, scheme.ID, scheme.Components); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grading scheme: %w", err)
	}
	return nil
}

// Delete removes a scheme and its components. Callers must ensure no score
// records reference the scheme before deleting.
func (r *SchemeRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM scheme_components WHERE scheme_id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete scheme components: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grading_schemes WHERE id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete grading scheme: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scheme delete: %w", err)
	}
	return nil
}

// ListByClass returns every scheme defined for a class, across subjects and
// teachers.
func (r *SchemeRepository) ListByClass(ctx context.Context, classID string) ([]models.GradingScheme, error) {
	const query = `SELECT id, school_id, class_id, subject_id, teacher_id, created_at, updated_at
        FROM grading_schemes WHERE class_id = $1 ORDER BY created_at`
	var schemes []models.GradingScheme
	if err := r.db.SelectContext(ctx, &schemes, query, classID); err != nil {
		return nil, fmt.Errorf("list grading schemes: %w", err)
	}
	for i := range schemes {
		components, err := r.loadComponents(ctx, schemes[i].ID)
		if err != nil {
			return nil, err
		}
		schemes[i].Components = components
	}
	return schemes, nil
}

// replaceComponentsTx rewrites scheme components in a transaction.
func (r *SchemeRepository) replaceComponentsTx(ctx context.Context, tx *sqlx.Tx, schemeID string, components []models.SchemeComponent) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM scheme_components WHERE scheme_id = $1", schemeID); err != nil {
		return fmt.Errorf("clear scheme components: %w", err)
	}
	const insertComponent = `INSERT INTO scheme_components (id, scheme_id, name, weight, position, created_at)
        VALUES (:id, :scheme_id, :name, :weight, :position, :created_at)`
	now := time.Now().UTC()
	for i := range components {
		if components[i].ID == "" {
			components[i].ID = uuid.NewString()
		}
		components[i].SchemeID = schemeID
		components[i].Position = i
		if components[i].CreatedAt.IsZero() {
			components[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertComponent, components[i]); err != nil {
			return fmt.Errorf("insert scheme component: %w", err)
		}
	}
	return nil
}

func (r *SchemeRepository) loadComponents(ctx context.Context, schemeID string) ([]models.SchemeComponent, error) {
	const query = `SELECT id, scheme_id, name, weight, position, created_at
        FROM scheme_components WHERE scheme_id = $1 ORDER BY position`
	var components []models.SchemeComponent
	if err := r.db.SelectContext(ctx, &components, query, schemeID); err != nil {
		return nil, fmt.Errorf("load scheme components: %w", err)
	}
	return components, nil
}
