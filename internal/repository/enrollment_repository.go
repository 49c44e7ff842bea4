package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/gradebook-api/internal/models"
)

// EnrollmentRepository reads the enrollment directory. Enrollments are
// maintained by the admission flow; the gradebook only consumes them.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new repository instance.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// IsEnrolled reports whether the student has an active enrollment in the class.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, classID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 AND status = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, classID, models.EnrollmentStatusActive); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListEnrolled returns every student enrolled in the class for a session/term.
func (r *EnrollmentRepository) ListEnrolled(ctx context.Context, classID, sessionID, termID string) ([]models.EnrolledStudent, error) {
	const query = `SELECT e.student_id, st.full_name AS student_name
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        WHERE e.class_id = $1 AND e.session_id = $2 AND e.term_id = $3 AND e.status = $4
        ORDER BY st.full_name`
	var students []models.EnrolledStudent
	if err := r.db.SelectContext(ctx, &students, query, classID, sessionID, termID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}
