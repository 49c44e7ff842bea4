package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DirectoryRepository answers existence and ownership questions against the
// school directory (classes, subjects, teachers). The directory itself is
// owned by the registration flow.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates a new repository instance.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// ClassExists reports whether the class belongs to the school.
func (r *DirectoryRepository) ClassExists(ctx context.Context, schoolID, classID string) (bool, error) {
	const query = `SELECT 1 FROM classes WHERE id = $1 AND school_id = $2 LIMIT 1`
	return r.exists(ctx, query, classID, schoolID)
}

// SubjectBelongsTo reports whether the subject is assigned to the
// (class, teacher, school) triple.
func (r *DirectoryRepository) SubjectBelongsTo(ctx context.Context, subjectID, classID, teacherID, schoolID string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE id = $1 AND class_id = $2 AND teacher_id = $3 AND school_id = $4 LIMIT 1`
	return r.exists(ctx, query, subjectID, classID, teacherID, schoolID)
}

// SubjectApproved reports whether the subject has been approved by the school admin.
func (r *DirectoryRepository) SubjectApproved(ctx context.Context, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE id = $1 AND approved = TRUE LIMIT 1`
	return r.exists(ctx, query, subjectID)
}

// TeacherApproved reports whether the teacher is approved for the school.
func (r *DirectoryRepository) TeacherApproved(ctx context.Context, teacherID, schoolID string) (bool, error) {
	const query = `SELECT 1 FROM teachers WHERE id = $1 AND school_id = $2 AND approved = TRUE LIMIT 1`
	return r.exists(ctx, query, teacherID, schoolID)
}

func (r *DirectoryRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("directory lookup: %w", err)
	}
	return true, nil
}
