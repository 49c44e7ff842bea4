package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/gradebook-api/internal/models"
)

// Batch preconditions surfaced to the coordinator, with the offending
// student IDs returned alongside.
var (
	ErrBatchExisting = errors.New("score records already exist")
	ErrBatchMissing  = errors.New("score records missing")
)

// ScoreRepository handles score record persistence.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// FindByKey returns the record for (scheme, student, class) with component scores.
func (r *ScoreRepository) FindByKey(ctx context.Context, schemeID, studentID, classID string) (*models.ScoreRecord, error) {
	const query = `SELECT id, scheme_id, student_id, class_id, teacher_id, school_id, total_score, created_at, updated_at
        FROM score_records WHERE scheme_id = $1 AND student_id = $2 AND class_id = $3`
	var record models.ScoreRecord
	if err := r.db.GetContext(ctx, &record, query, schemeID, studentID, classID); err != nil {
		return nil, err
	}
	scores, err := r.loadComponentScores(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.ComponentScores = scores
	return &record, nil
}

// Create persists a new record with its component scores in one transaction.
func (r *ScoreRepository) Create(ctx context.Context, record *models.ScoreRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.insertRecordTx(ctx, tx, record); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score record: %w", err)
	}
	return nil
}

// Update overwrites the component scores and total of an existing record.
func (r *ScoreRepository) Update(ctx context.Context, record *models.ScoreRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.updateRecordTx(ctx, tx, record); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score record: %w", err)
	}
	return nil
}

// ExistsForScheme reports whether any record references the scheme. Guards
// scheme deletion.
func (r *ScoreRepository) ExistsForScheme(ctx context.Context, schemeID string) (bool, error) {
	const query = `SELECT 1 FROM score_records WHERE scheme_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, schemeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check score records: %w", err)
	}
	return true, nil
}

// ListForScheme returns every student enrolled in the scheme's class joined
// with their score record when present. Ungraded students keep nil fields.
func (r *ScoreRepository) ListForScheme(ctx context.Context, schemeID, classID string) ([]models.ClassScoreRow, error) {
	const query = `SELECT e.student_id, st.full_name AS student_name, sr.id AS record_id, sr.total_score, sr.updated_at
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        LEFT JOIN score_records sr ON sr.student_id = e.student_id AND sr.scheme_id = $1
        WHERE e.class_id = $2 AND e.status = $3
        ORDER BY st.full_name`
	var rows []models.ClassScoreRow
	if err := r.db.SelectContext(ctx, &rows, query, schemeID, classID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list scheme scores: %w", err)
	}
	return rows, nil
}

// ListByStudentClass returns the student's records across subjects in a
// class, each joined to the scheme's subject and component weights.
func (r *ScoreRepository) ListByStudentClass(ctx context.Context, studentID, classID string) ([]models.StudentScoreDetail, error) {
	const query = `SELECT sr.id AS record_id, sr.scheme_id, sr.class_id, gs.subject_id, s.name AS subject_name, gs.teacher_id, sr.total_score, sr.updated_at
        FROM score_records sr
        JOIN grading_schemes gs ON gs.id = sr.scheme_id
        JOIN subjects s ON s.id = gs.subject_id
        WHERE sr.student_id = $1 AND sr.class_id = $2
        ORDER BY s.name`
	var details []models.StudentScoreDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID, classID); err != nil {
		return nil, fmt.Errorf("list student scores: %w", err)
	}
	for i := range details {
		components, err := r.loadComponentResults(ctx, details[i].RecordID)
		if err != nil {
			return nil, err
		}
		details[i].Components = components
	}
	return details, nil
}

// ListForStudentTerm returns score details for every class the student was
// enrolled in during the term.
func (r *ScoreRepository) ListForStudentTerm(ctx context.Context, studentID, schoolID, termID string) ([]models.StudentScoreDetail, error) {
	const query = `SELECT sr.id AS record_id, sr.scheme_id, sr.class_id, gs.subject_id, s.name AS subject_name, gs.teacher_id, sr.total_score, sr.updated_at
        FROM enrollments e
        JOIN score_records sr ON sr.student_id = e.student_id AND sr.class_id = e.class_id
        JOIN grading_schemes gs ON gs.id = sr.scheme_id
        JOIN subjects s ON s.id = gs.subject_id
        WHERE e.student_id = $1 AND e.term_id = $2 AND sr.school_id = $3
        ORDER BY s.name`
	var details []models.StudentScoreDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID, termID, schoolID); err != nil {
		return nil, fmt.Errorf("list term scores: %w", err)
	}
	return details, nil
}

// ListClassSubjectScores returns every (student, subject) total in a class,
// annotated with subject and teacher identity.
func (r *ScoreRepository) ListClassSubjectScores(ctx context.Context, classID string) (map[string][]models.ClassResultCell, error) {
	const query = `SELECT sr.student_id, gs.subject_id, s.name AS subject_name, gs.teacher_id, t.full_name AS teacher_name, sr.total_score
        FROM score_records sr
        JOIN grading_schemes gs ON gs.id = sr.scheme_id
        JOIN subjects s ON s.id = gs.subject_id
        JOIN teachers t ON t.id = gs.teacher_id
        WHERE sr.class_id = $1`
	rows, err := r.db.QueryxContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("list class scores: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.ClassResultCell)
	for rows.Next() {
		var row struct {
			StudentID string `db:"student_id"`
			models.ClassResultCell
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan class score: %w", err)
		}
		result[row.StudentID] = append(result[row.StudentID], row.ClassResultCell)
	}
	return result, nil
}

// SubjectStats aggregates totals over every graded student for a subject in
// a class.
func (r *ScoreRepository) SubjectStats(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error) {
	const query = `SELECT gs.subject_id, AVG(sr.total_score) AS average, MIN(sr.total_score) AS lowest, MAX(sr.total_score) AS highest, COUNT(sr.id) AS graded_count
        FROM score_records sr
        JOIN grading_schemes gs ON gs.id = sr.scheme_id
        WHERE sr.class_id = $1 AND gs.subject_id = $2
        GROUP BY gs.subject_id`
	var stats models.ClassSubjectStats
	if err := r.db.GetContext(ctx, &stats, query, classID, subjectID); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ApplyBatch writes every record in one transaction. Target rows are locked
// with SELECT ... FOR UPDATE before the existence check so concurrent batches
// on overlapping students serialize. When replace is false the batch creates
// rows and any pre-existing row aborts it; when replace is true the batch
// updates rows and any missing row aborts it. The offending student IDs are
// returned with ErrBatchExisting/ErrBatchMissing.
func (r *ScoreRepository) ApplyBatch(ctx context.Context, schemeID string, records []models.ScoreRecord, replace bool) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	existing, err := r.lockExistingTx(ctx, tx, schemeID, records)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, err
	}

	if !replace && len(existing) > 0 {
		tx.Rollback() //nolint:errcheck
		return studentIDs(existing), ErrBatchExisting
	}
	if replace {
		var missing []string
		for i := range records {
			if _, ok := existing[records[i].StudentID]; !ok {
				missing = append(missing, records[i].StudentID)
			}
		}
		if len(missing) > 0 {
			tx.Rollback() //nolint:errcheck
			return missing, ErrBatchMissing
		}
	}

	for i := range records {
		if replace {
			records[i].ID = existing[records[i].StudentID]
			err = r.updateRecordTx(ctx, tx, &records[i])
		} else {
			err = r.insertRecordTx(ctx, tx, &records[i])
		}
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit score batch: %w", err)
	}
	return nil, nil
}

func (r *ScoreRepository) lockExistingTx(ctx context.Context, tx *sqlx.Tx, schemeID string, records []models.ScoreRecord) (map[string]string, error) {
	placeholders := make([]string, len(records))
	args := make([]interface{}, len(records)+1)
	args[0] = schemeID
	for i := range records {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = records[i].StudentID
	}
	query := fmt.Sprintf(`SELECT id, student_id FROM score_records
        WHERE scheme_id = $1 AND student_id IN (%s) FOR UPDATE`, strings.Join(placeholders, ","))
	rows, err := tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lock score records: %w", err)
	}
	defer rows.Close()
	existing := make(map[string]string)
	for rows.Next() {
		var id, studentID string
		if err := rows.Scan(&id, &studentID); err != nil {
			return nil, fmt.Errorf("scan locked record: %w", err)
		}
		existing[studentID] = id
	}
	return existing, nil
}

func (r *ScoreRepository) insertRecordTx(ctx context.Context, tx *sqlx.Tx, record *models.ScoreRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const insertRecord = `INSERT INTO score_records (id, scheme_id, student_id, class_id, teacher_id, school_id, total_score, created_at, updated_at)
        VALUES (:id, :scheme_id, :student_id, :class_id, :teacher_id, :school_id, :total_score, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertRecord, record); err != nil {
		return fmt.Errorf("insert score record: %w", err)
	}
	return r.replaceComponentScoresTx(ctx, tx, record.ID, record.ComponentScores)
}

func (r *ScoreRepository) updateRecordTx(ctx context.Context, tx *sqlx.Tx, record *models.ScoreRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const updateRecord = `UPDATE score_records SET total_score = :total_score, teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateRecord, record); err != nil {
		return fmt.Errorf("update score record: %w", err)
	}
	return r.replaceComponentScoresTx(ctx, tx, record.ID, record.ComponentScores)
}

func (r *ScoreRepository) replaceComponentScoresTx(ctx context.Context, tx *sqlx.Tx, recordID string, scores []models.ComponentScore) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM component_scores WHERE score_record_id = $1", recordID); err != nil {
		return fmt.Errorf("clear component scores: %w", err)
	}
	const insertScore = `INSERT INTO component_scores (id, score_record_id, component_name, score)
        VALUES (:id, :score_record_id, :component_name, :score)`
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		scores[i].ScoreRecordID = recordID
		if _, err := tx.NamedExecContext(ctx, insertScore, scores[i]); err != nil {
			return fmt.Errorf("insert component score: %w", err)
		}
	}
	return nil
}

func (r *ScoreRepository) loadComponentScores(ctx context.Context, recordID string) ([]models.ComponentScore, error) {
	const query = `SELECT id, score_record_id, component_name, score FROM component_scores WHERE score_record_id = $1 ORDER BY component_name`
	var scores []models.ComponentScore
	if err := r.db.SelectContext(ctx, &scores, query, recordID); err != nil {
		return nil, fmt.Errorf("load component scores: %w", err)
	}
	return scores, nil
}

func (r *ScoreRepository) loadComponentResults(ctx context.Context, recordID string) ([]models.ComponentResult, error) {
	const query = `SELECT cs.component_name AS name, sc.weight, cs.score
        FROM component_scores cs
        JOIN score_records sr ON sr.id = cs.score_record_id
        LEFT JOIN scheme_components sc ON sc.scheme_id = sr.scheme_id AND sc.name = cs.component_name
        WHERE cs.score_record_id = $1
        ORDER BY sc.position NULLS LAST, cs.component_name`
	rows, err := r.db.QueryxContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("load component results: %w", err)
	}
	defer rows.Close()
	var results []models.ComponentResult
	for rows.Next() {
		var row struct {
			Name   string   `db:"name"`
			Weight *float64 `db:"weight"`
			Score  float64  `db:"score"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan component result: %w", err)
		}
		result := models.ComponentResult{Name: row.Name, Score: row.Score}
		if row.Weight != nil {
			result.Weight = *row.Weight
		}
		results = append(results, result)
	}
	return results, nil
}

func studentIDs(existing map[string]string) []string {
	ids := make([]string, 0, len(existing))
	for id := range existing {
		ids = append(ids, id)
	}
	return ids
}
