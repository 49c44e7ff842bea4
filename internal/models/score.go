package models

import "time"

// ComponentScore holds one submitted score against a scheme component.
// Scores are already weight-adjusted inputs; the record total is their
// plain sum, not a weight-multiplied value.
type ComponentScore struct {
	ID            string  `db:"id" json:"id"`
	ScoreRecordID string  `db:"score_record_id" json:"score_record_id"`
	ComponentName string  `db:"component_name" json:"component_name"`
	Score         float64 `db:"score" json:"score"`
}

// ScoreRecord is one student's submitted scores against a scheme plus the
// computed total. At most one record exists per (scheme, student, class).
type ScoreRecord struct {
	ID              string           `db:"id" json:"id"`
	SchemeID        string           `db:"scheme_id" json:"scheme_id"`
	StudentID       string           `db:"student_id" json:"student_id"`
	ClassID         string           `db:"class_id" json:"class_id"`
	TeacherID       string           `db:"teacher_id" json:"teacher_id"`
	SchoolID        string           `db:"school_id" json:"school_id"`
	TotalScore      float64          `db:"total_score" json:"total_score"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
	ComponentScores []ComponentScore `json:"component_scores,omitempty"`
}

// ClassScoreRow pairs an enrolled student with their score record when one
// exists. Students not yet graded appear with nil score fields.
type ClassScoreRow struct {
	StudentID   string     `db:"student_id" json:"student_id"`
	StudentName string     `db:"student_name" json:"student_name"`
	RecordID    *string    `db:"record_id" json:"record_id,omitempty"`
	TotalScore  *float64   `db:"total_score" json:"total_score,omitempty"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
