package models

import "time"

// GradeBand maps an inclusive numeric range to a letter grade for a school.
// Bands are consulted at read time only; resolved letters are never persisted
// against score records.
type GradeBand struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	LetterGrade string    `db:"letter_grade" json:"letter_grade"`
	MinScore    float64   `db:"min_score" json:"min_score"`
	MaxScore    float64   `db:"max_score" json:"max_score"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
