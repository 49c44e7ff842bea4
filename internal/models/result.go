package models

import "time"

// ComponentResult exposes a component's achieved score beside the weight the
// scheme declares for it.
type ComponentResult struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

// ClassSubjectStats aggregates totals across graded students for one
// subject in a class. Students without a record are excluded from the
// average and extremes.
type ClassSubjectStats struct {
	SubjectID   string   `db:"subject_id" json:"subject_id"`
	Average     *float64 `db:"average" json:"average,omitempty"`
	Lowest      *float64 `db:"lowest" json:"lowest,omitempty"`
	Highest     *float64 `db:"highest" json:"highest,omitempty"`
	GradedCount int      `db:"graded_count" json:"graded_count"`
}

// StudentScoreDetail is a score record joined with its scheme's subject and
// component weights.
type StudentScoreDetail struct {
	RecordID    string            `db:"record_id" json:"record_id"`
	SchemeID    string            `db:"scheme_id" json:"scheme_id"`
	ClassID     string            `db:"class_id" json:"class_id"`
	SubjectID   string            `db:"subject_id" json:"subject_id"`
	SubjectName string            `db:"subject_name" json:"subject_name"`
	TeacherID   string            `db:"teacher_id" json:"teacher_id"`
	TotalScore  float64           `db:"total_score" json:"total_score"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
	Components  []ComponentResult `json:"components,omitempty"`
}

// SubjectScore is one subject entry in a student's own score report.
type SubjectScore struct {
	SubjectID    string            `json:"subject_id"`
	SubjectName  string            `json:"subject_name"`
	TotalScore   float64           `json:"total_score"`
	LetterGrade  *string           `json:"letter_grade,omitempty"`
	ClassAverage *float64          `json:"class_average,omitempty"`
	Components   []ComponentResult `json:"components"`
}

// StudentScoreReport is the full own-scores response for one student/class.
type StudentScoreReport struct {
	StudentID string         `json:"student_id"`
	ClassID   string         `json:"class_id"`
	Subjects  []SubjectScore `json:"subjects"`
}

// ClassResultCell is one (student, subject) intersection in a class result
// sheet. TotalScore is nil when the student has no record for the subject.
type ClassResultCell struct {
	SubjectID   string   `db:"subject_id" json:"subject_id"`
	SubjectName string   `db:"subject_name" json:"subject_name"`
	TeacherID   string   `db:"teacher_id" json:"teacher_id"`
	TeacherName string   `db:"teacher_name" json:"teacher_name"`
	TotalScore  *float64 `db:"total_score" json:"total_score,omitempty"`
	LetterGrade *string  `json:"letter_grade,omitempty"`
}

// StudentResultRow groups one enrolled student's cells across subjects.
type StudentResultRow struct {
	StudentID   string            `json:"student_id"`
	StudentName string            `json:"student_name"`
	Subjects    []ClassResultCell `json:"subjects"`
}

// ClassResultSheet is the class-wide result report for a session/term.
type ClassResultSheet struct {
	ClassID   string             `json:"class_id"`
	SessionID string             `json:"session_id"`
	TermID    string             `json:"term_id"`
	Students  []StudentResultRow `json:"students"`
}

// TermSubjectResult carries one subject's outcome within a term report,
// including class-wide statistics for context.
type TermSubjectResult struct {
	SubjectID    string   `json:"subject_id"`
	SubjectName  string   `json:"subject_name"`
	TotalScore   float64  `json:"total_score"`
	LetterGrade  *string  `json:"letter_grade,omitempty"`
	ClassAverage *float64 `json:"class_average,omitempty"`
	LowestScore  *float64 `json:"lowest_score,omitempty"`
	HighestScore *float64 `json:"highest_score,omitempty"`
}

// TermResult is one term entry in the multi-term report. Terms without any
// score record for the student are omitted from the report entirely.
type TermResult struct {
	TermID   string              `json:"term_id"`
	TermName string              `json:"term_name"`
	Subjects []TermSubjectResult `json:"subjects"`
}

// SessionResult groups term results under their academic session.
type SessionResult struct {
	SessionID   string       `json:"session_id"`
	SessionName string       `json:"session_name"`
	Terms       []TermResult `json:"terms"`
}

// MultiTermReport is a student's cumulative result across sessions and terms.
type MultiTermReport struct {
	StudentID string          `json:"student_id"`
	SchoolID  string          `json:"school_id"`
	Sessions  []SessionResult `json:"sessions"`
}
