package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive      EnrollmentStatus = "ACTIVE"
	EnrollmentStatusTransferred EnrollmentStatus = "TRANSFERRED"
	EnrollmentStatusLeft        EnrollmentStatus = "LEFT"
)

// Enrollment captures a student's registration to a class within a
// session/term. Consumed read-only; the enrollment directory is maintained
// by a separate admission flow.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	SessionID string           `db:"session_id" json:"session_id"`
	TermID    string           `db:"term_id" json:"term_id"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
	Status    EnrollmentStatus `db:"status" json:"status"`
}

// EnrolledStudent is the minimal projection used by score listings.
type EnrolledStudent struct {
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
}
