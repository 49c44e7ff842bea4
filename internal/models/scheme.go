package models

import "time"

// SchemeComponent is a named, weighted sub-criterion of a grading scheme.
type SchemeComponent struct {
	ID        string    `db:"id" json:"id"`
	SchemeID  string    `db:"scheme_id" json:"scheme_id"`
	Name      string    `db:"name" json:"name"`
	Weight    float64   `db:"weight" json:"weight"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GradingScheme defines the weighted grading components for one
// (school, class, subject, teacher) tuple. At most one scheme exists per tuple.
type GradingScheme struct {
	ID         string            `db:"id" json:"id"`
	SchoolID   string            `db:"school_id" json:"school_id"`
	ClassID    string            `db:"class_id" json:"class_id"`
	SubjectID  string            `db:"subject_id" json:"subject_id"`
	TeacherID  string            `db:"teacher_id" json:"teacher_id"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
	Components []SchemeComponent `json:"components,omitempty"`
}

// ComponentNames returns the scheme's component names in declared order.
func (s *GradingScheme) ComponentNames() []string {
	names := make([]string, 0, len(s.Components))
	for _, c := range s.Components {
		names = append(names, c.Name)
	}
	return names
}

// SchemeScope identifies the owning tuple of a scheme.
type SchemeScope struct {
	SchoolID  string
	ClassID   string
	SubjectID string
	TeacherID string
}
