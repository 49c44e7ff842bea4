package models

import "time"

// Session is an academic year within a school.
type Session struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Name      string    `db:"name" json:"name"`
	StartsOn  time.Time `db:"starts_on" json:"starts_on"`
	EndsOn    time.Time `db:"ends_on" json:"ends_on"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Terms     []Term    `json:"terms,omitempty"`
}

// Term is one grading period within a session.
type Term struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"session_id"`
	Name      string `db:"name" json:"name"`
	Position  int    `db:"position" json:"position"`
}
