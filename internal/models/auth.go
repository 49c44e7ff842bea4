package models

import "github.com/golang-jwt/jwt/v5"

// UserRole identifies the caller's role within a school.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// TenantClaims are the JWT claims issued by the identity provider. They carry
// the resolved tenant context: school, caller identity and the active
// session/term. Tokens are issued elsewhere; this service only verifies them.
type TenantClaims struct {
	UserID          string   `json:"uid"`
	SchoolID        string   `json:"school_id"`
	Role            UserRole `json:"role"`
	ActiveSessionID string   `json:"active_session_id"`
	ActiveTermID    string   `json:"active_term_id"`
	jwt.RegisteredClaims
}
