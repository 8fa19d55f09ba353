package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleCoach  UserRole = "COACH"
	RoleViewer UserRole = "VIEWER"
)

// Valid reports whether the role is known.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleViewer:
		return true
	default:
		return false
	}
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID  string   `json:"user_id"`
	Role    UserRole `json:"role"`
	CoachID string   `json:"coach_id,omitempty"`
	jwt.RegisteredClaims
}
