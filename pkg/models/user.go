package models

import (
	"time"
)

// User represents an account on the conversion service. The password field
// carries the server-side hash and is opaque to the client; it is sent back
// unchanged on update unless a new password is supplied.
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	Role        UserRole   `json:"role"`
	Active      bool       `json:"active"`
	Videos      []Video    `json:"Videos,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserRole represents user roles
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleGuest UserRole = "guest"
)

// Valid reports whether the role is one the server recognises.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleGuest
}

// LoginRequest is the body of POST auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success payload of POST auth/login.
type LoginResponse struct {
	Token string `json:"token"`
}

// MeResponse is the payload of GET users/me: the authenticated user plus
// the videos they have requested.
type MeResponse struct {
	User   User    `json:"User"`
	Videos []Video `json:"Videos"`
}

// JWTClaims represents JWT token claims
type JWTClaims struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}
