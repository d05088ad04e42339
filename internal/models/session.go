package models

import "time"

// Session is the portal's proof of authentication against the upstream
// backend: the bearer token, the role and the user identity. It lives in
// the server-side session store; the browser only holds a signed cookie
// referencing it.
type Session struct {
	ID        string    `json:"session_id"`
	Token     string    `json:"-"` // upstream bearer token, never serialized
	Role      Role      `json:"role"`
	UserID    string    `json:"user_id"`
	StudentID string    `json:"student_id,omitempty"` // set only for student sessions
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsComplete enforces the all-or-nothing invariant: a session missing any
// required field is treated as absent. StudentID is required only for the
// student role.
func (s *Session) IsComplete() bool {
	if s == nil {
		return false
	}
	if s.ID == "" || s.Token == "" || s.UserID == "" || !s.Role.IsValid() {
		return false
	}
	if s.Role == RoleStudent && s.StudentID == "" {
		return false
	}
	return true
}

// LoginRequest is the portal login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success bool     `json:"success"`
	Role    Role     `json:"role,omitempty"`
	Session *Session `json:"session,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// LogoutResponse is returned after logout.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// RegisterStudentRequest is the student self-registration payload,
// proxied to the upstream backend.
type RegisterStudentRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=100"`
	University string `json:"university" binding:"omitempty,max=200"`
	Major      string `json:"major" binding:"omitempty,max=200"`
}

// UpdatePasswordRequest carries a password change for the current user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,max=100"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=100"`
}
