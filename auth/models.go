package auth

import "time"

type Role string

const (
	RoleTranslator Role = "translator"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
)

// CanReview reports whether the role alone grants review capability.
// Task creators may review their own tasks regardless of role.
func (r Role) CanReview() bool {
	return r == RoleModerator || r == RoleAdmin
}

// User is the domain representation of a collaborator.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest contains user registration data supplied by callers.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
