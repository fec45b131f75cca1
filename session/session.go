package session

import "strings"

// Role represents a viewer role issued by the LMS backend.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// NormalizeRole maps a raw role claim onto the closed Role set. This is the
// single normalization point: comparisons elsewhere work on already-normalized
// values. The backend historically issues "teacher" for instructor accounts.
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin
	case "instructor", "teacher":
		return RoleInstructor
	default:
		return RoleStudent
	}
}

// Session is the client-held proof of authentication plus role claim.
// The role is always derived from the token's claims; a stored role entry
// that disagrees with a freshly decoded token loses.
type Session struct {
	Token  string // Raw bearer token as issued by the backend
	Role   Role   // Normalized role from the token's claims
	UserID string // Viewer's unique ID from the token's claims
}
