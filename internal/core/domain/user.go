package domain

import "time"

// UserRole identifies which stage of the claims workflow a user acts in.
type UserRole string

const (
	RoleEmployee   UserRole = "EMPLOYEE"
	RoleDoctor     UserRole = "DOCTOR"
	RoleHeadOfUnit UserRole = "HEAD_OF_UNIT"
	RoleDataEntry  UserRole = "DATA_ENTRY"
	RoleAuditor    UserRole = "AUDITOR"
	RoleAdmin      UserRole = "ADMIN"
)

// AllUserRoles lists every role; used by exhaustiveness checks.
var AllUserRoles = []UserRole{
	RoleEmployee, RoleDoctor, RoleHeadOfUnit, RoleDataEntry, RoleAuditor, RoleAdmin,
}

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	for _, role := range AllUserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a user of the application in the domain.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (e.g., UUID)
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	Department   string   `json:"department"`
	PasswordHash string   `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// GoogleUserInfo holds the profile fields returned by Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Actor is the identity performing a workflow action. Handlers build it from
// the authenticated user so services never read ambient session state.
type Actor struct {
	UserID string
	Name   string
	Role   UserRole
}
