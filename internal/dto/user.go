package dto

import (
	"time"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// CreateUserRequest defines the data needed to register a user.
type CreateUserRequest struct {
	Username   string          `json:"username" binding:"required"`
	Password   string          `json:"password" binding:"required,min=8"`
	Name       string          `json:"name" binding:"required"`
	Email      string          `json:"email" binding:"omitempty,email"`
	Role       domain.UserRole `json:"role" binding:"required,oneof=EMPLOYEE DOCTOR HEAD_OF_UNIT DATA_ENTRY AUDITOR ADMIN"`
	Department string          `json:"department"`
}

// UpdateUserRequest defines the mutable user fields. Nil fields are unchanged.
type UpdateUserRequest struct {
	Name       *string          `json:"name,omitempty"`
	Email      *string          `json:"email,omitempty" binding:"omitempty,email"`
	Role       *domain.UserRole `json:"role,omitempty" binding:"omitempty,oneof=EMPLOYEE DOCTOR HEAD_OF_UNIT DATA_ENTRY AUDITOR ADMIN"`
	Department *string          `json:"department,omitempty"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID        string          `json:"userID"`
	Username      string          `json:"username"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Role          domain.UserRole `json:"role"`
	Department    string          `json:"department,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// LoginRequest carries password credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries a Google ID token for token sign-in.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:        u.UserID,
		Username:      u.Username,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Department:    u.Department,
		CreatedAt:     u.CreatedAt,
		LastUpdatedAt: u.LastUpdatedAt,
	}
}

// ToListUserResponse converts a slice of users to UserResponse DTOs.
func ToListUserResponse(users []domain.User) []UserResponse {
	res := make([]UserResponse, len(users))
	for i := range users {
		res[i] = ToUserResponse(&users[i])
	}
	return res
}
