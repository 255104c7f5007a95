package services

import (
	"context"

	"github.com/litc-ly/claims_backend/internal/core/domain"
	"github.com/litc-ly/claims_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers retrieves users, optionally restricted to one role; the head
	// of unit uses it to list data-entry staff available for assignment.
	ListUsers(ctx context.Context, role domain.UserRole, limit int, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data.
type UserWriterSvc interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string, deleterUserID string) error
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
