package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portsrepo "github.com/litc-ly/claims_backend/internal/core/ports/repositories"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/middleware"
	"github.com/litc-ly/claims_backend/internal/utils"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
	newID    IDGenerator
	now      Clock
}

// NewUserService creates a new UserService. Passing nil for newID or now
// selects the production defaults.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, newID IDGenerator, now Clock) portssvc.UserSvcFacade {
	if newID == nil {
		newID = defaultIDGenerator
	}
	if now == nil {
		now = defaultClock
	}
	return &userService{
		userRepo: userRepo,
		newID:    newID,
		now:      now,
	}
}

// Ensure userService implements the portssvc.UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a new staff account with a bcrypt-hashed password.
// Implements portssvc.UserWriterSvc.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, req.Role)
	}

	existing, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %s already taken", apperrors.ErrDuplicate, req.Username)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: failed to hash password", apperrors.ErrInternal)
	}

	now := s.now()
	userID := s.newID()
	user := domain.User{
		UserID:       userID,
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Department:   req.Department,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created",
		slog.String("user_id", user.UserID),
		slog.String("role", string(user.Role)))
	return &user, nil
}

// GetUserByID implements portssvc.UserReaderSvc.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// GetUserByUsername implements portssvc.UserReaderSvc.
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// ListUsers implements portssvc.UserReaderSvc.
func (s *userService) ListUsers(ctx context.Context, role domain.UserRole, limit int, offset int) ([]domain.User, error) {
	if role != "" && !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}
	if limit <= 0 {
		limit = 50
	}
	users, err := s.userRepo.FindUsers(ctx, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of req to the stored user.
// Implements portssvc.UserWriterSvc.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	user.LastUpdatedAt = s.now()
	user.LastUpdatedBy = updaterUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser soft-deletes the user. Implements portssvc.UserWriterSvc.
func (s *userService) DeleteUser(ctx context.Context, userID string, deleterUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, deleterUserID, s.now()); err != nil {
		logger.Error("Failed to delete user",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}
