package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/core/services"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/utils"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, role domain.UserRole, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string, deletedAt time.Time) error {
	args := m.Called(ctx, userID, deletedBy, deletedAt)
	return args.Error(0)
}

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvcFacade
	ctx      context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockUserRepository)
	s.service = services.NewUserService(s.mockRepo, sequentialIDs("usr"), tickingClock(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)))
	s.ctx = context.Background()
}

func (s *UserServiceTestSuite) TestCreateUser_HashesPassword() {
	req := dto.CreateUserRequest{
		Username: "fatima.k",
		Password: "correct-horse",
		Name:     "Fatima K",
		Role:     domain.RoleDataEntry,
	}
	s.mockRepo.On("FindUserByUsername", s.ctx, "fatima.k").Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("SaveUser", s.ctx, mock.Anything).Return(nil).Once()

	user, err := s.service.CreateUser(s.ctx, req)

	s.Require().NoError(err)
	s.Equal(domain.RoleDataEntry, user.Role)
	s.NotEqual("correct-horse", user.PasswordHash)
	s.True(utils.CheckPasswordHash("correct-horse", user.PasswordHash))
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	req := dto.CreateUserRequest{Username: "taken", Password: "whatever12", Name: "X", Role: domain.RoleEmployee}
	s.mockRepo.On("FindUserByUsername", s.ctx, "taken").Return(&domain.User{UserID: "usr-0", Username: "taken"}, nil).Once()

	_, err := s.service.CreateUser(s.ctx, req)

	s.Require().ErrorIs(err, apperrors.ErrDuplicate)
	s.mockRepo.AssertNotCalled(s.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestCreateUser_UnknownRole() {
	req := dto.CreateUserRequest{Username: "x", Password: "whatever12", Name: "X", Role: domain.UserRole("INTERN")}
	_, err := s.service.CreateUser(s.ctx, req)
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestUpdateUser_MergesOnlyProvidedFields() {
	stored := &domain.User{
		UserID:     "usr-9",
		Username:   "omar.b",
		Name:       "Omar B",
		Email:      "omar@unit.ly",
		Role:       domain.RoleEmployee,
		Department: "Finance",
	}
	s.mockRepo.On("FindUserByID", s.ctx, "usr-9").Return(stored, nil).Once()
	s.mockRepo.On("UpdateUser", s.ctx, mock.Anything).Return(nil).Once()

	newRole := domain.RoleHeadOfUnit
	updated, err := s.service.UpdateUser(s.ctx, "usr-9", dto.UpdateUserRequest{Role: &newRole}, "usr-admin")

	s.Require().NoError(err)
	s.Equal(domain.RoleHeadOfUnit, updated.Role)
	s.Equal("Omar B", updated.Name)
	s.Equal("Finance", updated.Department)
	s.Equal("usr-admin", updated.LastUpdatedBy)
}

func (s *UserServiceTestSuite) TestDeleteUser_SoftDeletes() {
	s.mockRepo.On("FindUserByID", s.ctx, "usr-9").Return(&domain.User{UserID: "usr-9"}, nil).Once()
	s.mockRepo.On("MarkUserDeleted", s.ctx, "usr-9", "usr-admin", mock.Anything).Return(nil).Once()

	err := s.service.DeleteUser(s.ctx, "usr-9", "usr-admin")

	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestDeleteUser_NotFound() {
	s.mockRepo.On("FindUserByID", s.ctx, "usr-404").Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.DeleteUser(s.ctx, "usr-404", "usr-admin")

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
	s.mockRepo.AssertNotCalled(s.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestListUsers_DefaultsLimit() {
	s.mockRepo.On("FindUsers", s.ctx, domain.RoleDataEntry, 50, 0).Return([]domain.User{}, nil).Once()

	_, err := s.service.ListUsers(s.ctx, domain.RoleDataEntry, 0, 0)

	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
