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
)

// --- Mock UserReaderSvc ---
type MockUserReaderSvc struct {
	mock.Mock
}

func (m *MockUserReaderSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserReaderSvc) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserReaderSvc) ListUsers(ctx context.Context, role domain.UserRole, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

var entryWorker = &domain.User{
	UserID: "u-de",
	Name:   "Entry Worker",
	Role:   domain.RoleDataEntry,
}

// pendingHeadClaim has two unassigned invoices awaiting distribution.
func pendingHeadClaim() *domain.Claim {
	c := pendingDrClaim()
	c.Status = domain.StatusPendingHead
	c.Invoices = []domain.Invoice{
		{InvoiceID: "inv-1", Status: domain.StatusPendingHead},
		{InvoiceID: "inv-2", Status: domain.StatusPendingHead},
	}
	return c
}

// --- Test Suite ---
type AssignmentServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockClaimRepository
	mockUserSvc *MockUserReaderSvc
	service     portssvc.AssignmentSvcFacade
	ctx         context.Context
}

func (s *AssignmentServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockClaimRepository)
	s.mockUserSvc = new(MockUserReaderSvc)
	s.service = services.NewAssignmentService(s.mockRepo, s.mockUserSvc, sequentialIDs("id"), tickingClock(time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)))
	s.ctx = context.Background()
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_Partial() {
	claim := pendingHeadClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockUserSvc.On("GetUserByID", s.ctx, entryWorker.UserID).Return(entryWorker, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	updated, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1"}, entryWorker.UserID, head)

	s.Require().NoError(err)
	// one invoice still unassigned: claim stays with the head
	s.Equal(domain.StatusPendingHead, updated.Status)
	s.Equal(domain.StatusPendingDataEntry, updated.Invoices[0].Status)
	s.Equal(entryWorker.UserID, *updated.Invoices[0].AssignedToID)
	s.Equal(entryWorker.Name, *updated.Invoices[0].AssignedToName)
	s.Nil(updated.Invoices[1].AssignedToID)
	s.Len(updated.AuditTrail, 2)
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_AllAssignedMovesClaim() {
	claim := pendingHeadClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockUserSvc.On("GetUserByID", s.ctx, entryWorker.UserID).Return(entryWorker, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.MatchedBy(func(c domain.Claim) bool {
		return c.Status == domain.StatusPendingDataEntry
	}), int64(1)).Return(nil).Once()

	updated, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1", "inv-2"}, entryWorker.UserID, head)

	s.Require().NoError(err)
	s.Equal(domain.StatusPendingDataEntry, updated.Status)
	s.True(updated.AllInvoicesAssigned())
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_SkipsAlreadyAssigned() {
	claim := pendingHeadClaim()
	claim.Invoices[0].AssignedToID = strPtr("other-worker")
	claim.Invoices[0].AssignedToName = strPtr("Other")
	claim.Invoices[0].Status = domain.StatusPendingDataEntry
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockUserSvc.On("GetUserByID", s.ctx, entryWorker.UserID).Return(entryWorker, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	updated, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1", "inv-2"}, entryWorker.UserID, head)

	s.Require().NoError(err)
	// the earlier assignment is permanent
	s.Equal("other-worker", *updated.Invoices[0].AssignedToID)
	s.Equal(entryWorker.UserID, *updated.Invoices[1].AssignedToID)
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_NoOpWhenAllTargetedAssigned() {
	claim := pendingHeadClaim()
	claim.Invoices[0].AssignedToID = strPtr("other-worker")
	claim.Invoices[0].Status = domain.StatusPendingDataEntry
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockUserSvc.On("GetUserByID", s.ctx, entryWorker.UserID).Return(entryWorker, nil).Once()

	updated, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1"}, entryWorker.UserID, head)

	s.Require().NoError(err)
	s.Equal(claim, updated)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateClaim", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_WorkerMustBeDataEntry() {
	claim := pendingHeadClaim()
	notAWorker := &domain.User{UserID: "u-doc", Name: "Dr. Salem", Role: domain.RoleDoctor}
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockUserSvc.On("GetUserByID", s.ctx, notAWorker.UserID).Return(notAWorker, nil).Once()

	_, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1"}, notAWorker.UserID, head)

	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_OnlyHeadMayAssign() {
	claim := pendingHeadClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	_, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1"}, entryWorker.UserID, doctor)

	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_WrongStatus() {
	claim := pendingDrClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	_, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-1"}, entryWorker.UserID, head)

	s.Require().ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *AssignmentServiceTestSuite) TestAssignInvoices_UnknownInvoice() {
	claim := pendingHeadClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockUserSvc.On("GetUserByID", s.ctx, entryWorker.UserID).Return(entryWorker, nil).Once()

	_, err := s.service.AssignInvoices(s.ctx, claim.ClaimID, []string{"inv-404"}, entryWorker.UserID, head)

	s.Require().ErrorIs(err, apperrors.ErrUnknownInvoice)
}

// entryClaim is fully assigned to entryWorker and sits in data entry.
func entryClaim() *domain.Claim {
	c := pendingHeadClaim()
	c.Status = domain.StatusPendingDataEntry
	for i := range c.Invoices {
		c.Invoices[i].Status = domain.StatusPendingDataEntry
		c.Invoices[i].AssignedToID = strPtr(entryWorker.UserID)
		c.Invoices[i].AssignedToName = strPtr(entryWorker.Name)
	}
	return c
}

func (s *AssignmentServiceTestSuite) TestRecordDecision_Valid() {
	claim := entryClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	updated, err := s.service.RecordDataEntryDecision(s.ctx, claim.ClaimID, "inv-1", domain.DecisionValid, "figures match", entryUser)

	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, updated.Invoices[0].Status)
	s.Equal("figures match", updated.Invoices[0].AuditNote)
	// claim status only changes on batch completion
	s.Equal(domain.StatusPendingDataEntry, updated.Status)
}

func (s *AssignmentServiceTestSuite) TestRecordDecision_Error() {
	claim := entryClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	updated, err := s.service.RecordDataEntryDecision(s.ctx, claim.ClaimID, "inv-2", domain.DecisionError, "amount unreadable", entryUser)

	s.Require().NoError(err)
	s.Equal(domain.StatusReturnedToEmployee, updated.Invoices[1].Status)
	s.Equal("amount unreadable", updated.Invoices[1].AuditNote)
}

func (s *AssignmentServiceTestSuite) TestRecordDecision_OnlyAssigneeMayDecide() {
	claim := entryClaim()
	claim.Invoices[0].AssignedToID = strPtr("someone-else")
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	_, err := s.service.RecordDataEntryDecision(s.ctx, claim.ClaimID, "inv-1", domain.DecisionValid, "", entryUser)

	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (s *AssignmentServiceTestSuite) TestRecordDecision_RejectsUnknownVerdict() {
	_, err := s.service.RecordDataEntryDecision(s.ctx, "claim-1", "inv-1", "MAYBE", "", entryUser)
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *AssignmentServiceTestSuite) TestCompleteEntry_IncompleteBatch() {
	claim := entryClaim()
	claim.Invoices[0].Status = domain.StatusApproved
	// inv-2 still undecided
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	_, err := s.service.CompleteEntry(s.ctx, claim.ClaimID, entryUser, "")

	s.Require().ErrorIs(err, apperrors.ErrIncompleteBatch)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateClaim", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AssignmentServiceTestSuite) TestCompleteEntry_AllDecidedRevertsToHead() {
	claim := entryClaim()
	claim.Invoices[0].Status = domain.StatusApproved
	claim.Invoices[1].Status = domain.StatusReturnedToEmployee
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.MatchedBy(func(c domain.Claim) bool {
		return c.Status == domain.StatusPendingHead
	}), int64(1)).Return(nil).Once()

	updated, err := s.service.CompleteEntry(s.ctx, claim.ClaimID, entryUser, "done")

	s.Require().NoError(err)
	s.Equal(domain.StatusPendingHead, updated.Status)
	s.Len(updated.AuditTrail, 2)
}

func (s *AssignmentServiceTestSuite) TestCompleteEntry_OtherWorkersBatchKeepsClaim() {
	claim := entryClaim()
	claim.Invoices[0].Status = domain.StatusApproved
	// inv-2 belongs to another worker and is undecided
	claim.Invoices[1].AssignedToID = strPtr("other-worker")
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	updated, err := s.service.CompleteEntry(s.ctx, claim.ClaimID, entryUser, "")

	s.Require().NoError(err)
	s.Equal(domain.StatusPendingDataEntry, updated.Status)
}

func (s *AssignmentServiceTestSuite) TestCompleteEntry_NoAssignments() {
	claim := entryClaim()
	stranger := domain.Actor{UserID: "u-other", Name: "Other", Role: domain.RoleDataEntry}
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	_, err := s.service.CompleteEntry(s.ctx, claim.ClaimID, stranger, "")

	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *AssignmentServiceTestSuite) TestAggregateFinalDecision() {
	claim := entryClaim()
	claim.Invoices[0].Status = domain.StatusApproved
	claim.Invoices[1].Status = domain.StatusReturnedToEmployee

	approved, rejected := s.service.AggregateFinalDecision(claim)

	s.Require().Len(approved, 1)
	s.Require().Len(rejected, 1)
	s.Equal("inv-1", approved[0].InvoiceID)
	s.Equal("inv-2", rejected[0].InvoiceID)
	// every decided invoice lands in exactly one side
	s.Equal(len(claim.Invoices), len(approved)+len(rejected))
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
