package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portsrepo "github.com/litc-ly/claims_backend/internal/core/ports/repositories"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/core/services"
	"github.com/litc-ly/claims_backend/internal/dto"
)

// --- Test Suite ---
type ClaimServiceTestSuite struct {
	suite.Suite
	mockRepo *MockClaimRepository
	service  portssvc.ClaimSvcFacade
	ctx      context.Context
}

func (s *ClaimServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockClaimRepository)
	s.service = services.NewClaimService(s.mockRepo, sequentialIDs("id"), tickingClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
	s.ctx = context.Background()
}

func (s *ClaimServiceTestSuite) TestCreateClaim_Success() {
	req := dto.CreateClaimRequest{
		Description: "Surgery in Tunis",
		Department:  "Operations",
		Invoices: []dto.CreateInvoiceRequest{
			{
				HospitalName:  "Clinique Pasteur",
				InvoiceNumber: "INV-77",
				Amount:        decimal.NewFromInt(100),
				Currency:      domain.CurrencyUSD,
				LineItems: []dto.CreateLineItemRequest{
					{ItemName: "Consultation", Price: decimal.NewFromInt(40), ServiceType: "outpatient"},
				},
			},
			{
				HospitalName: "Tripoli Central",
				Amount:       decimal.NewFromInt(50),
				Currency:     domain.CurrencyLYD,
			},
		},
	}
	s.mockRepo.On("SaveClaim", s.ctx, mock.Anything).Return(nil).Once()

	claim, err := s.service.CreateClaim(s.ctx, employee, req)

	s.Require().NoError(err)
	s.Equal(domain.StatusPendingDr, claim.Status)
	s.Equal(int64(1), claim.Version)
	s.Equal(employee.UserID, claim.EmployeeID)
	s.True(strings.HasPrefix(claim.ReferenceNumber, "REF-"))
	s.Len(claim.ReferenceNumber, 10)
	// 100 USD at the default 4.82 plus 50 LYD at par
	s.True(claim.TotalAmount.Equal(decimal.NewFromInt(532)), "total was %s", claim.TotalAmount)
	s.Require().Len(claim.Invoices, 2)
	usd := claim.Invoices[0]
	s.True(usd.AmountInBase.Equal(decimal.NewFromInt(482)))
	s.True(usd.NetAmount.Equal(decimal.RequireFromString("433.8")))
	s.Equal(domain.StatusPendingDr, usd.Status)
	s.Require().Len(claim.AuditTrail, 1)
	s.Equal(employee.UserID, claim.AuditTrail[0].ActorID)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ClaimServiceTestSuite) TestCreateClaim_ExplicitRateOverridesDefault() {
	rate := decimal.RequireFromString("5.00")
	req := dto.CreateClaimRequest{
		Invoices: []dto.CreateInvoiceRequest{
			{Amount: decimal.NewFromInt(10), Currency: domain.CurrencyUSD, ExchangeRate: &rate},
		},
	}
	s.mockRepo.On("SaveClaim", s.ctx, mock.Anything).Return(nil).Once()

	claim, err := s.service.CreateClaim(s.ctx, employee, req)

	s.Require().NoError(err)
	s.True(claim.Invoices[0].AmountInBase.Equal(decimal.NewFromInt(50)))
}

func (s *ClaimServiceTestSuite) TestCreateClaim_NegativeRateRefused() {
	rate := decimal.RequireFromString("-1")
	req := dto.CreateClaimRequest{
		Invoices: []dto.CreateInvoiceRequest{
			{Amount: decimal.NewFromInt(10), Currency: domain.CurrencyUSD, ExchangeRate: &rate},
		},
	}

	_, err := s.service.CreateClaim(s.ctx, employee, req)

	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveClaim", mock.Anything, mock.Anything)
}

func (s *ClaimServiceTestSuite) TestCreateClaim_UnknownCurrencyRefused() {
	req := dto.CreateClaimRequest{
		Invoices: []dto.CreateInvoiceRequest{
			{Amount: decimal.NewFromInt(10), Currency: domain.Currency("GBP")},
		},
	}

	_, err := s.service.CreateClaim(s.ctx, employee, req)

	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *ClaimServiceTestSuite) TestCreateClaim_NeedsAtLeastOneInvoice() {
	_, err := s.service.CreateClaim(s.ctx, employee, dto.CreateClaimRequest{})
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *ClaimServiceTestSuite) TestCreateClaim_DoctorMayNotSubmit() {
	req := dto.CreateClaimRequest{
		Invoices: []dto.CreateInvoiceRequest{
			{Amount: decimal.NewFromInt(10), Currency: domain.CurrencyLYD},
		},
	}

	_, err := s.service.CreateClaim(s.ctx, doctor, req)

	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ClaimServiceTestSuite) TestListClaims_EmployeeSeesOnlyOwn() {
	s.mockRepo.On("ListClaims", s.ctx, mock.MatchedBy(func(f portsrepo.ClaimFilter) bool {
		return f.EmployeeID == employee.UserID
	}), 20, 0).Return([]domain.Claim{}, nil).Once()

	// the employee cannot widen visibility by naming someone else
	_, err := s.service.ListClaims(s.ctx, employee, dto.ListClaimsParams{EmployeeID: "someone-else"})

	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ClaimServiceTestSuite) TestListClaims_DataEntrySeesOnlyAssigned() {
	s.mockRepo.On("ListClaims", s.ctx, mock.MatchedBy(func(f portsrepo.ClaimFilter) bool {
		return f.AssignedToID == entryUser.UserID && f.EmployeeID == ""
	}), 20, 0).Return([]domain.Claim{}, nil).Once()

	_, err := s.service.ListClaims(s.ctx, entryUser, dto.ListClaimsParams{})

	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ClaimServiceTestSuite) TestListClaims_StatusFilterValidated() {
	_, err := s.service.ListClaims(s.ctx, head, dto.ListClaimsParams{Status: "NOT_A_STATUS"})
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *ClaimServiceTestSuite) TestListArchive_TerminalOnly() {
	s.mockRepo.On("ListClaims", s.ctx, mock.MatchedBy(func(f portsrepo.ClaimFilter) bool {
		return f.TerminalOnly && f.EmployeeID == ""
	}), 20, 0).Return([]domain.Claim{}, nil).Once()

	_, err := s.service.ListArchive(s.ctx, auditor, dto.ListClaimsParams{})

	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ClaimServiceTestSuite) TestUpdateInvoiceData_AssignedWorkerRecomputesDerived() {
	claim := entryClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	amount := decimal.NewFromInt(200)
	currency := domain.CurrencyUSD
	rate := domain.DefaultRateFor(domain.CurrencyUSD)
	updated, err := s.service.UpdateInvoiceData(s.ctx, entryUser, claim.ClaimID, "inv-1", dto.UpdateInvoiceDataRequest{
		Amount:       &amount,
		Currency:     &currency,
		ExchangeRate: &rate,
	})

	s.Require().NoError(err)
	inv := updated.FindInvoice("inv-1")
	s.True(inv.AmountInBase.Equal(decimal.NewFromInt(964)))
	s.True(inv.NetAmount.Equal(decimal.RequireFromString("867.6")))
	s.Equal(int64(2), updated.Version)
	// the as-submitted total never moves
	s.True(updated.TotalAmount.Equal(claim.TotalAmount))
}

func (s *ClaimServiceTestSuite) TestUpdateInvoiceData_NonAssigneeForbidden() {
	claim := entryClaim()
	claim.Invoices[0].AssignedToID = strPtr("someone-else")
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	name := "Edited"
	_, err := s.service.UpdateInvoiceData(s.ctx, entryUser, claim.ClaimID, "inv-1", dto.UpdateInvoiceDataRequest{HospitalName: &name})

	s.Require().ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ClaimServiceTestSuite) TestUpdateInvoiceData_AdminMayCorrect() {
	claim := entryClaim()
	admin := domain.Actor{UserID: "u-admin", Name: "Admin", Role: domain.RoleAdmin}
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()
	s.mockRepo.On("UpdateClaim", s.ctx, mock.Anything, int64(1)).Return(nil).Once()

	name := "Corrected Hospital"
	updated, err := s.service.UpdateInvoiceData(s.ctx, admin, claim.ClaimID, "inv-2", dto.UpdateInvoiceDataRequest{HospitalName: &name})

	s.Require().NoError(err)
	s.Equal("Corrected Hospital", updated.FindInvoice("inv-2").HospitalName)
}

func (s *ClaimServiceTestSuite) TestUpdateInvoiceData_TerminalClaimRefused() {
	claim := entryClaim()
	claim.Status = domain.StatusApproved
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	name := "Edited"
	_, err := s.service.UpdateInvoiceData(s.ctx, entryUser, claim.ClaimID, "inv-1", dto.UpdateInvoiceDataRequest{HospitalName: &name})

	s.Require().ErrorIs(err, apperrors.ErrInvalidTransition)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateClaim", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClaimServiceTestSuite) TestUpdateInvoiceData_UnknownInvoice() {
	claim := entryClaim()
	s.mockRepo.On("FindClaimByID", s.ctx, claim.ClaimID).Return(claim, nil).Once()

	name := "Edited"
	_, err := s.service.UpdateInvoiceData(s.ctx, entryUser, claim.ClaimID, "inv-404", dto.UpdateInvoiceDataRequest{HospitalName: &name})

	s.Require().ErrorIs(err, apperrors.ErrUnknownInvoice)
}

func TestClaimServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClaimServiceTestSuite))
}
