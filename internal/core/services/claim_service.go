package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portsrepo "github.com/litc-ly/claims_backend/internal/core/ports/repositories"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/middleware"
)

// claimService provides claim construction, retrieval, and invoice field
// revision. Status transitions live in the workflow service.
type claimService struct {
	claimRepo portsrepo.ClaimRepositoryFacade
	newID     IDGenerator
	now       Clock
}

// NewClaimService creates a new ClaimService. Passing nil for newID or now
// selects the production defaults (UUIDs and UTC wall clock).
func NewClaimService(claimRepo portsrepo.ClaimRepositoryFacade, newID IDGenerator, now Clock) portssvc.ClaimSvcFacade {
	if newID == nil {
		newID = defaultIDGenerator
	}
	if now == nil {
		now = defaultClock
	}
	return &claimService{
		claimRepo: claimRepo,
		newID:     newID,
		now:       now,
	}
}

// Ensure claimService implements the portssvc.ClaimSvcFacade interface
var _ portssvc.ClaimSvcFacade = (*claimService)(nil)

// CreateClaim performs the employee submission.
// Implements portssvc.ClaimSvcFacade.
func (s *claimService) CreateClaim(ctx context.Context, actor domain.Actor, req dto.CreateClaimRequest) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role != domain.RoleEmployee && actor.Role != domain.RoleAdmin {
		logger.Warn("Non-employee attempted claim submission", slog.String("user_id", actor.UserID), slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}
	if len(req.Invoices) == 0 {
		return nil, fmt.Errorf("%w: a claim needs at least one invoice", apperrors.ErrValidation)
	}

	submittedAt := s.now()
	claimID := s.newID()

	invoices := make([]domain.Invoice, len(req.Invoices))
	total := decimal.Zero
	for i, invReq := range req.Invoices {
		if !invReq.Currency.IsValid() {
			return nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, invReq.Currency)
		}
		rate := domain.DefaultRateFor(invReq.Currency)
		if invReq.ExchangeRate != nil {
			if invReq.ExchangeRate.IsNegative() {
				return nil, fmt.Errorf("%w: exchange rate must not be negative", apperrors.ErrValidation)
			}
			rate = *invReq.ExchangeRate
		}

		lineItems := make([]domain.LineItem, len(invReq.LineItems))
		for j, liReq := range invReq.LineItems {
			lineItems[j] = domain.LineItem{
				LineItemID:  s.newID(),
				ItemName:    liReq.ItemName,
				Price:       liReq.Price,
				ServiceType: liReq.ServiceType,
			}
		}

		captureDate := invReq.CaptureDate
		if captureDate.IsZero() {
			captureDate = submittedAt
		}

		inv := domain.Invoice{
			InvoiceID:     s.newID(),
			InvoiceNumber: invReq.InvoiceNumber,
			HospitalName:  invReq.HospitalName,
			CaptureDate:   captureDate,
			Amount:        invReq.Amount,
			Currency:      invReq.Currency,
			ExchangeRate:  rate,
			LineItems:     lineItems,
			Status:        domain.StatusPendingDr,
		}
		inv.ComputeDerived()
		total = total.Add(inv.AmountInBase)
		invoices[i] = inv
	}

	claim := domain.Claim{
		ClaimID:         claimID,
		ReferenceNumber: referenceNumber(submittedAt),
		EmployeeID:      actor.UserID,
		EmployeeName:    actor.Name,
		Department:      req.Department,
		Description:     req.Description,
		SubmissionDate:  submittedAt,
		Status:          domain.StatusPendingDr,
		Invoices:        invoices,
		TotalAmount:     total, // frozen at submission; the as-claimed figure
		AuditTrail: []domain.AuditLogEntry{
			{
				EntryID:   s.newID(),
				ActorID:   actor.UserID,
				ActorName: actor.Name,
				Action:    "Claim submitted for medical review",
				Timestamp: submittedAt,
			},
		},
		Version: 1,
		AuditFields: domain.AuditFields{
			CreatedAt:     submittedAt,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: submittedAt,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := claim.CheckInvariants(); err != nil {
		logger.Error("New claim failed invariant check", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if err := s.claimRepo.SaveClaim(ctx, claim); err != nil {
		logger.Error("Failed to save claim", slog.String("error", err.Error()), slog.String("claim_id", claimID))
		return nil, fmt.Errorf("failed to save claim: %w", err)
	}

	logger.Info("Claim created successfully",
		slog.String("claim_id", claimID),
		slog.String("reference_number", claim.ReferenceNumber),
		slog.Int("invoice_count", len(invoices)))
	return &claim, nil
}

// GetClaimByID retrieves a claim with its invoices and audit trail.
// Implements portssvc.ClaimSvcFacade.
func (s *claimService) GetClaimByID(ctx context.Context, claimID string) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find claim by ID", slog.String("error", err.Error()), slog.String("claim_id", claimID))
		}
		return nil, fmt.Errorf("failed to find claim by ID %s: %w", claimID, err)
	}
	return claim, nil
}

// ListClaims retrieves claims visible to the actor.
// Implements portssvc.ClaimSvcFacade.
func (s *claimService) ListClaims(ctx context.Context, actor domain.Actor, params dto.ListClaimsParams) ([]domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.ClaimFilter{
		EmployeeID:   params.EmployeeID,
		AssignedToID: params.AssignedToID,
	}
	if params.Status != "" {
		status := domain.ClaimStatus(params.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, params.Status)
		}
		filter.Status = status
	}

	// Visibility narrows by role: employees see only their own claims,
	// data-entry workers only claims carrying their assignments.
	switch actor.Role {
	case domain.RoleEmployee:
		filter.EmployeeID = actor.UserID
	case domain.RoleDataEntry:
		filter.AssignedToID = actor.UserID
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	claims, err := s.claimRepo.ListClaims(ctx, filter, limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list claims from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve claims: %w", err)
	}

	logger.Info("Claims listed successfully", slog.Int("count", len(claims)))
	return claims, nil
}

// ListArchive retrieves terminal claims.
// Implements portssvc.ClaimSvcFacade.
func (s *claimService) ListArchive(ctx context.Context, actor domain.Actor, params dto.ListClaimsParams) ([]domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.ClaimFilter{TerminalOnly: true}
	if actor.Role == domain.RoleEmployee {
		filter.EmployeeID = actor.UserID
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	claims, err := s.claimRepo.ListClaims(ctx, filter, limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list archived claims", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve archived claims: %w", err)
	}
	return claims, nil
}

// UpdateInvoiceData revises an invoice's extracted fields.
// Implements portssvc.ClaimSvcFacade.
func (s *claimService) UpdateInvoiceData(ctx context.Context, actor domain.Actor, claimID string, invoiceID string, req dto.UpdateInvoiceDataRequest) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}

	// Terminal claims accept no further invoice mutation.
	if claim.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: claim %s is %s", apperrors.ErrInvalidTransition, claimID, claim.Status)
	}

	updated := claim.Clone()
	inv := updated.FindInvoice(invoiceID)
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownInvoice, invoiceID)
	}

	// Only the assigned worker revises extracted figures; admins may correct.
	if actor.Role != domain.RoleAdmin {
		if actor.Role != domain.RoleDataEntry || !inv.IsAssigned() || *inv.AssignedToID != actor.UserID {
			logger.Warn("Actor not permitted to edit invoice",
				slog.String("user_id", actor.UserID),
				slog.String("invoice_id", invoiceID))
			return nil, apperrors.ErrForbidden
		}
	}

	if req.HospitalName != nil {
		inv.HospitalName = *req.HospitalName
	}
	if req.InvoiceNumber != nil {
		inv.InvoiceNumber = *req.InvoiceNumber
	}
	if req.Amount != nil {
		inv.Amount = *req.Amount
	}
	if req.Currency != nil {
		if !req.Currency.IsValid() {
			return nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, *req.Currency)
		}
		inv.Currency = *req.Currency
	}
	if req.ExchangeRate != nil {
		if req.ExchangeRate.IsNegative() {
			return nil, fmt.Errorf("%w: exchange rate must not be negative", apperrors.ErrValidation)
		}
		inv.ExchangeRate = *req.ExchangeRate
	}
	if req.LineItems != nil {
		lineItems := make([]domain.LineItem, len(*req.LineItems))
		for i, liReq := range *req.LineItems {
			lineItems[i] = domain.LineItem{
				LineItemID:  s.newID(),
				ItemName:    liReq.ItemName,
				Price:       liReq.Price,
				ServiceType: liReq.ServiceType,
			}
		}
		inv.LineItems = lineItems
	}

	// Derived amounts follow every edit, not just creation.
	inv.ComputeDerived()

	now := s.now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	if err := updated.CheckInvariants(); err != nil {
		logger.Error("Invoice edit violated claim invariants", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if err := s.claimRepo.UpdateClaim(ctx, *updated, claim.Version); err != nil {
		logger.Error("Failed to save invoice edit", slog.String("error", err.Error()), slog.String("claim_id", claimID))
		return nil, fmt.Errorf("failed to save invoice edit: %w", err)
	}
	updated.Version++

	logger.Info("Invoice data updated", slog.String("claim_id", claimID), slog.String("invoice_id", invoiceID))
	return updated, nil
}
