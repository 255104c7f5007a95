package services

import (
	"context"

	"github.com/litc-ly/claims_backend/internal/core/domain"
	"github.com/litc-ly/claims_backend/internal/dto"
)

// ClaimReaderSvc defines read operations for claims.
type ClaimReaderSvc interface {
	// GetClaimByID retrieves a claim with its invoices and audit trail.
	GetClaimByID(ctx context.Context, claimID string) (*domain.Claim, error)

	// ListClaims retrieves claims visible to the actor. Employees see their
	// own claims; data-entry workers see claims holding invoices assigned to
	// them; reviewer roles see everything.
	ListClaims(ctx context.Context, actor domain.Actor, params dto.ListClaimsParams) ([]domain.Claim, error)

	// ListArchive retrieves terminal (APPROVED/REJECTED) claims. Terminal
	// claims are archived, never deleted.
	ListArchive(ctx context.Context, actor domain.Actor, params dto.ListClaimsParams) ([]domain.Claim, error)
}

// ClaimWriterSvc defines write operations for claims outside the workflow engine.
type ClaimWriterSvc interface {
	// CreateClaim performs the employee submission: all invoices start at
	// PENDING_DR, the claim total is frozen, and the creation audit entry is
	// appended.
	CreateClaim(ctx context.Context, actor domain.Actor, req dto.CreateClaimRequest) (*domain.Claim, error)

	// UpdateInvoiceData revises an invoice's extracted fields and recomputes
	// its derived amounts. Only the assigned data-entry worker (or an admin)
	// may edit, and never once the claim is terminal.
	UpdateInvoiceData(ctx context.Context, actor domain.Actor, claimID string, invoiceID string, req dto.UpdateInvoiceDataRequest) (*domain.Claim, error)
}

// ClaimSvcFacade combines all claim-related service interfaces.
type ClaimSvcFacade interface {
	ClaimReaderSvc
	ClaimWriterSvc
}
