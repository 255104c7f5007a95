package repositories

import (
	"context"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// ClaimFilter narrows ListClaims results. Zero values mean "no filter".
type ClaimFilter struct {
	Status       domain.ClaimStatus
	EmployeeID   string
	AssignedToID string // Matches claims with at least one invoice assigned to this worker
	TerminalOnly bool   // Archive view: only APPROVED/REJECTED claims
}

// ClaimReader defines read operations for claim data.
type ClaimReader interface {
	// FindClaimByID retrieves a claim with its invoices and audit trail.
	FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error)

	// ListClaims retrieves claims matching the filter, newest first.
	ListClaims(ctx context.Context, filter ClaimFilter, limit int, offset int) ([]domain.Claim, error)
}

// ClaimWriter defines write operations for claim data.
type ClaimWriter interface {
	// SaveClaim persists a newly created claim. Fails with ErrDuplicate if the
	// claim id already exists.
	SaveClaim(ctx context.Context, claim domain.Claim) error

	// UpdateClaim persists a mutated claim if and only if the stored version
	// still equals expectedVersion, then increments the version. A stale write
	// fails with ErrConflict and leaves the stored claim untouched.
	UpdateClaim(ctx context.Context, claim domain.Claim, expectedVersion int64) error
}

// ClaimRepositoryFacade combines all claim-related repository interfaces.
type ClaimRepositoryFacade interface {
	ClaimReader
	ClaimWriter
}
