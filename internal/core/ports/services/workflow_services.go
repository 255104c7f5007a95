package services

import (
	"context"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// WorkflowSvcFacade is the claim lifecycle state machine: it decides whether a
// transition is legal for the actor, applies it, and appends exactly one audit
// entry. A refused transition leaves the claim byte-for-byte unchanged.
type WorkflowSvcFacade interface {
	// ApplyTransition validates and applies one action against a claim.
	// invoiceIDs may be empty for claim-level actions. Refusals surface as
	// ErrInvalidTransition, ErrForbidden, ErrUnknownInvoice or
	// ErrIncompleteBatch; concurrent stale writes as ErrConflict.
	ApplyTransition(ctx context.Context, claimID string, actor domain.Actor, action domain.WorkflowAction, invoiceIDs []string, comment string) (*domain.Claim, error)

	// DirectUpdate is the audited manual override: it sets the claim status
	// directly for doctor/head/admin corrections on non-terminal claims.
	DirectUpdate(ctx context.Context, claimID string, actor domain.Actor, target domain.ClaimStatus, comment string) (*domain.Claim, error)

	// PermittedActions reports which actions the role may currently trigger
	// on the claim, so clients render buttons without re-deriving the rules.
	PermittedActions(claim *domain.Claim, role domain.UserRole) []domain.WorkflowAction
}

// AssignmentSvcFacade distributes invoices to data-entry workers and
// recomputes the claim aggregate status from invoice-level state.
type AssignmentSvcFacade interface {
	// AssignInvoices hands the listed unassigned invoices to a worker.
	// Already-assigned invoices are skipped (assignment is idempotent and
	// permanent for the review cycle). The claim becomes PENDING_DATA_ENTRY
	// iff every invoice now carries an assignee, else stays PENDING_HEAD.
	AssignInvoices(ctx context.Context, claimID string, invoiceIDs []string, workerID string, actor domain.Actor) (*domain.Claim, error)

	// RecordDataEntryDecision stores the worker's VALID/ERROR verdict on one
	// of their assigned invoices. VALID approves the invoice, ERROR returns it
	// to the employee; the comment becomes the invoice's audit note.
	RecordDataEntryDecision(ctx context.Context, claimID string, invoiceID string, decision domain.EntryDecision, comment string, actor domain.Actor) (*domain.Claim, error)

	// CompleteEntry submits the worker's finished batch. It fails with
	// ErrIncompleteBatch while any invoice assigned to the worker lacks a
	// decision; once every invoice across the claim is decided the claim
	// reverts to PENDING_HEAD.
	CompleteEntry(ctx context.Context, claimID string, actor domain.Actor, comment string) (*domain.Claim, error)

	// AggregateFinalDecision partitions the claim's invoices into approved
	// and rejected sets for the head's final claim-level action.
	AggregateFinalDecision(claim *domain.Claim) (approved []domain.Invoice, rejected []domain.Invoice)
}
