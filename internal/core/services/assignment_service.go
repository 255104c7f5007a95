package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portsrepo "github.com/litc-ly/claims_backend/internal/core/ports/repositories"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/middleware"
)

var (
	ErrNotDataEntryWorker = errors.New("assignee is not a data-entry worker")
	ErrNoAssignedInvoices = errors.New("worker has no invoices assigned on this claim")
)

// assignmentService distributes invoices within a claim to data-entry workers
// and recomputes the claim aggregate status from invoice-level state. It
// shares the workflow table so role gating lives in exactly one place.
type assignmentService struct {
	claimRepo portsrepo.ClaimRepositoryFacade
	userSvc   portssvc.UserReaderSvc
	newID     IDGenerator
	now       Clock
}

// NewAssignmentService creates a new AssignmentService. Passing nil for newID
// or now selects the production defaults.
func NewAssignmentService(claimRepo portsrepo.ClaimRepositoryFacade, userSvc portssvc.UserReaderSvc, newID IDGenerator, now Clock) portssvc.AssignmentSvcFacade {
	if newID == nil {
		newID = defaultIDGenerator
	}
	if now == nil {
		now = defaultClock
	}
	return &assignmentService{
		claimRepo: claimRepo,
		userSvc:   userSvc,
		newID:     newID,
		now:       now,
	}
}

// Ensure assignmentService implements the portssvc.AssignmentSvcFacade interface
var _ portssvc.AssignmentSvcFacade = (*assignmentService)(nil)

// AssignInvoices hands the listed unassigned invoices to a worker.
// Implements portssvc.AssignmentSvcFacade.
func (s *assignmentService) AssignInvoices(ctx context.Context, claimID string, invoiceIDs []string, workerID string, actor domain.Actor) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}
	if claim.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTransition, ErrClaimTerminal)
	}

	rule := ruleFor(claim.Status, domain.ActionAssignInvoices)
	if rule == nil {
		return nil, fmt.Errorf("%w: assign-invoices is not legal from %s", apperrors.ErrInvalidTransition, claim.Status)
	}
	if !rule.permitsRole(actor.Role) {
		logger.Warn("Role not permitted to assign invoices",
			slog.String("claim_id", claimID), slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}

	worker, err := s.userSvc.GetUserByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worker %s: %w", workerID, err)
	}
	if worker.Role != domain.RoleDataEntry {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNotDataEntryWorker)
	}

	for _, invoiceID := range invoiceIDs {
		if claim.FindInvoice(invoiceID) == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownInvoice, invoiceID)
		}
	}

	updated := claim.Clone()
	assigned := 0
	for _, invoiceID := range invoiceIDs {
		inv := updated.FindInvoice(invoiceID)
		if inv.IsAssigned() {
			// Assignment is permanent for the review cycle; bulk actions only
			// ever touch unassigned invoices.
			continue
		}
		workerIDCopy := worker.UserID
		workerName := worker.Name
		inv.AssignedToID = &workerIDCopy
		inv.AssignedToName = &workerName
		inv.Status = domain.StatusPendingDataEntry
		assigned++
	}

	if assigned == 0 {
		// Every targeted invoice was already assigned: idempotent no-op, no
		// audit entry, nothing persisted.
		logger.Info("Assignment was a no-op; all targeted invoices already assigned",
			slog.String("claim_id", claimID))
		return claim, nil
	}

	// Aggregation rule: the claim moves to data entry only once every invoice
	// carries an assignee; partial assignment keeps it with the head.
	if updated.AllInvoicesAssigned() {
		updated.Status = domain.StatusPendingDataEntry
	} else {
		updated.Status = domain.StatusPendingHead
	}

	appendAuditEntry(updated, s.newID(), actor,
		fmt.Sprintf("Assigned %d invoice(s) to %s", assigned, worker.Name), s.now, "")

	now := s.now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	if err := updated.CheckInvariants(); err != nil {
		logger.Error("Assignment violated claim invariants",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if err := s.claimRepo.UpdateClaim(ctx, *updated, claim.Version); err != nil {
		logger.Error("Failed to save invoice assignment",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}
	updated.Version++

	logger.Info("Invoices assigned",
		slog.String("claim_id", claimID),
		slog.String("worker_id", worker.UserID),
		slog.Int("assigned", assigned),
		slog.String("claim_status", string(updated.Status)))
	return updated, nil
}

// RecordDataEntryDecision stores the worker's verdict on one invoice.
// Implements portssvc.AssignmentSvcFacade.
func (s *assignmentService) RecordDataEntryDecision(ctx context.Context, claimID string, invoiceID string, decision domain.EntryDecision, comment string, actor domain.Actor) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !decision.IsValid() {
		return nil, fmt.Errorf("%w: unknown decision %q", apperrors.ErrValidation, decision)
	}
	if actor.Role != domain.RoleDataEntry {
		return nil, apperrors.ErrForbidden
	}

	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}
	if claim.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTransition, ErrClaimTerminal)
	}

	updated := claim.Clone()
	inv := updated.FindInvoice(invoiceID)
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownInvoice, invoiceID)
	}
	if !inv.IsAssigned() || *inv.AssignedToID != actor.UserID {
		logger.Warn("Worker tried to decide an invoice not assigned to them",
			slog.String("claim_id", claimID),
			slog.String("invoice_id", invoiceID),
			slog.String("user_id", actor.UserID))
		return nil, apperrors.ErrForbidden
	}

	// A worker may revise their verdict until the batch is submitted; the
	// invoice keeps advancing independently of the claim status.
	if decision == domain.DecisionValid {
		inv.Status = domain.StatusApproved
	} else {
		inv.Status = domain.StatusReturnedToEmployee
	}
	inv.AuditNote = comment

	appendAuditEntry(updated, s.newID(), actor,
		fmt.Sprintf("Invoice %s marked %s", invoiceLabel(inv), decision), s.now, comment)

	now := s.now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	if err := s.claimRepo.UpdateClaim(ctx, *updated, claim.Version); err != nil {
		logger.Error("Failed to save data-entry decision",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}
	updated.Version++

	logger.Info("Data-entry decision recorded",
		slog.String("claim_id", claimID),
		slog.String("invoice_id", invoiceID),
		slog.String("decision", string(decision)))
	return updated, nil
}

// CompleteEntry submits the acting worker's finished batch.
// Implements portssvc.AssignmentSvcFacade.
func (s *assignmentService) CompleteEntry(ctx context.Context, claimID string, actor domain.Actor, comment string) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}
	if claim.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTransition, ErrClaimTerminal)
	}

	rule := ruleFor(claim.Status, domain.ActionCompleteEntry)
	if rule == nil {
		return nil, fmt.Errorf("%w: complete-entry is not legal from %s", apperrors.ErrInvalidTransition, claim.Status)
	}
	if !rule.permitsRole(actor.Role) {
		return nil, apperrors.ErrForbidden
	}

	mine := 0
	undecided := 0
	for i := range claim.Invoices {
		inv := &claim.Invoices[i]
		if !inv.IsAssigned() || *inv.AssignedToID != actor.UserID {
			continue
		}
		mine++
		if !inv.HasDecision() {
			undecided++
		}
	}
	if mine == 0 {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrNoAssignedInvoices)
	}
	if undecided > 0 {
		logger.Warn("Batch submission refused; undecided invoices remain",
			slog.String("claim_id", claimID),
			slog.String("user_id", actor.UserID),
			slog.Int("undecided", undecided))
		return nil, fmt.Errorf("%w: %d invoice(s) still undecided", apperrors.ErrIncompleteBatch, undecided)
	}

	updated := claim.Clone()
	actionText := fmt.Sprintf("Data entry batch completed by %s", actor.Name)
	// The claim reverts to head review only once every worker's invoices are
	// decided; other workers' pending batches keep it in data entry.
	if updated.AllInvoicesDecided() {
		updated.Status = domain.StatusPendingHead
		actionText = fmt.Sprintf("Data entry batch completed by %s; claim returned to head of unit", actor.Name)
	}
	appendAuditEntry(updated, s.newID(), actor, actionText, s.now, comment)

	now := s.now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	if err := updated.CheckInvariants(); err != nil {
		logger.Error("Batch completion violated claim invariants",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if err := s.claimRepo.UpdateClaim(ctx, *updated, claim.Version); err != nil {
		logger.Error("Failed to save batch completion",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save batch completion: %w", err)
	}
	updated.Version++

	logger.Info("Data entry batch completed",
		slog.String("claim_id", claimID),
		slog.String("user_id", actor.UserID),
		slog.String("claim_status", string(updated.Status)))
	return updated, nil
}

// AggregateFinalDecision partitions invoices for the head's final action.
// Implements portssvc.AssignmentSvcFacade.
func (s *assignmentService) AggregateFinalDecision(claim *domain.Claim) (approved []domain.Invoice, rejected []domain.Invoice) {
	return claim.PartitionByDecision()
}

// invoiceLabel prefers the human-facing invoice number in audit text.
func invoiceLabel(inv *domain.Invoice) string {
	if inv.InvoiceNumber != "" {
		return inv.InvoiceNumber
	}
	return inv.InvoiceID
}
