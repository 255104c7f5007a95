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
	ErrNoApprovedInvoices = errors.New("final approval needs at least one approved invoice")
	ErrNoRejectedInvoices = errors.New("no rejected invoices to return for correction")
	ErrClaimTerminal      = errors.New("claim has reached a terminal status")
)

// transitionRule is one row of the claim workflow table: who may trigger which
// action from which status, under which guard, and what it does to the claim.
type transitionRule struct {
	From   domain.ClaimStatus
	Action domain.WorkflowAction
	Roles  []domain.UserRole

	// Guard returns nil when the claim state permits the action.
	Guard func(c *domain.Claim) error

	// Apply mutates the claim (already a clone) and returns the audit action
	// text. Nil for parameterized actions owned by the assignment subsystem.
	Apply func(c *domain.Claim) string
}

func (r *transitionRule) permitsRole(role domain.UserRole) bool {
	for _, allowed := range r.Roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// transitionTable is the exhaustive claim state machine. Every role check the
// UI performs is derived from this table, never re-implemented at call sites.
var transitionTable = []transitionRule{
	{
		From:   domain.StatusPendingDr,
		Action: domain.ActionMedicalApprove,
		Roles:  []domain.UserRole{domain.RoleDoctor},
		Apply: func(c *domain.Claim) string {
			c.Status = domain.StatusPendingHead
			return "Medically approved; forwarded to head of unit"
		},
	},
	{
		From:   domain.StatusPendingDr,
		Action: domain.ActionReturnToEmployee,
		Roles:  []domain.UserRole{domain.RoleDoctor},
		Apply: func(c *domain.Claim) string {
			c.Status = domain.StatusReturnedToEmployee
			return "Returned to employee after medical review"
		},
	},
	{
		// Parameterized: needs a worker and invoice ids, so the assignment
		// subsystem applies it. The row still drives role gating and
		// permitted-action queries.
		From:   domain.StatusPendingHead,
		Action: domain.ActionAssignInvoices,
		Roles:  []domain.UserRole{domain.RoleHeadOfUnit},
		Guard: func(c *domain.Claim) error {
			if c.AllInvoicesAssigned() {
				return fmt.Errorf("every invoice is already assigned")
			}
			return nil
		},
	},
	{
		From:   domain.StatusPendingHead,
		Action: domain.ActionFinalApprove,
		Roles:  []domain.UserRole{domain.RoleHeadOfUnit},
		Guard: func(c *domain.Claim) error {
			approved, _ := c.PartitionByDecision()
			if len(approved) == 0 {
				return ErrNoApprovedInvoices
			}
			return nil
		},
		Apply: func(c *domain.Claim) string {
			c.Status = domain.StatusPendingAudit
			return "Final approval; invoices forwarded to financial audit"
		},
	},
	{
		From:   domain.StatusPendingHead,
		Action: domain.ActionReturnRejected,
		Roles:  []domain.UserRole{domain.RoleHeadOfUnit},
		Guard: func(c *domain.Claim) error {
			_, rejected := c.PartitionByDecision()
			if len(rejected) == 0 {
				return ErrNoRejectedInvoices
			}
			return nil
		},
		Apply: func(c *domain.Claim) string {
			// Rejected invoices go back to their assigned workers for another
			// entry cycle; approvals earned so far are kept.
			for i := range c.Invoices {
				switch c.Invoices[i].Status {
				case domain.StatusReturnedToEmployee, domain.StatusReturnedToDr:
					c.Invoices[i].Status = domain.StatusPendingDataEntry
				}
			}
			c.Status = domain.StatusPendingDataEntry
			return "Rejected invoices returned to data entry for correction"
		},
	},
	{
		From:   domain.StatusPendingHead,
		Action: domain.ActionRejectAll,
		Roles:  []domain.UserRole{domain.RoleHeadOfUnit},
		Apply: func(c *domain.Claim) string {
			c.Status = domain.StatusRejected
			return "All invoices rejected by head of unit"
		},
	},
	{
		// Parameterized: the assignment subsystem validates the acting
		// worker's batch before applying it.
		From:   domain.StatusPendingDataEntry,
		Action: domain.ActionCompleteEntry,
		Roles:  []domain.UserRole{domain.RoleDataEntry},
	},
	{
		From:   domain.StatusPendingAudit,
		Action: domain.ActionApproveFinal,
		Roles:  []domain.UserRole{domain.RoleAuditor},
		Apply: func(c *domain.Claim) string {
			c.Status = domain.StatusApproved
			return "Claim approved after financial audit"
		},
	},
	{
		From:   domain.StatusPendingAudit,
		Action: domain.ActionRejectFinal,
		Roles:  []domain.UserRole{domain.RoleAuditor},
		Apply: func(c *domain.Claim) string {
			c.Status = domain.StatusRejected
			return "Claim rejected after financial audit"
		},
	},
}

// directUpdateRoles may set a claim status directly as an audited manual
// override.
var directUpdateRoles = []domain.UserRole{domain.RoleDoctor, domain.RoleHeadOfUnit, domain.RoleAdmin}

// ruleFor looks up the transition rule for a status/action pair.
func ruleFor(status domain.ClaimStatus, action domain.WorkflowAction) *transitionRule {
	for i := range transitionTable {
		if transitionTable[i].From == status && transitionTable[i].Action == action {
			return &transitionTable[i]
		}
	}
	return nil
}

// workflowService is the claim lifecycle state machine.
type workflowService struct {
	claimRepo portsrepo.ClaimRepositoryFacade
	newID     IDGenerator
	now       Clock
}

// NewWorkflowService creates a new WorkflowService. Passing nil for newID or
// now selects the production defaults.
func NewWorkflowService(claimRepo portsrepo.ClaimRepositoryFacade, newID IDGenerator, now Clock) portssvc.WorkflowSvcFacade {
	if newID == nil {
		newID = defaultIDGenerator
	}
	if now == nil {
		now = defaultClock
	}
	return &workflowService{
		claimRepo: claimRepo,
		newID:     newID,
		now:       now,
	}
}

// Ensure workflowService implements the portssvc.WorkflowSvcFacade interface
var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// appendAuditEntry records one state-changing action on the claim. Exactly one
// entry per successful transition; entries are never mutated or removed.
func appendAuditEntry(c *domain.Claim, entryID string, actor domain.Actor, action string, at Clock, comment string) {
	c.AuditTrail = append(c.AuditTrail, domain.AuditLogEntry{
		EntryID:   entryID,
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		Action:    action,
		Timestamp: at(),
		Comment:   comment,
	})
}

// ApplyTransition validates and applies one action against a claim.
// Implements portssvc.WorkflowSvcFacade.
func (s *workflowService) ApplyTransition(ctx context.Context, claimID string, actor domain.Actor, action domain.WorkflowAction, invoiceIDs []string, comment string) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", apperrors.ErrValidation, action)
	}

	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}

	// Terminal claims permit no further transitions, whatever the role.
	if claim.Status.IsTerminal() {
		logger.Warn("Transition attempted on terminal claim",
			slog.String("claim_id", claimID), slog.String("status", string(claim.Status)))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTransition, ErrClaimTerminal)
	}

	rule := ruleFor(claim.Status, action)
	if rule == nil {
		logger.Warn("No transition rule for status/action",
			slog.String("claim_id", claimID),
			slog.String("status", string(claim.Status)),
			slog.String("action", string(action)))
		return nil, fmt.Errorf("%w: %s is not legal from %s", apperrors.ErrInvalidTransition, action, claim.Status)
	}
	if !rule.permitsRole(actor.Role) {
		logger.Warn("Role not permitted for action",
			slog.String("claim_id", claimID),
			slog.String("role", string(actor.Role)),
			slog.String("action", string(action)))
		return nil, apperrors.ErrForbidden
	}
	if rule.Apply == nil {
		// assign-invoices and complete-entry need their own parameters; the
		// assignment subsystem owns them.
		return nil, fmt.Errorf("%w: action %s requires its dedicated operation", apperrors.ErrValidation, action)
	}

	// Target invoice ids must belong to the claim even when the action itself
	// is claim-level.
	for _, invoiceID := range invoiceIDs {
		if claim.FindInvoice(invoiceID) == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownInvoice, invoiceID)
		}
	}

	if rule.Guard != nil {
		if err := rule.Guard(claim); err != nil {
			logger.Warn("Transition guard refused action",
				slog.String("claim_id", claimID),
				slog.String("action", string(action)),
				slog.String("reason", err.Error()))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTransition, err)
		}
	}

	// Mutate a clone so a failed save never leaks a half-applied transition.
	updated := claim.Clone()
	actionText := rule.Apply(updated)
	appendAuditEntry(updated, s.newID(), actor, actionText, s.now, comment)

	now := s.now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	if err := updated.CheckInvariants(); err != nil {
		logger.Error("Transition violated claim invariants",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if err := s.claimRepo.UpdateClaim(ctx, *updated, claim.Version); err != nil {
		logger.Error("Failed to save claim transition",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save transition: %w", err)
	}
	updated.Version++

	logger.Info("Claim transition applied",
		slog.String("claim_id", claimID),
		slog.String("action", string(action)),
		slog.String("from", string(claim.Status)),
		slog.String("to", string(updated.Status)))
	return updated, nil
}

// DirectUpdate sets the claim status directly as an audited manual override.
// Implements portssvc.WorkflowSvcFacade.
func (s *workflowService) DirectUpdate(ctx context.Context, claimID string, actor domain.Actor, target domain.ClaimStatus, comment string) (*domain.Claim, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, target)
	}

	permitted := false
	for _, role := range directUpdateRoles {
		if actor.Role == role {
			permitted = true
			break
		}
	}
	if !permitted {
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
	updated.Status = target
	appendAuditEntry(updated, s.newID(), actor, fmt.Sprintf("Status manually set to %s", target), s.now, comment)

	now := s.now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	// Even overrides may not leave the claim in a state the workflow would
	// refuse to load.
	if err := updated.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTransition, err)
	}

	if err := s.claimRepo.UpdateClaim(ctx, *updated, claim.Version); err != nil {
		logger.Error("Failed to save direct status update",
			slog.String("claim_id", claimID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save status update: %w", err)
	}
	updated.Version++

	logger.Info("Claim status manually updated",
		slog.String("claim_id", claimID),
		slog.String("from", string(claim.Status)),
		slog.String("to", string(target)))
	return updated, nil
}

// PermittedActions reports which actions the role may currently trigger.
// Implements portssvc.WorkflowSvcFacade.
func (s *workflowService) PermittedActions(claim *domain.Claim, role domain.UserRole) []domain.WorkflowAction {
	actions := []domain.WorkflowAction{}
	if claim.Status.IsTerminal() {
		return actions
	}
	for i := range transitionTable {
		rule := &transitionTable[i]
		if rule.From != claim.Status || !rule.permitsRole(role) {
			continue
		}
		if rule.Guard != nil && rule.Guard(claim) != nil {
			continue
		}
		actions = append(actions, rule.Action)
	}
	for _, allowed := range directUpdateRoles {
		if role == allowed {
			actions = append(actions, domain.ActionDirectUpdate)
			break
		}
	}
	return actions
}
