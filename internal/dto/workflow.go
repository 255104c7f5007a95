package dto

import (
	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// TransitionRequest invokes one workflow action against a claim.
// TargetStatus is only read for the direct-update action.
type TransitionRequest struct {
	Action       domain.WorkflowAction `json:"action" binding:"required"`
	InvoiceIDs   []string              `json:"invoiceIDs,omitempty"`
	Comment      string                `json:"comment,omitempty"`
	TargetStatus domain.ClaimStatus    `json:"targetStatus,omitempty"`
}

// AssignInvoicesRequest distributes unassigned invoices to a data-entry worker.
type AssignInvoicesRequest struct {
	InvoiceIDs []string `json:"invoiceIDs" binding:"required,min=1"`
	WorkerID   string   `json:"workerID" binding:"required"`
}

// EntryDecisionRequest records a worker's verdict on one invoice.
type EntryDecisionRequest struct {
	Decision domain.EntryDecision `json:"decision" binding:"required,oneof=VALID ERROR"`
	Comment  string               `json:"comment,omitempty"`
}

// CompleteEntryRequest submits the acting worker's finished batch.
type CompleteEntryRequest struct {
	Comment string `json:"comment,omitempty"`
}

// PermittedActionsResponse tells a client which actions the actor may
// currently trigger, so the UI never computes legality itself.
type PermittedActionsResponse struct {
	ClaimID string                  `json:"claimID"`
	Status  domain.ClaimStatus      `json:"status"`
	Actions []domain.WorkflowAction `json:"actions"`
}

// FinalDecisionResponse is the head's partition of invoices by decision.
type FinalDecisionResponse struct {
	ApprovedInvoices []InvoiceResponse `json:"approvedInvoices"`
	RejectedInvoices []InvoiceResponse `json:"rejectedInvoices"`
}
