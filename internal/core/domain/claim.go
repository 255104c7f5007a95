package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the stage a claim (or an individual invoice) is at in the
// approval workflow.
type ClaimStatus string

const (
	StatusPendingDr          ClaimStatus = "PENDING_DR"
	StatusPendingHead        ClaimStatus = "PENDING_HEAD"
	StatusPendingDataEntry   ClaimStatus = "PENDING_DATA_ENTRY"
	StatusPendingAudit       ClaimStatus = "PENDING_AUDIT"
	StatusReturnedToDr       ClaimStatus = "RETURNED_TO_DR"
	StatusReturnedToEmployee ClaimStatus = "RETURNED_TO_EMPLOYEE"
	StatusApproved           ClaimStatus = "APPROVED"
	StatusRejected           ClaimStatus = "REJECTED"
)

// AllClaimStatuses lists every status; the workflow exhaustiveness test walks it.
var AllClaimStatuses = []ClaimStatus{
	StatusPendingDr,
	StatusPendingHead,
	StatusPendingDataEntry,
	StatusPendingAudit,
	StatusReturnedToDr,
	StatusReturnedToEmployee,
	StatusApproved,
	StatusRejected,
}

// IsValid reports whether s is one of the known statuses.
func (s ClaimStatus) IsValid() bool {
	for _, status := range AllClaimStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s permits no further transitions.
func (s ClaimStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AuditLogEntry records one state-changing action on a claim. Entries are
// immutable once created and only ever appended by the workflow engine.
type AuditLogEntry struct {
	EntryID   string    `json:"entryID"`
	ActorID   string    `json:"actorID"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment,omitempty"`
}

// Claim is an employee's submitted batch of medical invoices moving through
// one approval lifecycle. Invoice order is insertion order and never changes.
type Claim struct {
	ClaimID         string          `json:"claimID"`
	ReferenceNumber string          `json:"referenceNumber"` // Human-facing, e.g. REF-382910
	EmployeeID      string          `json:"employeeID"`
	EmployeeName    string          `json:"employeeName"`
	Department      string          `json:"department,omitempty"`
	Description     string          `json:"description,omitempty"`
	SubmissionDate  time.Time       `json:"submissionDate"`
	Status          ClaimStatus     `json:"status"`
	Invoices        []Invoice       `json:"invoices"`
	TotalAmount     decimal.Decimal `json:"totalAmount"` // Frozen at submission; the as-claimed figure
	AuditTrail      []AuditLogEntry `json:"auditTrail"`
	Version         int64           `json:"version"` // Optimistic concurrency counter
	AuditFields
}

// Clone returns a deep copy of the claim. The workflow engine mutates a clone
// so a refused or failed transition leaves the caller's claim untouched.
func (c *Claim) Clone() *Claim {
	cp := *c
	cp.Invoices = make([]Invoice, len(c.Invoices))
	for i, inv := range c.Invoices {
		invCopy := inv
		if inv.AssignedToID != nil {
			id := *inv.AssignedToID
			invCopy.AssignedToID = &id
		}
		if inv.AssignedToName != nil {
			name := *inv.AssignedToName
			invCopy.AssignedToName = &name
		}
		invCopy.LineItems = make([]LineItem, len(inv.LineItems))
		copy(invCopy.LineItems, inv.LineItems)
		cp.Invoices[i] = invCopy
	}
	cp.AuditTrail = make([]AuditLogEntry, len(c.AuditTrail))
	copy(cp.AuditTrail, c.AuditTrail)
	return &cp
}

// FindInvoice returns a pointer to the invoice with the given id, or nil.
func (c *Claim) FindInvoice(invoiceID string) *Invoice {
	for i := range c.Invoices {
		if c.Invoices[i].InvoiceID == invoiceID {
			return &c.Invoices[i]
		}
	}
	return nil
}

// CurrentInvoiceTotal sums the invoices' live base-currency amounts. Unlike
// TotalAmount it reflects edits made after submission, for reviewers who need
// the current figure next to the as-claimed one.
func (c *Claim) CurrentInvoiceTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Invoices {
		total = total.Add(c.Invoices[i].AmountInBase)
	}
	return total
}

// AllInvoicesAssigned reports whether every invoice carries an assignee.
func (c *Claim) AllInvoicesAssigned() bool {
	for i := range c.Invoices {
		if !c.Invoices[i].IsAssigned() {
			return false
		}
	}
	return true
}

// AllInvoicesDecided reports whether every invoice carries a data-entry
// decision; when true the claim reverts to head review.
func (c *Claim) AllInvoicesDecided() bool {
	for i := range c.Invoices {
		if !c.Invoices[i].HasDecision() {
			return false
		}
	}
	return true
}

// PartitionByDecision splits invoices into approved vs rejected for the head's
// final claim-level action. Rejected covers both return destinations.
func (c *Claim) PartitionByDecision() (approved []Invoice, rejected []Invoice) {
	for _, inv := range c.Invoices {
		switch inv.Status {
		case StatusApproved:
			approved = append(approved, inv)
		case StatusReturnedToEmployee, StatusReturnedToDr:
			rejected = append(rejected, inv)
		}
	}
	return approved, rejected
}

// CheckInvariants verifies the cross-entity consistency rules that must hold
// after every mutation. It is called by the workflow engine before a claim is
// persisted; a violation indicates a bug in a transition, not bad user input.
func (c *Claim) CheckInvariants() error {
	if !c.Status.IsValid() {
		return fmt.Errorf("claim %s has unknown status %q", c.ClaimID, c.Status)
	}
	for i := range c.Invoices {
		inv := &c.Invoices[i]
		if !inv.Status.IsValid() {
			return fmt.Errorf("invoice %s has unknown status %q", inv.InvoiceID, inv.Status)
		}
		// assignedToId set implies the invoice left medical review
		if inv.IsAssigned() && inv.Status == StatusPendingDr {
			return fmt.Errorf("invoice %s is assigned but still pending medical review", inv.InvoiceID)
		}
	}
	// head-managed statuses must agree with the assignment aggregation rule
	if c.Status == StatusPendingDataEntry && !c.AllInvoicesAssigned() {
		return fmt.Errorf("claim %s is pending data entry with unassigned invoices", c.ClaimID)
	}
	return nil
}
