package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// CreateLineItemRequest is one billed line on a submitted invoice.
type CreateLineItemRequest struct {
	ItemName    string          `json:"itemName" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	ServiceType string          `json:"serviceType"`
}

// CreateInvoiceRequest is one photographed receipt in a claim submission.
// ExchangeRate is optional; when omitted the default rate for the currency
// applies. Zero amounts and empty line items are accepted deliberately.
type CreateInvoiceRequest struct {
	HospitalName  string                  `json:"hospitalName"`
	InvoiceNumber string                  `json:"invoiceNumber"`
	CaptureDate   time.Time               `json:"captureDate"`
	Amount        decimal.Decimal         `json:"amount"`
	Currency      domain.Currency         `json:"currency" binding:"required,oneof=LYD USD EUR TND"`
	ExchangeRate  *decimal.Decimal        `json:"exchangeRate,omitempty"`
	LineItems     []CreateLineItemRequest `json:"lineItems"`
}

// CreateClaimRequest defines the data needed for an employee submission.
type CreateClaimRequest struct {
	Description string                 `json:"description"`
	Department  string                 `json:"department"`
	Invoices    []CreateInvoiceRequest `json:"invoices" binding:"required,min=1,dive"`
}

// UpdateInvoiceDataRequest carries field revisions made by a data-entry worker.
// Nil fields are left unchanged; derived amounts are recomputed on every edit.
type UpdateInvoiceDataRequest struct {
	HospitalName  *string                  `json:"hospitalName,omitempty"`
	InvoiceNumber *string                  `json:"invoiceNumber,omitempty"`
	Amount        *decimal.Decimal         `json:"amount,omitempty"`
	Currency      *domain.Currency         `json:"currency,omitempty"`
	ExchangeRate  *decimal.Decimal         `json:"exchangeRate,omitempty"`
	LineItems     *[]CreateLineItemRequest `json:"lineItems,omitempty"`
}

// ListClaimsParams narrows and pages the claims listing.
type ListClaimsParams struct {
	Status       string `form:"status"`
	EmployeeID   string `form:"employeeID"`
	AssignedToID string `form:"assignedToID"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// LineItemResponse mirrors domain.LineItem on the wire.
type LineItemResponse struct {
	LineItemID  string          `json:"lineItemID"`
	ItemName    string          `json:"itemName"`
	Price       decimal.Decimal `json:"price"`
	ServiceType string          `json:"serviceType"`
}

// InvoiceResponse is the wire form of one invoice.
type InvoiceResponse struct {
	InvoiceID      string             `json:"invoiceID"`
	InvoiceNumber  string             `json:"invoiceNumber"`
	HospitalName   string             `json:"hospitalName"`
	CaptureDate    time.Time          `json:"captureDate"`
	Amount         decimal.Decimal    `json:"amount"`
	Currency       domain.Currency    `json:"currency"`
	ExchangeRate   decimal.Decimal    `json:"exchangeRate"`
	AmountInBase   decimal.Decimal    `json:"amountInBase"`
	NetAmount      decimal.Decimal    `json:"netAmount"`
	LineItems      []LineItemResponse `json:"lineItems"`
	Status         domain.ClaimStatus `json:"status"`
	AssignedToID   *string            `json:"assignedToID,omitempty"`
	AssignedToName *string            `json:"assignedToName,omitempty"`
	AuditNote      string             `json:"auditNote,omitempty"`
}

// AuditLogEntryResponse is the wire form of one audit trail entry.
type AuditLogEntryResponse struct {
	EntryID   string    `json:"entryID"`
	ActorID   string    `json:"actorID"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment,omitempty"`
}

// ClaimResponse is the wire form of a claim with invoices and audit trail.
// TotalAmount is the frozen as-submitted figure; CurrentInvoiceTotal is the
// live sum reflecting post-submission edits.
type ClaimResponse struct {
	ClaimID             string                  `json:"claimID"`
	ReferenceNumber     string                  `json:"referenceNumber"`
	EmployeeID          string                  `json:"employeeID"`
	EmployeeName        string                  `json:"employeeName"`
	Department          string                  `json:"department,omitempty"`
	Description         string                  `json:"description,omitempty"`
	SubmissionDate      time.Time               `json:"submissionDate"`
	Status              domain.ClaimStatus      `json:"status"`
	Invoices            []InvoiceResponse       `json:"invoices"`
	TotalAmount         decimal.Decimal         `json:"totalAmount"`
	CurrentInvoiceTotal decimal.Decimal         `json:"currentInvoiceTotal"`
	AuditTrail          []AuditLogEntryResponse `json:"auditTrail"`
	Version             int64                   `json:"version"`
	CreatedAt           time.Time               `json:"createdAt"`
	LastUpdatedAt       time.Time               `json:"lastUpdatedAt"`
}

// ListClaimsResponse wraps a page of claims.
type ListClaimsResponse struct {
	Claims []ClaimResponse `json:"claims"`
}

// ToInvoiceResponse converts a domain.Invoice to its wire form.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.LineItems))
	for i, li := range inv.LineItems {
		items[i] = LineItemResponse{
			LineItemID:  li.LineItemID,
			ItemName:    li.ItemName,
			Price:       li.Price,
			ServiceType: li.ServiceType,
		}
	}
	return InvoiceResponse{
		InvoiceID:      inv.InvoiceID,
		InvoiceNumber:  inv.InvoiceNumber,
		HospitalName:   inv.HospitalName,
		CaptureDate:    inv.CaptureDate,
		Amount:         inv.Amount,
		Currency:       inv.Currency,
		ExchangeRate:   inv.ExchangeRate,
		AmountInBase:   inv.AmountInBase,
		NetAmount:      inv.NetAmount,
		LineItems:      items,
		Status:         inv.Status,
		AssignedToID:   inv.AssignedToID,
		AssignedToName: inv.AssignedToName,
		AuditNote:      inv.AuditNote,
	}
}

// ToClaimResponse converts a domain.Claim to its wire form.
func ToClaimResponse(c *domain.Claim) ClaimResponse {
	invoices := make([]InvoiceResponse, len(c.Invoices))
	for i := range c.Invoices {
		invoices[i] = ToInvoiceResponse(&c.Invoices[i])
	}
	trail := make([]AuditLogEntryResponse, len(c.AuditTrail))
	for i, entry := range c.AuditTrail {
		trail[i] = AuditLogEntryResponse{
			EntryID:   entry.EntryID,
			ActorID:   entry.ActorID,
			ActorName: entry.ActorName,
			Action:    entry.Action,
			Timestamp: entry.Timestamp,
			Comment:   entry.Comment,
		}
	}
	return ClaimResponse{
		ClaimID:             c.ClaimID,
		ReferenceNumber:     c.ReferenceNumber,
		EmployeeID:          c.EmployeeID,
		EmployeeName:        c.EmployeeName,
		Department:          c.Department,
		Description:         c.Description,
		SubmissionDate:      c.SubmissionDate,
		Status:              c.Status,
		Invoices:            invoices,
		TotalAmount:         c.TotalAmount,
		CurrentInvoiceTotal: c.CurrentInvoiceTotal(),
		AuditTrail:          trail,
		Version:             c.Version,
		CreatedAt:           c.CreatedAt,
		LastUpdatedAt:       c.LastUpdatedAt,
	}
}

// ToListClaimsResponse converts a slice of claims to the listing wire form.
func ToListClaimsResponse(claims []domain.Claim) ListClaimsResponse {
	res := make([]ClaimResponse, len(claims))
	for i := range claims {
		res[i] = ToClaimResponse(&claims[i])
	}
	return ListClaimsResponse{Claims: res}
}
