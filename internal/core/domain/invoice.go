package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// netDeductionFactor is the flat 10% administrative deduction applied to every
// invoice's base-currency amount. Policy constant, not configurable per invoice.
var netDeductionFactor = decimal.NewFromFloat(0.9)

// LineItem is one billed service line extracted from an invoice image and
// editable by data-entry staff.
type LineItem struct {
	LineItemID  string          `json:"lineItemID"`
	ItemName    string          `json:"itemName"`
	Price       decimal.Decimal `json:"price"`
	ServiceType string          `json:"serviceType"` // e.g. consultation, medication, lab test
}

// Invoice is one photographed receipt inside a claim: its extracted monetary
// fields, line items, and per-invoice workflow state. Its status uses the
// ClaimStatus vocabulary but advances independently of the claim's.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	HospitalName  string          `json:"hospitalName"`
	CaptureDate   time.Time       `json:"captureDate"`
	Amount        decimal.Decimal `json:"amount"` // In original currency
	Currency      Currency        `json:"currency"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	AmountInBase  decimal.Decimal `json:"amountInBase"` // Derived: Amount * ExchangeRate
	NetAmount     decimal.Decimal `json:"netAmount"`    // Derived: AmountInBase * 0.9
	LineItems     []LineItem      `json:"lineItems"`    // Insertion order, user-visible
	Status        ClaimStatus     `json:"status"`
	AssignedToID  *string         `json:"assignedToID,omitempty"`
	AssignedToName *string        `json:"assignedToName,omitempty"`
	AuditNote     string          `json:"auditNote,omitempty"` // Data-entry decision comment
}

// ComputeDerived recomputes AmountInBase and NetAmount from Amount and
// ExchangeRate. Must run after every edit to the monetary fields, not just at
// creation, because data-entry workers revise extracted figures.
func (i *Invoice) ComputeDerived() {
	i.AmountInBase = i.Amount.Mul(i.ExchangeRate)
	i.NetAmount = i.AmountInBase.Mul(netDeductionFactor)
}

// IsAssigned reports whether the invoice has been handed to a data-entry worker.
func (i *Invoice) IsAssigned() bool {
	return i.AssignedToID != nil && *i.AssignedToID != ""
}

// HasDecision reports whether a data-entry worker already recorded a
// VALID/ERROR decision for this invoice in the current cycle.
func (i *Invoice) HasDecision() bool {
	switch i.Status {
	case StatusApproved, StatusReturnedToEmployee, StatusReturnedToDr:
		return true
	}
	return false
}
