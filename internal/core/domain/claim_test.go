package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestComputeDerived(t *testing.T) {
	inv := domain.Invoice{
		Amount:       decimal.NewFromInt(100),
		Currency:     domain.CurrencyUSD,
		ExchangeRate: domain.DefaultRateFor(domain.CurrencyUSD),
	}
	inv.ComputeDerived()

	assert.True(t, inv.AmountInBase.Equal(decimal.NewFromFloat(482)), "got %s", inv.AmountInBase)
	assert.True(t, inv.NetAmount.Equal(decimal.NewFromFloat(433.8)), "got %s", inv.NetAmount)
}

func TestComputeDerivedBaseCurrency(t *testing.T) {
	inv := domain.Invoice{
		Amount:       decimal.NewFromFloat(250.50),
		Currency:     domain.CurrencyLYD,
		ExchangeRate: domain.DefaultRateFor(domain.CurrencyLYD),
	}
	inv.ComputeDerived()

	assert.True(t, inv.AmountInBase.Equal(decimal.NewFromFloat(250.50)))
	assert.True(t, inv.NetAmount.Equal(decimal.NewFromFloat(225.45)))
}

func TestDefaultRates(t *testing.T) {
	assert.True(t, domain.DefaultRateFor(domain.CurrencyLYD).Equal(decimal.NewFromFloat(1.0)))
	assert.True(t, domain.DefaultRateFor(domain.CurrencyUSD).Equal(decimal.NewFromFloat(4.82)))
	assert.True(t, domain.DefaultRateFor(domain.CurrencyEUR).Equal(decimal.NewFromFloat(5.21)))
	assert.True(t, domain.DefaultRateFor(domain.CurrencyTND).Equal(decimal.NewFromFloat(1.54)))
}

func TestClaimStatusTerminal(t *testing.T) {
	assert.True(t, domain.StatusApproved.IsTerminal())
	assert.True(t, domain.StatusRejected.IsTerminal())
	for _, s := range []domain.ClaimStatus{
		domain.StatusPendingDr, domain.StatusPendingHead, domain.StatusPendingDataEntry,
		domain.StatusPendingAudit, domain.StatusReturnedToDr, domain.StatusReturnedToEmployee,
	} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestCloneIsDeep(t *testing.T) {
	claim := &domain.Claim{
		ClaimID: "c1",
		Status:  domain.StatusPendingHead,
		Invoices: []domain.Invoice{
			{
				InvoiceID:    "i1",
				Status:       domain.StatusPendingDataEntry,
				AssignedToID: strPtr("w1"),
				LineItems:    []domain.LineItem{{LineItemID: "l1", ItemName: "X-ray"}},
			},
		},
		AuditTrail: []domain.AuditLogEntry{{EntryID: "a1", Action: "submitted"}},
	}

	clone := claim.Clone()
	clone.Invoices[0].Status = domain.StatusApproved
	*clone.Invoices[0].AssignedToID = "w2"
	clone.Invoices[0].LineItems[0].ItemName = "MRI"
	clone.AuditTrail = append(clone.AuditTrail, domain.AuditLogEntry{EntryID: "a2"})

	assert.Equal(t, domain.StatusPendingDataEntry, claim.Invoices[0].Status)
	assert.Equal(t, "w1", *claim.Invoices[0].AssignedToID)
	assert.Equal(t, "X-ray", claim.Invoices[0].LineItems[0].ItemName)
	assert.Len(t, claim.AuditTrail, 1)
}

func TestPartitionByDecision(t *testing.T) {
	claim := &domain.Claim{
		Invoices: []domain.Invoice{
			{InvoiceID: "i1", Status: domain.StatusApproved},
			{InvoiceID: "i2", Status: domain.StatusReturnedToEmployee},
			{InvoiceID: "i3", Status: domain.StatusReturnedToDr},
			{InvoiceID: "i4", Status: domain.StatusPendingDataEntry},
		},
	}

	approved, rejected := claim.PartitionByDecision()
	require.Len(t, approved, 1)
	require.Len(t, rejected, 2)
	assert.Equal(t, "i1", approved[0].InvoiceID)
	assert.Equal(t, "i2", rejected[0].InvoiceID)
	assert.Equal(t, "i3", rejected[1].InvoiceID)
}

func TestAllInvoicesAssignedAndDecided(t *testing.T) {
	claim := &domain.Claim{
		Invoices: []domain.Invoice{
			{InvoiceID: "i1", Status: domain.StatusPendingDataEntry, AssignedToID: strPtr("w1")},
			{InvoiceID: "i2", Status: domain.StatusPendingHead},
		},
	}
	assert.False(t, claim.AllInvoicesAssigned())
	assert.False(t, claim.AllInvoicesDecided())

	claim.Invoices[1].AssignedToID = strPtr("w2")
	assert.True(t, claim.AllInvoicesAssigned())

	claim.Invoices[0].Status = domain.StatusApproved
	claim.Invoices[1].Status = domain.StatusReturnedToEmployee
	assert.True(t, claim.AllInvoicesDecided())
}

func TestCurrentInvoiceTotal(t *testing.T) {
	claim := &domain.Claim{
		TotalAmount: decimal.NewFromInt(500),
		Invoices: []domain.Invoice{
			{AmountInBase: decimal.NewFromInt(482)},
			{AmountInBase: decimal.NewFromInt(120)},
		},
	}
	// Frozen total stays as claimed; the live figure tracks edits.
	assert.True(t, claim.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, claim.CurrentInvoiceTotal().Equal(decimal.NewFromInt(602)))
}

func TestCheckInvariants(t *testing.T) {
	now := time.Now()

	valid := &domain.Claim{
		ClaimID:        "c1",
		Status:         domain.StatusPendingDr,
		SubmissionDate: now,
		Invoices:       []domain.Invoice{{InvoiceID: "i1", Status: domain.StatusPendingDr}},
	}
	assert.NoError(t, valid.CheckInvariants())

	// An assigned invoice cannot still be in medical review.
	assigned := valid.Clone()
	assigned.Invoices[0].AssignedToID = strPtr("w1")
	assert.Error(t, assigned.CheckInvariants())

	// A claim in data entry needs every invoice assigned.
	pendingEntry := valid.Clone()
	pendingEntry.Status = domain.StatusPendingDataEntry
	pendingEntry.Invoices[0].Status = domain.StatusPendingDataEntry
	assert.Error(t, pendingEntry.CheckInvariants())

	pendingEntry.Invoices[0].AssignedToID = strPtr("w1")
	assert.NoError(t, pendingEntry.CheckInvariants())
}
