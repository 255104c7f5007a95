package services

import (
	"context"

	"github.com/litc-ly/claims_backend/internal/dto"
)

// InvoiceAnalysisSvc is the narrow interface to the external image-analysis
// collaborator. It is a black box that may fail or return empty results;
// extracted data only pre-fills editable fields and a failure must never block
// a workflow transition.
type InvoiceAnalysisSvc interface {
	// ExtractInvoiceSummary extracts the headline invoice fields from an
	// encoded photo.
	ExtractInvoiceSummary(ctx context.Context, imageBase64 string) (*dto.InvoiceSummary, error)

	// ExtractLineItems breaks the invoice down into itemized service lines.
	ExtractLineItems(ctx context.Context, imageBase64 string) ([]dto.ExtractedLineItem, error)
}
