package dto

import "github.com/shopspring/decimal"

// AnalyzeImageRequest carries an encoded invoice photo for extraction.
type AnalyzeImageRequest struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
}

// InvoiceSummary is the fixed OCR-summary schema: the headline invoice fields
// used to pre-fill the submission form. All fields are editable afterwards.
type InvoiceSummary struct {
	HospitalName  string          `json:"hospitalName"`
	InvoiceNumber string          `json:"invoiceNumber"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	Date          string          `json:"date"`
}

// ExtractedLineItem is one row of the itemized line-extraction schema.
type ExtractedLineItem struct {
	ItemName    string          `json:"itemName"`
	Price       decimal.Decimal `json:"price"`
	ServiceType string          `json:"serviceType"`
}
