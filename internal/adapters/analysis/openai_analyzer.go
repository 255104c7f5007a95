// Package analysis adapts the OpenAI vision API to the invoice-analysis port.
// The collaborator is best effort: callers pre-fill form fields from its
// output and must tolerate an error by leaving the fields empty.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/middleware"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
)

const summaryPrompt = `Extract the key information from this medical invoice image.
Respond with a single JSON object with exactly these keys:
"hospitalName" (string), "invoiceNumber" (string), "totalAmount" (number),
"currency" (one of "LYD", "USD", "EUR", "TND"), "date" (YYYY-MM-DD string).
Use an empty string or 0 for anything you cannot read.`

const lineItemsPrompt = `Itemize every billed service line on this medical invoice image.
Respond with a single JSON object of the form {"items": [...]} where each item has
exactly these keys: "itemName" (string), "price" (number),
"serviceType" (a short category such as "Consultation", "Laboratory", "Pharmacy", "Radiology").
Return {"items": []} if no lines are readable.`

// Analyzer calls OpenAI chat completions with an attached invoice photo and a
// fixed JSON schema per extraction.
type Analyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewAnalyzer creates an Analyzer speaking to the real OpenAI API.
func NewAnalyzer(apiKey string, model string, timeout time.Duration) *Analyzer {
	return &Analyzer{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Ensure Analyzer implements the portssvc.InvoiceAnalysisSvc interface
var _ portssvc.InvoiceAnalysisSvc = (*Analyzer)(nil)

// ExtractInvoiceSummary implements portssvc.InvoiceAnalysisSvc.
func (a *Analyzer) ExtractInvoiceSummary(ctx context.Context, imageBase64 string) (*dto.InvoiceSummary, error) {
	content, err := a.complete(ctx, summaryPrompt, imageBase64)
	if err != nil {
		return nil, err
	}

	var summary dto.InvoiceSummary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		return nil, fmt.Errorf("%w: malformed summary response: %v", apperrors.ErrAnalysisUnavailable, err)
	}
	summary.Currency = strings.ToUpper(strings.TrimSpace(summary.Currency))
	return &summary, nil
}

// ExtractLineItems implements portssvc.InvoiceAnalysisSvc.
func (a *Analyzer) ExtractLineItems(ctx context.Context, imageBase64 string) ([]dto.ExtractedLineItem, error) {
	content, err := a.complete(ctx, lineItemsPrompt, imageBase64)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []dto.ExtractedLineItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed line-items response: %v", apperrors.ErrAnalysisUnavailable, err)
	}
	return parsed.Items, nil
}

func (a *Analyzer) complete(ctx context.Context, prompt string, imageBase64 string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	imageURL := imageBase64
	if !strings.HasPrefix(imageBase64, "data:") {
		imageURL = "data:image/jpeg;base64," + imageBase64
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: 1000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		logger.Warn("Invoice analysis request failed",
			slog.String("model", a.model), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", apperrors.ErrAnalysisUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", apperrors.ErrAnalysisUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
