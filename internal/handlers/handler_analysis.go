package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/middleware"
)

// analysisHandler exposes best-effort invoice photo extraction. Its results
// only pre-fill editable form fields; a failure never blocks a submission.
type analysisHandler struct {
	analysisService portssvc.InvoiceAnalysisSvc
}

func newAnalysisHandler(as portssvc.InvoiceAnalysisSvc) *analysisHandler {
	return &analysisHandler{analysisService: as}
}

func registerAnalysisRoutes(rg *gin.RouterGroup, analysisService portssvc.InvoiceAnalysisSvc) {
	h := newAnalysisHandler(analysisService)

	analysis := rg.Group("/analysis")
	{
		analysis.POST("/invoice-summary", h.invoiceSummary)
		analysis.POST("/line-items", h.lineItems)
	}
}

// invoiceSummary godoc
// @Summary Extract invoice summary
// @Description Extracts the headline fields (hospital, number, total, currency, date) from an invoice photo.
// @Tags analysis
// @Accept json
// @Produce json
// @Param image body dto.AnalyzeImageRequest true "Base64-encoded invoice photo"
// @Success 200 {object} dto.InvoiceSummary
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /analysis/invoice-summary [post]
func (h *analysisHandler) invoiceSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	summary, err := h.analysisService.ExtractInvoiceSummary(c.Request.Context(), req.ImageBase64)
	if err != nil {
		logger.Warn("Invoice summary extraction failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// lineItems godoc
// @Summary Extract invoice line items
// @Description Itemizes the billed service lines from an invoice photo.
// @Tags analysis
// @Accept json
// @Produce json
// @Param image body dto.AnalyzeImageRequest true "Base64-encoded invoice photo"
// @Success 200 {array} dto.ExtractedLineItem
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /analysis/line-items [post]
func (h *analysisHandler) lineItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	items, err := h.analysisService.ExtractLineItems(c.Request.Context(), req.ImageBase64)
	if err != nil {
		logger.Warn("Line item extraction failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
