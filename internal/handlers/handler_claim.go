package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/middleware"
)

// claimHandler handles HTTP requests for the claim lifecycle.
type claimHandler struct {
	claimService portssvc.ClaimSvcFacade
}

func newClaimHandler(cs portssvc.ClaimSvcFacade) *claimHandler {
	return &claimHandler{claimService: cs}
}

// registerClaimRoutes registers claim CRUD routes. Workflow transitions live
// in handler_workflow.go.
func registerClaimRoutes(rg *gin.RouterGroup, claimService portssvc.ClaimSvcFacade) {
	h := newClaimHandler(claimService)

	claims := rg.Group("/claims")
	{
		claims.POST("", h.createClaim)
		claims.GET("", h.listClaims)
		claims.GET("/archive", h.listArchive)
		claims.GET("/:id", h.getClaim)
		claims.PUT("/:id/invoices/:invoiceID", h.updateInvoiceData)
	}
}

// createClaim godoc
// @Summary Submit a new claim
// @Description Creates a claim from the employee's invoices; all invoices start in medical review.
// @Tags claims
// @Accept json
// @Produce json
// @Param claim body dto.CreateClaimRequest true "Claim details"
// @Success 201 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims [post]
func (h *claimHandler) createClaim(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for create claim request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claim, err := h.claimService.CreateClaim(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Claim created",
		slog.String("claim_id", claim.ClaimID),
		slog.String("reference_number", claim.ReferenceNumber))
	c.JSON(http.StatusCreated, dto.ToClaimResponse(claim))
}

// listClaims godoc
// @Summary List claims
// @Description Lists claims visible to the actor: employees see their own, data-entry workers see claims holding their invoices, reviewer roles see everything.
// @Tags claims
// @Produce json
// @Param status query string false "Filter by claim status"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListClaimsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims [get]
func (h *claimHandler) listClaims(c *gin.Context) {
	var params dto.ListClaimsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claims, err := h.claimService.ListClaims(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListClaimsResponse(claims))
}

// listArchive godoc
// @Summary List archived claims
// @Description Lists terminal (APPROVED/REJECTED) claims. Terminal claims are archived, never deleted.
// @Tags claims
// @Produce json
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListClaimsResponse
// @Security BearerAuth
// @Router /claims/archive [get]
func (h *claimHandler) listArchive(c *gin.Context) {
	var params dto.ListClaimsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claims, err := h.claimService.ListArchive(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListClaimsResponse(claims))
}

// getClaim godoc
// @Summary Get a claim
// @Description Retrieves one claim with its invoices and full audit trail.
// @Tags claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.ClaimResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id} [get]
func (h *claimHandler) getClaim(c *gin.Context) {
	claim, err := h.claimService.GetClaimByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// updateInvoiceData godoc
// @Summary Revise invoice data
// @Description Updates an invoice's extracted fields and recomputes its derived amounts. Only the assigned data-entry worker or an admin may edit; terminal claims are immutable.
// @Tags claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param invoiceID path string true "Invoice ID"
// @Param invoice body dto.UpdateInvoiceDataRequest true "Fields to update"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/invoices/{invoiceID} [put]
func (h *claimHandler) updateInvoiceData(c *gin.Context) {
	var req dto.UpdateInvoiceDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claim, err := h.claimService.UpdateInvoiceData(c.Request.Context(), actor, c.Param("id"), c.Param("invoiceID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}
