package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litc-ly/claims_backend/internal/core/domain"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/dto"
	"github.com/litc-ly/claims_backend/internal/middleware"
)

// workflowHandler exposes the claim lifecycle transitions and the invoice
// assignment operations.
type workflowHandler struct {
	workflowService   portssvc.WorkflowSvcFacade
	assignmentService portssvc.AssignmentSvcFacade
	claimService      portssvc.ClaimSvcFacade
}

func newWorkflowHandler(ws portssvc.WorkflowSvcFacade, as portssvc.AssignmentSvcFacade, cs portssvc.ClaimSvcFacade) *workflowHandler {
	return &workflowHandler{
		workflowService:   ws,
		assignmentService: as,
		claimService:      cs,
	}
}

// RegisterWorkflowRoutes registers transition and assignment routes under the
// claim resource.
func RegisterWorkflowRoutes(rg *gin.RouterGroup, ws portssvc.WorkflowSvcFacade, as portssvc.AssignmentSvcFacade, cs portssvc.ClaimSvcFacade) {
	h := newWorkflowHandler(ws, as, cs)

	claims := rg.Group("/claims/:id")
	{
		claims.POST("/transitions", h.applyTransition)
		claims.GET("/permitted-actions", h.permittedActions)
		claims.GET("/final-decision", h.finalDecision)
		claims.POST("/assignments", h.assignInvoices)
		claims.POST("/invoices/:invoiceID/decision", h.recordDecision)
		claims.POST("/complete-entry", h.completeEntry)
	}
}

// applyTransition godoc
// @Summary Apply a workflow action
// @Description Validates and applies one lifecycle action against the claim. A refused action leaves the claim unchanged.
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param transition body dto.TransitionRequest true "Action to apply"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/transitions [post]
func (h *workflowHandler) applyTransition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claimID := c.Param("id")
	var claim *domain.Claim
	var err error
	if req.Action == domain.ActionDirectUpdate {
		claim, err = h.workflowService.DirectUpdate(c.Request.Context(), claimID, actor, req.TargetStatus, req.Comment)
	} else {
		claim, err = h.workflowService.ApplyTransition(c.Request.Context(), claimID, actor, req.Action, req.InvoiceIDs, req.Comment)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Workflow action applied",
		slog.String("claim_id", claimID),
		slog.String("action", string(req.Action)),
		slog.String("new_status", string(claim.Status)))
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// permittedActions godoc
// @Summary List permitted actions
// @Description Reports which workflow actions the actor's role may currently trigger on the claim.
// @Tags workflow
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.PermittedActionsResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/permitted-actions [get]
func (h *workflowHandler) permittedActions(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claim, err := h.claimService.GetClaimByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	actions := h.workflowService.PermittedActions(claim, actor.Role)
	c.JSON(http.StatusOK, dto.PermittedActionsResponse{
		ClaimID: claim.ClaimID,
		Status:  claim.Status,
		Actions: actions,
	})
}

// finalDecision godoc
// @Summary Preview the final decision split
// @Description Partitions the claim's invoices into approved and rejected sets for the head's final claim-level action.
// @Tags workflow
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.FinalDecisionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/final-decision [get]
func (h *workflowHandler) finalDecision(c *gin.Context) {
	claim, err := h.claimService.GetClaimByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	approved, rejected := h.assignmentService.AggregateFinalDecision(claim)
	resp := dto.FinalDecisionResponse{
		ApprovedInvoices: make([]dto.InvoiceResponse, 0, len(approved)),
		RejectedInvoices: make([]dto.InvoiceResponse, 0, len(rejected)),
	}
	for i := range approved {
		resp.ApprovedInvoices = append(resp.ApprovedInvoices, dto.ToInvoiceResponse(&approved[i]))
	}
	for i := range rejected {
		resp.RejectedInvoices = append(resp.RejectedInvoices, dto.ToInvoiceResponse(&rejected[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// assignInvoices godoc
// @Summary Assign invoices to a data-entry worker
// @Description Hands unassigned invoices to a data-entry worker. The claim moves to data entry once every invoice carries an assignee.
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param assignment body dto.AssignInvoicesRequest true "Invoices and worker"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/assignments [post]
func (h *workflowHandler) assignInvoices(c *gin.Context) {
	var req dto.AssignInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claim, err := h.assignmentService.AssignInvoices(c.Request.Context(), c.Param("id"), req.InvoiceIDs, req.WorkerID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// recordDecision godoc
// @Summary Record a data-entry verdict
// @Description Stores the worker's VALID/ERROR verdict on one of their assigned invoices.
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param invoiceID path string true "Invoice ID"
// @Param decision body dto.EntryDecisionRequest true "Verdict"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/invoices/{invoiceID}/decision [post]
func (h *workflowHandler) recordDecision(c *gin.Context) {
	var req dto.EntryDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claim, err := h.assignmentService.RecordDataEntryDecision(c.Request.Context(), c.Param("id"), c.Param("invoiceID"), req.Decision, req.Comment, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// completeEntry godoc
// @Summary Submit a finished data-entry batch
// @Description Submits the worker's batch; refused while any of their invoices lacks a decision. The claim reverts to head review once every invoice is decided.
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param completion body dto.CompleteEntryRequest true "Optional comment"
// @Success 200 {object} dto.ClaimResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{id}/complete-entry [post]
func (h *workflowHandler) completeEntry(c *gin.Context) {
	var req dto.CompleteEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	claim, err := h.assignmentService.CompleteEntry(c.Request.Context(), c.Param("id"), actor, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}
