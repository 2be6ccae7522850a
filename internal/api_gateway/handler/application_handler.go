package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/api_gateway/middleware"
	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/collaborators"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/origination"
)

// ApplicationHandler handles HTTP requests for the application lifecycle
type ApplicationHandler struct {
	originationService service.OriginationService
	logger             *slog.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(logger *slog.Logger, originationService service.OriginationService) *ApplicationHandler {
	return &ApplicationHandler{
		originationService: originationService,
		logger:             logger,
	}
}

// Submit creates a pending application for a catalog product
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	applicantID, err := uuid.Parse(req.ApplicantID)
	if err != nil {
		RespondBadRequest(c, "Invalid applicant ID")
		return
	}

	amount, err := money.NewFromString(req.Amount, req.Currency)
	if err != nil {
		RespondBadRequest(c, "Invalid amount or currency")
		return
	}

	app, err := h.originationService.SubmitApplication(c.Request.Context(), applicantID, req.ProductID, amount)
	if err != nil {
		if errors.Is(err, collaborators.ErrProductNotFound) {
			RespondNotFound(c, "Product not found")
			return
		}
		if errors.Is(err, origination.ErrInvalidAmount) || errors.Is(err, origination.ErrInvalidTerm) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to submit application", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapApplicationToResponse(app))
}

// GetByID retrieves an application by its ID, returning 404 if not found
func (h *ApplicationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	app, err := h.originationService.GetApplication(c.Request.Context(), id)
	if err != nil {
		h.respondApplicationError(c, err)
		return
	}

	RespondOK(c, mapApplicationToResponse(app))
}

// GetByApplicant lists every application the applicant has submitted
func (h *ApplicationHandler) GetByApplicant(c *gin.Context) {
	applicantParam := c.Query("applicant_id")
	applicantID, err := uuid.Parse(applicantParam)
	if err != nil {
		RespondBadRequest(c, "Invalid applicant ID")
		return
	}

	apps, err := h.originationService.GetApplicationsByApplicant(c.Request.Context(), applicantID)
	if err != nil {
		h.logger.Error("Failed to list applications", "applicant_id", applicantParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, mapApplicationToResponse(app))
	}
	RespondOK(c, responses)
}

// Review moves a pending application into review
func (h *ApplicationHandler) Review(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	app, err := h.originationService.StartReview(c.Request.Context(), id)
	if err != nil {
		h.respondApplicationError(c, err)
		return
	}
	RespondOK(c, mapApplicationToResponse(app))
}

// Approve approves an application, opening the product account and its
// schedule
func (h *ApplicationHandler) Approve(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	app, err := h.originationService.Approve(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.respondApplicationError(c, err)
		return
	}
	RespondOK(c, mapApplicationToResponse(app))
}

// Reject declines an application with a reason
func (h *ApplicationHandler) Reject(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	app, err := h.originationService.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.respondApplicationError(c, err)
		return
	}
	RespondOK(c, mapApplicationToResponse(app))
}

// Disburse publishes the principal transfer for an approved application
func (h *ApplicationHandler) Disburse(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req DisburseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	app, transferID, err := h.originationService.Disburse(c.Request.Context(), id, req.DestNumber, middleware.GetCorrelationID(c))
	if err != nil {
		h.respondApplicationError(c, err)
		return
	}

	RespondAccepted(c, gin.H{
		"application": mapApplicationToResponse(app),
		"transfer_id": transferID.String(),
		"status":      "PENDING",
	})
}

// CreateInvitation invites a co-applicant onto a pending application
func (h *ApplicationHandler) CreateInvitation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inviterID, err := uuid.Parse(req.InviterID)
	if err != nil {
		RespondBadRequest(c, "Invalid inviter ID")
		return
	}
	inviteeID, err := uuid.Parse(req.InviteeID)
	if err != nil {
		RespondBadRequest(c, "Invalid invitee ID")
		return
	}

	inv, err := h.originationService.CreateInvitation(c.Request.Context(), id, inviterID, inviteeID)
	if err != nil {
		switch {
		case errors.Is(err, origination.ErrApplicationNotFound{}):
			RespondNotFound(c, "Application not found")
		case errors.Is(err, origination.ErrNotApplicant):
			RespondForbidden(c, "Only the applicant may invite")
		case errors.Is(err, origination.ErrInvalidStateTransition),
			errors.Is(err, origination.ErrSelfInvitation),
			errors.Is(err, origination.ErrEmptyInvitee):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to create invitation", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapInvitationToResponse(inv))
}

func (h *ApplicationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid application ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid application ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondApplicationError maps lifecycle failures to HTTP statuses
func (h *ApplicationHandler) respondApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, origination.ErrApplicationNotFound{}):
		RespondNotFound(c, "Application not found")
	case errors.Is(err, origination.ErrInvalidStateTransition):
		RespondConflict(c, "Invalid application state for this operation")
	default:
		h.logger.Error("Application operation failed", "error", err)
		RespondInternalError(c)
	}
}

// mapApplicationToResponse maps an application entity to a response DTO
func mapApplicationToResponse(app *origination.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:              app.ID.String(),
		ApplicantID:     app.ApplicantID.String(),
		ProductID:       app.ProductID.String(),
		AccountType:     string(app.AccountType),
		RequestedAmount: app.RequestedAmount.Rounded().Amount().String(),
		Currency:        app.RequestedAmount.Currency().Code(),
		AnnualRatePct:   app.AnnualRatePct.String(),
		TermMonths:      app.TermMonths,
		Method:          string(app.Method),
		Status:          string(app.Status),
		DecisionReason:  app.DecisionReason,
		CreatedAt:       app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       app.UpdatedAt.Format(time.RFC3339),
	}
	if app.CoApplicantID != uuid.Nil {
		resp.CoApplicantID = app.CoApplicantID.String()
	}
	if app.AccountID != uuid.Nil {
		resp.AccountID = app.AccountID.String()
	}
	return resp
}

// mapInvitationToResponse maps an invitation entity to a response DTO
func mapInvitationToResponse(inv *origination.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:            inv.ID.String(),
		ApplicationID: inv.ApplicationID.String(),
		InviterID:     inv.InviterID.String(),
		InviteeID:     inv.InviteeID.String(),
		Status:        string(inv.Status),
		ExpiresAt:     inv.ExpiresAt.Format(time.RFC3339),
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
}
