package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/domain/origination"
)

// InvitationHandler handles HTTP requests for the invitation lifecycle
type InvitationHandler struct {
	originationService service.OriginationService
	logger             *slog.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(logger *slog.Logger, originationService service.OriginationService) *InvitationHandler {
	return &InvitationHandler{
		originationService: originationService,
		logger:             logger,
	}
}

// Accept accepts a pending invitation, registering the invitee as
// co-applicant
func (h *InvitationHandler) Accept(c *gin.Context) {
	h.transition(c, h.originationService.AcceptInvitation)
}

// Reject declines a pending invitation
func (h *InvitationHandler) Reject(c *gin.Context) {
	h.transition(c, h.originationService.RejectInvitation)
}

// Expire expires a pending invitation past its deadline
func (h *InvitationHandler) Expire(c *gin.Context) {
	h.transition(c, h.originationService.ExpireInvitation)
}

// GetByInvitee lists every invitation addressed to the invitee
func (h *InvitationHandler) GetByInvitee(c *gin.Context) {
	inviteeParam := c.Query("invitee_id")
	inviteeID, err := uuid.Parse(inviteeParam)
	if err != nil {
		RespondBadRequest(c, "Invalid invitee ID")
		return
	}

	invitations, err := h.originationService.GetInvitationsByInvitee(c.Request.Context(), inviteeID)
	if err != nil {
		h.logger.Error("Failed to list invitations", "invitee_id", inviteeParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		responses = append(responses, mapInvitationToResponse(inv))
	}
	RespondOK(c, responses)
}

func (h *InvitationHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*origination.Invitation, error)) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid invitation ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid invitation ID")
		return
	}

	inv, err := op(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, origination.ErrInvitationNotFound{}):
			RespondNotFound(c, "Invitation not found")
		case errors.Is(err, origination.ErrInvitationExpired),
			errors.Is(err, origination.ErrInvalidStateTransition):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Invitation operation failed", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapInvitationToResponse(inv))
}
