package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/collaborators"
	"github.com/homeplan-finance-core/internal/domain/money"
)

// PlanHandler handles HTTP requests for affordability quotes and plan
// generation
type PlanHandler struct {
	planService service.PlanService
	logger      *slog.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(logger *slog.Logger, planService service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		logger:      logger,
	}
}

// Quote computes the maximum principal for the authenticated user against a
// product
func (h *PlanHandler) Quote(c *gin.Context) {
	var req AffordabilityQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quoteReq := &service.QuoteRequest{
		Credential:    req.Credential,
		ProductID:     req.ProductID,
		Region:        req.Region,
		HousingStatus: req.HousingStatus,
	}
	if req.TargetPrice != "" {
		price, err := money.NewFromString(req.TargetPrice, req.Currency)
		if err != nil {
			RespondBadRequest(c, "Invalid target price")
			return
		}
		quoteReq.TargetPrice = price
	}

	result, err := h.planService.QuoteAffordability(c.Request.Context(), quoteReq)
	if err != nil {
		h.respondCollaboratorError(c, err)
		return
	}

	RespondOK(c, AffordabilityQuoteResponse{
		MaxPrincipal:     result.MaxPrincipal.Rounded().Amount().String(),
		MonthlyPayment:   result.MonthlyPayment.Rounded().Amount().String(),
		AchievedRatioPct: result.AchievedRatioPct.StringFixed(2),
		Currency:         result.MaxPrincipal.Currency().Code(),
		Rejected:         result.Rejected,
	})
}

// Generate prices the financing strategy set for the authenticated user
func (h *PlanHandler) Generate(c *gin.Context) {
	var req GeneratePlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quoteReq := &service.QuoteRequest{
		Credential:       req.Credential,
		ProductID:        req.ProductID,
		Region:           req.Region,
		HousingStatus:    req.HousingStatus,
		SavingTermMonths: req.SavingTermMonths,
	}

	var err error
	if quoteReq.TargetPrice, err = money.NewFromString(req.TargetPrice, req.Currency); err != nil {
		RespondBadRequest(c, "Invalid target price")
		return
	}
	if quoteReq.CurrentCash, err = money.NewFromString(req.CurrentCash, req.Currency); err != nil {
		RespondBadRequest(c, "Invalid current cash")
		return
	}
	if req.DesiredMonthlySaving != "" {
		if quoteReq.DesiredMonthlySaving, err = money.NewFromString(req.DesiredMonthlySaving, req.Currency); err != nil {
			RespondBadRequest(c, "Invalid desired monthly saving")
			return
		}
	}

	result, err := h.planService.GeneratePlans(c.Request.Context(), quoteReq)
	if err != nil {
		h.respondCollaboratorError(c, err)
		return
	}

	RespondOK(c, result)
}

// respondCollaboratorError maps collaborator failures to HTTP statuses
func (h *PlanHandler) respondCollaboratorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, collaborators.ErrUnauthorized):
		RespondUnauthorized(c, "")
	case errors.Is(err, collaborators.ErrProductNotFound):
		RespondNotFound(c, "Product not found")
	default:
		h.logger.Error("Failed to compute plan", "error", err)
		RespondInternalError(c)
	}
}
