package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/money"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles creation of a new account, validating the request and
// checking for duplicate account numbers
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.logger.Error("Invalid owner ID", "owner_id", req.OwnerID, "error", err)
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	opening, err := money.NewFromString(req.OpeningBalance, req.Currency)
	if err != nil {
		h.logger.Error("Invalid opening balance", "opening_balance", req.OpeningBalance, "currency", req.Currency, "error", err)
		RespondBadRequest(c, "Invalid opening balance or currency")
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), ownerID, req.Number, account.Type(req.Type), opening)
	if err != nil {
		var duplicateErr account.ErrDuplicateNumber
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to create account with duplicate number", "number", duplicateErr.Number)
			RespondConflict(c, "Account with this number already exists")
			return
		}
		if errors.Is(err, account.ErrInvalidAmount) || errors.Is(err, account.ErrEmptyNumber) || errors.Is(err, account.ErrEmptyOwner) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Close closes a paid-out account, purging its remaining schedule entries.
// Accounts holding funds cannot be closed until the payout transfer settles.
func (h *AccountHandler) Close(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.CloseAccount(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound{}):
			RespondNotFound(c, "Account not found")
		case errors.Is(err, account.ErrBalanceRemaining):
			RespondConflict(c, "Account balance must be zero before closing")
		case errors.Is(err, account.ErrAccountClosed):
			RespondConflict(c, "Account is already closed")
		default:
			h.logger.Error("Failed to close account", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetByOwner lists every account held by the given owner
func (h *AccountHandler) GetByOwner(c *gin.Context) {
	ownerParam := c.Query("owner_id")
	ownerID, err := uuid.Parse(ownerParam)
	if err != nil {
		h.logger.Error("Invalid owner ID", "owner_id", ownerParam, "error", err)
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	accounts, err := h.accountService.GetAccountsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to list accounts", "owner_id", ownerParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	RespondOK(c, responses)
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:        acc.ID.String(),
		OwnerID:   acc.OwnerID.String(),
		Number:    acc.Number,
		Type:      string(acc.Type),
		Balance:   acc.Balance.Rounded().Amount().String(),
		Currency:  acc.Balance.Currency().Code(),
		Status:    string(acc.Status),
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
}
