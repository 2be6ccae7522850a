package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/api_gateway/middleware"
	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// TransferHandler handles HTTP requests for transfer operations
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Create submits a transfer for asynchronous processing with idempotency
// support. An already settled idempotency key returns the existing records.
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	request := &shared.TransferRequest{
		TransferID:     uuid.New(),
		SourceNumber:   req.SourceNumber,
		DestNumber:     req.DestNumber,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Memo:           req.Memo,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  middleware.GetCorrelationID(c),
		Timestamp:      time.Now(),
	}

	transferID, records, err := h.transferService.SubmitTransfer(c.Request.Context(), request)
	if err != nil {
		h.logger.Error("Failed to submit transfer", "error", err)
		RespondInternalError(c)
		return
	}
	if len(records) > 0 {
		RespondOK(c, mapRecordsToResponse(records))
		return
	}

	RespondAccepted(c, gin.H{
		"transfer_id": transferID,
		"status":      "PENDING",
	})
}

// GetByID retrieves the settled record pair of a transfer, returns 404 if
// the transfer has not settled
func (h *TransferHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transfer ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	records, err := h.transferService.GetTransferByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transfer", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if len(records) == 0 {
		RespondNotFound(c, "Transfer not found")
		return
	}

	RespondOK(c, mapRecordsToResponse(records))
}

// GetByAccountID retrieves paginated ledger history for an account
func (h *TransferHandler) GetByAccountID(c *gin.Context) {
	accountIDParam := c.Param("id")
	accountID, err := uuid.Parse(accountIDParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "account_id", accountIDParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.transferService.GetHistoryByAccountID(
		c.Request.Context(),
		accountID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get ledger history", "account_id", accountIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapRecordsToResponse(records), pagination.Page, pagination.PerPage, int(total))
}

// mapRecordsToResponse maps ledger records to transfer record response DTOs
func mapRecordsToResponse(records []*ledger.Record) []TransferRecordResponse {
	responses := make([]TransferRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, TransferRecordResponse{
			ID:           record.ID.String(),
			TransferID:   record.TransferID.String(),
			AccountID:    record.AccountID.String(),
			Direction:    string(record.Direction),
			Amount:       record.Amount,
			Currency:     record.Currency,
			BalanceAfter: record.BalanceAfter,
			Memo:         record.Memo,
			CreatedAt:    record.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses
}
