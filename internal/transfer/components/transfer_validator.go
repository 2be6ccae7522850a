package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

type TransferValidatorImpl struct {
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewTransferValidator(ledgerRepo ledger.Repository, logger *slog.Logger) service.TransferValidator {
	return &TransferValidatorImpl{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Validate checks transfer request validity
func (v *TransferValidatorImpl) Validate(ctx context.Context, request *shared.TransferRequest) error {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	if request.DestNumber == "" {
		logger.Error("Missing destination account", "req_id", request.TransferID.String())
		return shared.ErrMissingDest
	}

	if !request.SingleSided() && request.SourceNumber == request.DestNumber {
		logger.Error("Source and destination are the same account", "req_id", request.TransferID.String(), "number", request.DestNumber)
		return shared.ErrSameAccount
	}

	amount, err := money.NewFromString(request.Amount, request.Currency)
	if err != nil {
		logger.Error("Invalid amount or currency", "req_id", request.TransferID.String(), "amount", request.Amount, "currency", request.Currency, "error", err)
		return shared.ErrInvalidCurrency
	}
	if !amount.IsPositive() {
		logger.Error("Non-positive amount", "req_id", request.TransferID.String(), "amount", request.Amount)
		return shared.ErrInvalidAmount
	}

	return nil
}

// CheckIdempotency checks if the transfer was already settled
func (v *TransferValidatorImpl) CheckIdempotency(ctx context.Context, request *shared.TransferRequest) (bool, error) {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	existingRecords, err := v.ledgerRepo.GetByTransferID(ctx, request.TransferID)
	if err != nil && !errors.Is(err, ledger.ErrRecordNotFound{}) {
		logger.Error("Failed to check ledger for idempotency", "transfer_id", request.TransferID.String(), "error", err)
		return false, fmt.Errorf("idempotency check failed for transfer %s: %w", request.TransferID.String(), err)
	}

	if len(existingRecords) > 0 {
		logger.Info("Transfer already settled (idempotency)", "transfer_id", request.TransferID.String(), "records", len(existingRecords))
		return true, nil // Skip processing
	}

	if request.IdempotencyKey != "" {
		existing, err := v.ledgerRepo.GetByIdempotencyKey(ctx, request.IdempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", "idempotency_key", request.IdempotencyKey, "error", err)
			return false, fmt.Errorf("idempotency key check failed for transfer %s: %w", request.TransferID.String(), err)
		}
		if existing != nil {
			logger.Info("Idempotency key already used, skipping", "transfer_id", request.TransferID.String(), "idempotency_key", request.IdempotencyKey)
			return true, nil
		}
	}

	return false, nil // Continue processing
}
