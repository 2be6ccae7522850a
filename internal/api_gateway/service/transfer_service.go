package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
)

// TransferServiceImpl implements the TransferService interface
type TransferServiceImpl struct {
	ledgerRepo ledger.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(logger *slog.Logger, ledgerRepo ledger.Repository, producer producers.MessagePublisher) TransferService {
	return &TransferServiceImpl{
		ledgerRepo: ledgerRepo,
		producer:   producer,
		logger:     logger,
	}
}

// SubmitTransfer publishes a transfer request, supporting idempotency via the
// idempotency key. When a record with the key already exists in the ledger,
// the settled record pair is returned instead of a second submission.
func (s *TransferServiceImpl) SubmitTransfer(ctx context.Context, request *shared.TransferRequest) (string, []*ledger.Record, error) {
	idempotencyKey := request.IdempotencyKey

	if idempotencyKey != "" {
		existing, err := s.ledgerRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			s.logger.Error("Failed to check for existing transfer with idempotency key",
				"idempotency_key", idempotencyKey,
				"error", err,
			)
			return "", nil, err
		}

		if existing != nil {
			s.logger.Info("Found existing transfer with idempotency key",
				"idempotency_key", idempotencyKey,
				"transfer_id", existing.TransferID,
			)
			records, err := s.ledgerRepo.GetByTransferID(ctx, existing.TransferID)
			if err != nil {
				return "", nil, err
			}
			return existing.TransferID.String(), records, nil
		}
	}

	key := request.TransferID.String()
	if err := s.producer.Publish(ctx, key, request); err != nil {
		s.logger.Error("Failed to publish transfer request",
			"source_number", request.SourceNumber,
			"dest_number", request.DestNumber,
			"amount", request.Amount,
			"error", err,
		)
		return "", nil, err
	}

	s.logger.Info("Transfer request published",
		"transfer_id", request.TransferID,
		"source_number", request.SourceNumber,
		"dest_number", request.DestNumber,
		"amount", request.Amount,
	)

	return request.TransferID.String(), nil, nil
}

// GetTransferByID retrieves the settled record pair of a transfer. Returns
// nil if the transfer has not settled
func (s *TransferServiceImpl) GetTransferByID(ctx context.Context, transferID uuid.UUID) ([]*ledger.Record, error) {
	records, err := s.ledgerRepo.GetByTransferID(ctx, transferID)
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound{}) {
			s.logger.Info("Transfer not settled yet", "transfer_id", transferID.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transfer by ID", "transfer_id", transferID.String(), "error", err)
		return nil, err
	}
	return records, nil
}

// GetHistoryByAccountID retrieves the paginated ledger history of an account.
// Returns records, total count, and any error
func (s *TransferServiceImpl) GetHistoryByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Record, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.ledgerRepo.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
