package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/outbox"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

// OutboxManagerImpl stages ledger records for publishing. Writing the
// outbox row through the settlement transaction is what guarantees the
// ledger eventually sees every balance movement.
type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry serializes the transfer's ledger records into one
// outbox message and inserts it via tx.
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *shared.TransferRequest, result *service.TransferResult) error {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	message, err := outbox.NewMessage(result.Records)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"req_id", request.TransferID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for transfer %s: %w", request.TransferID.String(), err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to create outbox message",
			"req_id", request.TransferID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for transfer %s: %w", request.TransferID.String(), err)
	}

	logger.Info("Outbox message created successfully",
		"req_id", request.TransferID.String(),
		"outbox_id", message.ID,
		"records", len(result.Records),
	)
	return nil
}
