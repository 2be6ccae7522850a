package components

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

// FailureRecorderImpl routes rejected transfers to the dead letter queue.
// The ledger is append-only and carries settled transfers exclusively, so
// failures live on the DLQ where operators can inspect and replay them.
type FailureRecorderImpl struct {
	dlqProducer producers.DeadLetterPublisher
	logger      *slog.Logger
}

func NewFailureRecorder(dlqProducer producers.DeadLetterPublisher, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		dlqProducer: dlqProducer,
		logger:      logger,
	}
}

// RecordFailure publishes the failed transfer request and its reason to the DLQ
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, request *shared.TransferRequest, failureReason string) error {
	logger := r.logger
	if request.CorrelationID != "" {
		logger = r.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Recording failed transfer", "transfer_id", request.TransferID.String(), "reason", failureReason)

	if r.dlqProducer == nil {
		logger.Warn("DLQ producer not configured, failure only logged",
			"transfer_id", request.TransferID.String(), "reason", failureReason,
		)
		return nil
	}

	payload, err := json.Marshal(request)
	if err != nil {
		logger.Error("Failed to marshal transfer request for DLQ", "transfer_id", request.TransferID.String(), "error", err)
		return fmt.Errorf("failed to marshal failed transfer %s: %w", request.TransferID.String(), err)
	}

	if err := r.dlqProducer.PublishToDLQ(ctx, request.TransferID.String(), payload, failureReason); err != nil {
		logger.Error("Failed to publish failed transfer to DLQ", "transfer_id", request.TransferID.String(), "error", err)
		return fmt.Errorf("failed to publish failed transfer %s to DLQ: %w", request.TransferID.String(), err)
	}

	logger.Info("Failed transfer published to DLQ", "transfer_id", request.TransferID.String(), "reason", failureReason)
	return nil
}
