// Package consumer turns fetched Kafka messages into transfer processing
// calls, routing unparseable payloads to the dead letter queue.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

// TransferEventHandler decodes transfer requests and hands them to the
// processing service. Its HandleMessage matches the consumer's handler
// contract: a nil return commits the offset.
type TransferEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewTransferEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *TransferEventHandler {
	return &TransferEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage decodes and processes one transfer request. A payload that
// cannot be decoded will never succeed on retry, so it goes to the DLQ and
// the offset is committed. Processing failures are returned to the consumer
// so the message stays uncommitted.
func (h *TransferEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.TransferRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received transfer request for processing",
		"transfer_id", request.TransferID.String(),
		"source", request.SourceNumber,
		"dest", request.DestNumber,
		"amount", request.Amount,
	)

	if err := h.processingService.ProcessTransfer(ctx, &request); err != nil {
		logger.Error("Failed to process transfer",
			"transfer_id", request.TransferID.String(),
			"error", err,
		)
		return fmt.Errorf("processing transfer %s failed: %w", request.TransferID.String(), err)
	}

	logger.Info("Successfully processed transfer", "transfer_id", request.TransferID.String())
	return nil
}

// deadLetter parks an undecodable payload on the DLQ. When no DLQ is
// configured, or publishing fails, the decode error is returned so the
// broker redelivers the message.
func (h *TransferEventHandler) deadLetter(ctx context.Context, key, value []byte, decodeErr error) error {
	h.logger.Error("Failed to unmarshal transfer request from Kafka message",
		"error", decodeErr,
		"message_key", string(key),
	)

	if h.producer == nil {
		return fmt.Errorf("failed to unmarshal message value: %w", decodeErr)
	}

	reason := fmt.Sprintf("Failed to unmarshal transfer request from Kafka message: %s", decodeErr.Error())
	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ after unmarshal error",
			"dlq_error", dlqErr,
			"original_error", decodeErr,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to unmarshal message value: %w", decodeErr)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}
