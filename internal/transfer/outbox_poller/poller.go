package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/homeplan-finance-core/internal/config"
	"github.com/homeplan-finance-core/internal/domain/outbox"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// Poller drains the transfer outbox on a fixed interval, handing each
// pending message to the ledger publisher and tracking retries.
type Poller struct {
	outboxRepo       outbox.Repository
	ledgerPublisher  LedgerPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	ledgerPublisher LedgerPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		ledgerPublisher:  ledgerPublisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is cancelled. A failed batch is logged and retried
// on the next tick rather than stopping the loop.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))
	for _, msg := range messages {
		p.publish(ctx, msg)
	}
	return nil
}

// publish hands one message to the ledger publisher. On failure the attempt
// counter is bumped and the message is parked as FAILED_TO_PUBLISH once the
// retry budget is spent.
func (p *Poller) publish(ctx context.Context, msg *outbox.Message) {
	logger := p.messageLogger(msg)

	if err := p.ledgerPublisher.PublishToLedger(ctx, msg); err != nil {
		logger.Error("Failed to publish outbox message to ledger",
			"outbox_id", msg.ID, "transfer_id", msg.TransferID, "current_attempts", msg.Attempts, "error", err,
		)

		if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
			logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
			return
		}

		if msg.Attempts+1 >= p.maxRetryAttempts {
			logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
				"outbox_id", msg.ID, "transfer_id", msg.TransferID, "attempts_made", msg.Attempts+1,
			)
			if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
				logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "outbox_id", msg.ID, "error", errUpdate)
			}
		}
		return
	}

	logger.Info("Published outbox message to ledger", "outbox_id", msg.ID, "transfer_id", msg.TransferID)
}

// messageLogger scopes the logger to the correlation ID carried in the
// message payload when one is present.
func (p *Poller) messageLogger(msg *outbox.Message) *slog.Logger {
	records, err := msg.GetLedgerRecords()
	if err == nil && len(records) > 0 && records[0].CorrelationID != "" {
		return p.logger.With("correlation_id", records[0].CorrelationID)
	}
	return p.logger
}
