package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/outbox"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// LedgerPublisher moves staged outbox messages into the append-only ledger
type LedgerPublisher interface {
	PublishToLedger(ctx context.Context, message *outbox.Message) error
}

type ledgerPublisher struct {
	ledgerRepo ledger.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewLedgerPublisher(
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) LedgerPublisher {
	return &ledgerPublisher{
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// PublishToLedger writes the message's ledger records and marks the message PROCESSED.
// A duplicate-record error means a previous attempt already landed the records,
// so the message is marked PROCESSED rather than retried.
func (lp *ledgerPublisher) PublishToLedger(ctx context.Context, message *outbox.Message) error {
	records, err := message.GetLedgerRecords()
	if err != nil {
		return fmt.Errorf("failed to decode ledger records from outbox message %d: %w", message.ID, err)
	}

	if err := lp.ledgerRepo.CreateMany(ctx, records); err != nil {
		if errors.Is(err, ledger.ErrDuplicateRecord{}) {
			lp.logger.Warn("Ledger records already published for transfer, marking outbox message as processed",
				"outbox_id", message.ID, "transfer_id", message.TransferID,
			)
		} else {
			return fmt.Errorf("failed to create ledger records for transfer %s: %w", message.TransferID, err)
		}
	}

	if err := lp.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		return fmt.Errorf("failed to mark outbox message %d as processed: %w", message.ID, err)
	}

	lp.logger.Info("Published ledger records for transfer",
		"outbox_id", message.ID, "transfer_id", message.TransferID, "record_count", len(records),
	)
	return nil
}
