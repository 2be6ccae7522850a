package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/shared"
)

// Repository stores outbox messages. Create is expected to run inside the
// same transaction as the account updates it records, which is what makes
// the outbox pattern atomic. The remaining methods serve the poller.
type Repository interface {
	// Create inserts the message and assigns its ID.
	Create(ctx context.Context, message *Message) error
	// GetPending returns up to limit unprocessed messages, oldest first.
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	// UpdateStatus records the outcome of a publish attempt.
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	// IncrementAttempts bumps the retry counter for a failed publish.
	IncrementAttempts(ctx context.Context, id int64) error
	// Delete removes a fully published message.
	Delete(ctx context.Context, id int64) error
	// GetByTransferID finds the message created for a transfer, if any.
	GetByTransferID(ctx context.Context, transferID uuid.UUID) (*Message, error)
	// WithTx binds the repository to an open transaction.
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound reports a lookup or update that matched no message.
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return fmt.Sprintf("outbox message not found: %d", e.ID)
}

// ErrDuplicateMessage reports a second message for a transfer that already
// has one. The unique index on transfer_id raises it.
type ErrDuplicateMessage struct {
	TransferID uuid.UUID
}

func (e ErrDuplicateMessage) Error() string {
	return fmt.Sprintf("duplicate outbox message for transfer %s", e.TransferID)
}
