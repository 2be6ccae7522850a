package schedule

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages persisted schedule entries. Entries are written once
// at origination, marked paid by the payment processor, and removed in bulk
// when a product reaches maturity payout.
type Repository interface {
	CreateBatch(ctx context.Context, entries []Entry) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]Entry, error)
	MarkPaid(ctx context.Context, entryID uuid.UUID) error
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ErrEntryNotFound indicates a missing schedule entry.
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "schedule entry not found: " + e.EntryID.String()
}
