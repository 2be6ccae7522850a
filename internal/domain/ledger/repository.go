package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages transaction-record persistence. The store is
// append-only: there is no update or single-record delete.
type Repository interface {
	// CreateMany appends the records of one transfer as a unit.
	CreateMany(ctx context.Context, records []*Record) error
	GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]*Record, error)
	GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*Record, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ErrRecordNotFound indicates a missing transaction record.
type ErrRecordNotFound struct {
	TransferID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "transaction record not found: " + e.TransferID.String()
}

// Is matches any ErrRecordNotFound when the target carries the nil id.
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.TransferID == uuid.Nil {
		return true
	}
	return e.TransferID == t.TransferID
}

// ErrDuplicateRecord indicates transfer uniqueness violation.
type ErrDuplicateRecord struct {
	TransferID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate transaction record: " + e.TransferID.String()
}

// Is matches any ErrDuplicateRecord when the target carries the nil id.
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	if t.TransferID == uuid.Nil {
		return true
	}
	return e.TransferID == t.TransferID
}
