package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	Update(ctx context.Context, account *Account) error

	// UpdateBalance applies a signed delta under optimistic locking.
	UpdateBalance(ctx context.Context, id uuid.UUID, delta string, version int) error

	// LockForUpdate acquires a pessimistic row lock for transfer processing.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountID.String()
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
	Number    string
}

func (e ErrAccountNotFound) Error() string {
	if e.Number != "" {
		return "account not found: " + e.Number
	}
	return "account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target carries no identity.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil && t.Number == "" {
		return true
	}
	return e.AccountID == t.AccountID && e.Number == t.Number
}

// ErrDuplicateNumber indicates account-number uniqueness violation
type ErrDuplicateNumber struct {
	Number string
}

func (e ErrDuplicateNumber) Error() string {
	return "account with number already exists: " + e.Number
}
