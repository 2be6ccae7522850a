package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/money"
)

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrEmptyOwner        = errors.New("owner id is required")
	ErrEmptyNumber       = errors.New("account number is required")
	ErrAccountClosed     = errors.New("account is closed")
	ErrBalanceRemaining  = errors.New("account balance must be zero to close")
)

// Type categorizes an account by product kind.
type Type string

const (
	TypeDemand       Type = "DEMAND"
	TypeSavings      Type = "SAVINGS"
	TypeLoan         Type = "LOAN"
	TypeJointSavings Type = "JOINT_SAVINGS"
	TypeJointLoan    Type = "JOINT_LOAN"
)

// Status is the lifecycle state of an account. Accounts are never deleted,
// only status-transitioned.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// Account is a money account. Balance is mutated only through the transfer
// service; the mutators below are invoked inside its transaction scope.
type Account struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Number    string      `json:"number"`
	Type      Type        `json:"type"`
	Balance   money.Money `json:"balance"`
	Status    Status      `json:"status"`
	Version   int         `json:"version"` // For optimistic locking
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewAccount creates a new active account with the given opening balance.
func NewAccount(ownerID uuid.UUID, number string, accType Type, openingBalance money.Money) (*Account, error) {
	if ownerID == uuid.Nil {
		return nil, ErrEmptyOwner
	}
	if number == "" {
		return nil, ErrEmptyNumber
	}
	if openingBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Number:    number,
		Type:      accType,
		Balance:   openingBalance,
		Status:    StatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Credit adds the amount to the balance.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	next, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = next
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the amount from the balance, failing on insufficient
// funds without mutating anything.
func (a *Account) Debit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	if !a.CanDebit(amount) {
		return ErrInsufficientFunds
	}
	next, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = next
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks whether the account covers the amount.
func (a *Account) CanDebit(amount money.Money) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Close transitions the account to CLOSED.
func (a *Account) Close() error {
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	a.Status = StatusClosed
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}
